package inbox

import (
	"context"

	"github.com/DrashtiGohil19/bookingcrown/libs/db"
)

// Record marks eventID as received. It reports false when the event was seen before,
// so a consumer can skip redeliveries. Pass the handler's transaction as q to make
// the mark and the handler's writes commit together.
func Record(ctx context.Context, q db.Querier, eventID, eventType string) (bool, error) {
	_, err := q.Exec(ctx, `
		INSERT INTO inbox_events (event_id, event_type)
		VALUES ($1, $2)
	`, eventID, eventType)
	if err == nil {
		return true, nil
	}
	if db.IsUniqueViolation(err) {
		return false, nil
	}
	return false, err
}
