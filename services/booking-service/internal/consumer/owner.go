package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DrashtiGohil19/bookingcrown/libs/db"
	"github.com/DrashtiGohil19/bookingcrown/libs/events"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/segmentio/kafka-go"
)

type ProfileWriter interface {
	Upsert(ctx context.Context, q db.Querier, p model.OwnerProfile) error
}

// OwnerProjection keeps owner_profiles in step with account.owner.updated.v1.
func OwnerProjection(profiles ProfileWriter) Handler {
	return func(ctx context.Context, q db.Querier, msg kafka.Message) error {
		p, err := decodeOwner(msg.Value)
		if err != nil {
			return err
		}
		return profiles.Upsert(ctx, q, p)
	}
}

func decodeOwner(payload []byte) (model.OwnerProfile, error) {
	var evt events.OwnerUpdated
	if err := json.Unmarshal(payload, &evt); err != nil {
		return model.OwnerProfile{}, fmt.Errorf("decode %s: %w", events.OwnerUpdatedV1, err)
	}
	if err := evt.Validate(); err != nil {
		return model.OwnerProfile{}, fmt.Errorf("invalid %s: %w", events.OwnerUpdatedV1, err)
	}
	return model.OwnerProfile{
		OwnerID:      evt.OwnerID,
		Name:         evt.Name,
		Email:        evt.Email,
		MobileNumber: evt.MobileNumber,
		BusinessType: evt.BusinessType,
		BusinessName: evt.BusinessName,
		Address:      evt.Address,
		UpdatedAt:    evt.UpdatedAt,
	}, nil
}
