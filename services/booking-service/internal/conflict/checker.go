package conflict

import (
	"context"
	"fmt"
	"time"

	otelx "github.com/DrashtiGohil19/bookingcrown/libs/otel"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HourlyQuery asks for a booking of the owner on Date that shares an item with Items
// and whose window collides with Window.
type HourlyQuery struct {
	OwnerID   string
	Items     []string
	Date      time.Time
	Window    model.TimeWindow
	ExcludeID string
}

// DailyQuery asks for a booking of the owner whose range overlaps Range, that holds
// one of Items and whose session is one of Sessions.
type DailyQuery struct {
	OwnerID   string
	Items     []string
	Range     model.DateRange
	Sessions  []string
	ExcludeID string
}

// Finder runs the existence queries against stored bookings.
type Finder interface {
	HasHourlyOverlap(ctx context.Context, q HourlyQuery) (bool, error)
	HasDailyOverlap(ctx context.Context, q DailyQuery) (bool, error)
}

// Request is a prospective placement. ExcludeID names the booking being updated.
type Request struct {
	OwnerID   string
	Schedule  model.Schedule
	ExcludeID string
}

type Checker struct {
	tracer trace.Tracer
}

func NewChecker() *Checker {
	return &Checker{tracer: otelx.Tracer("conflict")}
}

// Conflicts reports whether req collides with a stored booking visible through f.
// The request must already be structurally valid for its kind.
func (c *Checker) Conflicts(ctx context.Context, f Finder, req Request) (bool, error) {
	s := req.Schedule
	ctx, span := c.tracer.Start(ctx, "conflict.search", trace.WithAttributes(
		otelx.BookingAttrs(string(s.Kind), s.Items, req.ExcludeID != "")...,
	), trace.WithAttributes(otelx.KeyOwnerID.String(req.OwnerID)))
	defer span.End()

	var (
		found bool
		err   error
	)
	switch s.Kind {
	case model.KindHourly:
		found, err = f.HasHourlyOverlap(ctx, HourlyQuery{
			OwnerID:   req.OwnerID,
			Items:     s.Items,
			Date:      s.Date,
			Window:    s.Time,
			ExcludeID: req.ExcludeID,
		})
	case model.KindDaily:
		found, err = f.HasDailyOverlap(ctx, DailyQuery{
			OwnerID:   req.OwnerID,
			Items:     s.Items,
			Range:     s.Range,
			Sessions:  ConflictingSessions(s.Session),
			ExcludeID: req.ExcludeID,
		})
	default:
		err = fmt.Errorf("unknown booking kind %q", s.Kind)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "conflict search failed")
		return false, err
	}
	span.SetAttributes(otelx.KeyBookingConflict.Bool(found))
	return found, nil
}
