package otelx

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys shared by the services.
const (
	KeyOwnerID         = attribute.Key("bookingcrown.owner_id")
	KeyBookingKind     = attribute.Key("booking.kind")
	KeyBookingItems    = attribute.Key("booking.items")
	KeyBookingUpdate   = attribute.Key("booking.update")
	KeyBookingConflict = attribute.Key("booking.conflict")
	KeyEventID         = attribute.Key("messaging.message.id")
	KeyEventType       = attribute.Key("bookingcrown.event_type")
)

// BookingAttrs describes a placement being checked or written.
func BookingAttrs(kind string, items []string, update bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		KeyBookingKind.String(kind),
		KeyBookingItems.StringSlice(items),
		KeyBookingUpdate.Bool(update),
	}
}
