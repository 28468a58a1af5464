package storage

import (
	"testing"
	"time"
)

func TestOwnerEventCarriesPublicProfile(t *testing.T) {
	at := time.Date(2024, 3, 1, 15, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	evt := OwnerEvent(Owner{
		ID:           "owner-1",
		Email:        "a@b.com",
		PasswordHash: "secret",
		Name:         "Asha",
		BusinessType: "Box Cricket",
		UpdatedAt:    at,
	})
	if err := evt.Validate(); err != nil {
		t.Fatalf("expected valid event: %v", err)
	}
	if evt.OwnerID != "owner-1" || evt.BusinessType != "Box Cricket" || evt.Name != "Asha" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.UpdatedAt.Location() != time.UTC || !evt.UpdatedAt.Equal(at) {
		t.Fatalf("expected UTC timestamp, got %v", evt.UpdatedAt)
	}
}

func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}
