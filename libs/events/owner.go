package events

import (
	"errors"
	"time"
)

// OwnerUpdatedV1 is published by the account service whenever an owner registers or
// edits their profile. The Kafka topic name equals the event type.
const OwnerUpdatedV1 = "account.owner.updated.v1"

type OwnerUpdated struct {
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number"`
	BusinessType string    `json:"business_type"`
	BusinessName string    `json:"business_name"`
	Address      string    `json:"address"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (e OwnerUpdated) Validate() error {
	if e.OwnerID == "" {
		return errors.New("owner_id is required")
	}
	if e.UpdatedAt.IsZero() {
		return errors.New("updated_at is required")
	}
	return nil
}
