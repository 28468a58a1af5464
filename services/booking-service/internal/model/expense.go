package model

import "time"

type Expense struct {
	ID          string
	OwnerID     string
	Date        time.Time
	Description string
	Amount      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerProfile is the local projection of an owner account, fed by account events.
type OwnerProfile struct {
	OwnerID      string
	Name         string
	Email        string
	MobileNumber string
	BusinessType string
	BusinessName string
	Address      string
	UpdatedAt    time.Time
}
