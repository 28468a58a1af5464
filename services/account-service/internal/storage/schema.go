package storage

import (
	"context"
	_ "embed"

	"github.com/DrashtiGohil19/bookingcrown/libs/db"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the owners and outbox tables when they are missing.
func EnsureSchema(ctx context.Context, pool *db.Pool) error {
	return pool.ApplySchema(ctx, schemaSQL)
}
