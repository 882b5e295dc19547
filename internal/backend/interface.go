// Package backend builds the ledger store and its optional broker connection
// from configuration.
package backend

import (
	"context"

	"kharcha/internal/amqp"
	"kharcha/internal/ports"
)

// CleanupFunc releases what a backend holds open.
type CleanupFunc func() error

// Result is a ready store plus the AMQP client when a broker is configured.
// Publisher is nil otherwise.
type Result struct {
	Store     ports.Store
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Memory specific: when SeedFromBackup is set and SeedPath exists, the
	// store starts from that backup file.
	SeedPath       string
	SeedFromBackup bool

	// AMQP is optional for every backend.
	AMQPURL       string
	AMQPExchange  string
	AMQPQueue     string
	ReminderQueue string
}

// Type names a storage backend.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}
