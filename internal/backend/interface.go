package backend

import (
	"context"

	"finsmart/internal/amqp"
	"finsmart/internal/ledger"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the selected ledger store, the optional AMQP client and a
// cleanup function for whatever the factory opened.
type Result struct {
	Store   ledger.Store
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates ledger backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// File specific
	LedgerPath string

	// SQLite specific
	SQLiteDBPath string

	// AMQP (optional, any backend)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type represents the kind of ledger backend
type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
