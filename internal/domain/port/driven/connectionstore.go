package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
)

// ErrConnectionNotFound indicates the requested connection does not exist.
var ErrConnectionNotFound = errors.New("connection not found")

// ConnectionStore defines the driven port for connection persistence.
// Implementations store credential fields obfuscated and return them as
// plaintext at the domain boundary. At most one connection is active at a time.
type ConnectionStore interface {
	// Add persists a connection, assigning an ID and inferring the auth type
	// when absent, and returns the stored record.
	Add(ctx context.Context, conn model.Connection) (model.Connection, error)

	// GetByID returns the connection with the given ID.
	// Returns ErrConnectionNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*model.Connection, error)

	// ListAll returns all connections ordered by name.
	ListAll(ctx context.Context) ([]model.Connection, error)

	// Remove deletes the connection. If it was active, the active selection
	// is cleared. Returns ErrConnectionNotFound if it does not exist.
	Remove(ctx context.Context, id string) error

	// SetActive marks the given connection as the active one.
	// Returns ErrConnectionNotFound if it does not exist.
	SetActive(ctx context.Context, id string) error

	// GetActive returns the active connection, or (nil, nil) when none is set.
	GetActive(ctx context.Context) (*model.Connection, error)
}
