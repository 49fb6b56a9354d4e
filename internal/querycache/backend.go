package querycache

import (
	"context"
	"time"
)

// Entry represents a single cached query result
type Entry struct {
	Payload   []byte    `json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Backend defines where query results are kept between fetches.
// Entries are garbage collected by the backend itself; staleness is decided by the Client.
type Backend interface {
	// Load retrieves the entry stored under the given key and a boolean indicating whether one exists
	Load(ctx context.Context, key string) (*Entry, bool, error)

	// Store stores an entry under the given key
	Store(ctx context.Context, key string, entry *Entry) error

	// Delete deletes the entry stored under the given key
	Delete(ctx context.Context, key string) error

	// DeletePrefix deletes every entry whose key starts with the given prefix and returns how many were deleted
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Close releases the resources held by the backend
	Close() error
}
