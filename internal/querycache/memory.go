package querycache

import (
	"context"
	"strings"
	"time"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/hashmap"
)

// MemoryBackend implements the Backend interface using an in-process expiring map
type MemoryBackend struct {
	entries *hashmap.ExpiringMap[string, *Entry]
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates a new in-memory backend whose entries are dropped gcTime after their last write.
// A gcTime <= 0 keeps entries until they get invalidated.
func NewMemoryBackend(gcTime time.Duration) *MemoryBackend {
	entries := hashmap.NewExpiring[string, *Entry](gcTime)
	if gcTime > 0 {
		entries.ScheduleCleanupTask(sweepInterval(gcTime))
	}
	return &MemoryBackend{entries: entries}
}

func sweepInterval(gcTime time.Duration) time.Duration {
	tick := gcTime / 4
	if tick < time.Second {
		tick = time.Second
	}
	if tick > time.Minute {
		tick = time.Minute
	}
	return tick
}

// Load retrieves the entry stored under the given key
func (backend *MemoryBackend) Load(_ context.Context, key string) (*Entry, bool, error) {
	entry, ok := backend.entries.Lookup(key)
	return entry, ok, nil
}

// Store stores an entry under the given key
func (backend *MemoryBackend) Store(_ context.Context, key string, entry *Entry) error {
	backend.entries.Set(key, entry)
	return nil
}

// Delete deletes the entry stored under the given key
func (backend *MemoryBackend) Delete(_ context.Context, key string) error {
	backend.entries.Unset(key)
	return nil
}

// DeletePrefix deletes every entry whose key starts with the given prefix
func (backend *MemoryBackend) DeletePrefix(_ context.Context, prefix string) (int, error) {
	return backend.entries.UnsetFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	}), nil
}

// Close stops the garbage collection task and drops all entries
func (backend *MemoryBackend) Close() error {
	backend.entries.StopCleanupTask()
	backend.entries.Clear()
	return nil
}
