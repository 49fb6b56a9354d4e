package hashmap

import (
	"time"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/task"
)

type expiringEntry[T any] struct {
	raw      T
	inserted time.Time
}

// ExpiringMap implements the Map interface and wraps the standard NormalMap in order to implement value expiration.
// Expired values are invisible to all read operations immediately; they are physically removed by Sweep, which the
// cleanup task calls periodically.
type ExpiringMap[K comparable, V any] struct {
	normal      *NormalMap[K, *expiringEntry[V]]
	lifetime    time.Duration
	cleanupTask *task.RepeatingTask
	now         func() time.Time
}

var _ Map[int, any] = (*ExpiringMap[int, any])(nil)

// NewExpiring creates a new expiring map whose values exist for a specific lifetime.
// A lifetime <= 0 disables expiration.
func NewExpiring[K comparable, V any](lifetime time.Duration) *ExpiringMap[K, V] {
	return &ExpiringMap[K, V]{
		normal:   NewNormal[K, *expiringEntry[V]](),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// ScheduleCleanupTask schedules the task that cleans up expired values in a specific interval.
// A call to StopCleanupTask as soon as the map is no longer needed is highly recommended because it would not be
// garbage collected otherwise.
func (obj *ExpiringMap[K, V]) ScheduleCleanupTask(tick time.Duration) {
	if obj.cleanupTask != nil {
		return
	}
	obj.cleanupTask = task.NewRepeating(func() {
		obj.Sweep()
	}, tick)
	obj.cleanupTask.Start()
}

// StopCleanupTask stops the cleanup task
func (obj *ExpiringMap[K, V]) StopCleanupTask() {
	if obj.cleanupTask == nil {
		return
	}
	obj.cleanupTask.Stop(false)
	obj.cleanupTask = nil
}

// Sweep removes all expired values and returns how many were removed
func (obj *ExpiringMap[K, V]) Sweep() int {
	removed := 0
	obj.normal.manipulate(func(raw map[K]*expiringEntry[V]) {
		for key, val := range raw {
			if obj.expired(val) {
				delete(raw, key)
				removed++
			}
		}
	})
	return removed
}

func (obj *ExpiringMap[K, V]) expired(entry *expiringEntry[V]) bool {
	return obj.lifetime > 0 && obj.now().Sub(entry.inserted) > obj.lifetime
}

// Size returns the amount of stored key-value pairs, including expired ones not swept yet
func (obj *ExpiringMap[K, V]) Size() int {
	return obj.normal.Size()
}

// Has returns whether a non-expired value is assigned to the given key
func (obj *ExpiringMap[K, V]) Has(key K) bool {
	_, ok := obj.Lookup(key)
	return ok
}

// Lookup returns the value assigned to the given key and a boolean indicating if the value was set manually or is
// the type's zero value. Expired values are reported as absent.
func (obj *ExpiringMap[K, V]) Lookup(key K) (V, bool) {
	val, _, ok := obj.LookupAge(key)
	return val, ok
}

// LookupAge works like Lookup but additionally returns the time elapsed since the value was set
func (obj *ExpiringMap[K, V]) LookupAge(key K) (V, time.Duration, bool) {
	val, ok := obj.normal.Lookup(key)
	if !ok || obj.expired(val) {
		var zero V
		return zero, 0, false
	}
	return val.raw, obj.now().Sub(val.inserted), true
}

// Get returns the value assigned to the given key.
// Will be the type's zero value if it was not set using Set before or expired.
func (obj *ExpiringMap[K, V]) Get(key K) V {
	val, _ := obj.Lookup(key)
	return val
}

// Set sets a key-value pair and resets its lifetime
func (obj *ExpiringMap[K, V]) Set(key K, value V) {
	obj.normal.Set(key, &expiringEntry[V]{
		raw:      value,
		inserted: obj.now(),
	})
}

// Unset deletes the value assigned to given key
func (obj *ExpiringMap[K, V]) Unset(key K) {
	obj.normal.Unset(key)
}

// UnsetFunc deletes every key the given predicate matches and returns the amount of deleted keys
func (obj *ExpiringMap[K, V]) UnsetFunc(match func(key K) bool) int {
	return obj.normal.UnsetFunc(match)
}

// Keys returns a snapshot of all keys holding non-expired values
func (obj *ExpiringMap[K, V]) Keys() []K {
	var keys []K
	obj.normal.manipulate(func(raw map[K]*expiringEntry[V]) {
		keys = make([]K, 0, len(raw))
		for key, val := range raw {
			if !obj.expired(val) {
				keys = append(keys, key)
			}
		}
	})
	return keys
}

// Clear clears the whole map (essentially re-creating the underlying map)
func (obj *ExpiringMap[K, V]) Clear() {
	obj.normal.Clear()
}
