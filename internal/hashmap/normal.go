package hashmap

import "sync"

// NormalMap implements the Map interface using normal hash map behaviour.
// Basically it simply wraps the builtin map type with a RWMutex mechanism in order to provide thread safety.
type NormalMap[K comparable, V any] struct {
	mtx        sync.RWMutex
	underlying map[K]V
}

var _ Map[int, any] = (*NormalMap[int, any])(nil)

// NewNormal creates a new normal thread safe Map
func NewNormal[K comparable, V any]() *NormalMap[K, V] {
	return &NormalMap[K, V]{
		underlying: make(map[K]V),
	}
}

// Size returns the amount of stored key-value pairs
func (obj *NormalMap[K, V]) Size() int {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	return len(obj.underlying)
}

// Has returns whether a value is assigned to the given key
func (obj *NormalMap[K, V]) Has(key K) bool {
	_, ok := obj.Lookup(key)
	return ok
}

// Lookup returns the value assigned to the given key and a boolean indicating if the value was set manually or is
// the type's zero value
func (obj *NormalMap[K, V]) Lookup(key K) (V, bool) {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	val, ok := obj.underlying[key]
	return val, ok
}

// Get returns the value assigned to the given key.
// May be the type's zero value if it was not set using Set before; use Has or Lookup for this information.
func (obj *NormalMap[K, V]) Get(key K) V {
	val, _ := obj.Lookup(key)
	return val
}

// Set sets a key-value pair
func (obj *NormalMap[K, V]) Set(key K, value V) {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	obj.underlying[key] = value
}

// Unset deletes the value assigned to given key
func (obj *NormalMap[K, V]) Unset(key K) {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	delete(obj.underlying, key)
}

// UnsetFunc deletes every key the given predicate matches and returns the amount of deleted keys
func (obj *NormalMap[K, V]) UnsetFunc(match func(key K) bool) int {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	n := 0
	for key := range obj.underlying {
		if match(key) {
			delete(obj.underlying, key)
			n++
		}
	}
	return n
}

// Keys returns a snapshot of all currently stored keys in no particular order
func (obj *NormalMap[K, V]) Keys() []K {
	obj.mtx.RLock()
	defer obj.mtx.RUnlock()
	keys := make([]K, 0, len(obj.underlying))
	for key := range obj.underlying {
		keys = append(keys, key)
	}
	return keys
}

// Clear clears the whole map (essentially re-creating the underlying map)
func (obj *NormalMap[K, V]) Clear() {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	obj.underlying = make(map[K]V)
}

// manipulate allows a thread safe direct manipulation of the underlying map by wrapping the given function in a
// lock of the underlying mutex
func (obj *NormalMap[K, V]) manipulate(action func(underlying map[K]V)) {
	obj.mtx.Lock()
	defer obj.mtx.Unlock()
	action(obj.underlying)
}
