package listing

import "sync"

// State holds every query-affecting value of a listing.
// Search is the raw, non-debounced search input.
type State struct {
	Filters   Filters
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
}

// Clone returns a copy of the state that shares no filter map with the receiver
func (state State) Clone() State {
	state.Filters = state.Filters.Clone()
	return state
}

// Equal reports whether both states hold the same values
func (state State) Equal(other State) bool {
	return state.Search == other.Search &&
		state.Page == other.Page &&
		state.Limit == other.Limit &&
		state.SortBy == other.SortBy &&
		state.SortOrder == other.SortOrder &&
		state.Filters.Equal(other.Filters)
}

// Query builds the canonical query of the state using the given search term
func (state State) Query(search string) Query {
	return Query{
		Filters:   state.Filters.Clone(),
		Search:    search,
		Page:      state.Page,
		Limit:     state.Limit,
		SortBy:    state.SortBy,
		SortOrder: state.SortOrder,
	}
}

// Store holds a State and notifies its subscribers of every transition.
// Every transition gets a strictly increasing version, so subscribers that may be invoked concurrently can detect
// and drop outdated notifications.
type Store struct {
	mtx         sync.Mutex
	state       State
	version     uint64
	subscribers map[uint64]func(State, uint64)
	nextID      uint64
}

// NewStore creates a new store holding the given initial state
func NewStore(initial State) *Store {
	return &Store{
		state:       initial.Clone(),
		subscribers: make(map[uint64]func(State, uint64)),
	}
}

// Get returns a copy of the current state and its version
func (store *Store) Get() (State, uint64) {
	store.mtx.Lock()
	defer store.mtx.Unlock()
	return store.state.Clone(), store.version
}

// Update applies the given mutation atomically. Subscribers are notified once, after the lock is released, if the
// mutation changed the state. The resulting state is returned.
func (store *Store) Update(mutate func(state *State)) State {
	store.mtx.Lock()
	next := store.state.Clone()
	mutate(&next)
	if next.Equal(store.state) {
		store.mtx.Unlock()
		return next
	}
	store.state = next
	store.version++
	version := store.version
	subscribers := make([]func(State, uint64), 0, len(store.subscribers))
	for _, subscriber := range store.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	store.mtx.Unlock()

	for _, subscriber := range subscribers {
		subscriber(next.Clone(), version)
	}
	return next
}

// Subscribe registers a function that receives every new state together with its version.
// The returned function removes the subscription.
func (store *Store) Subscribe(subscriber func(state State, version uint64)) func() {
	store.mtx.Lock()
	defer store.mtx.Unlock()
	id := store.nextID
	store.nextID++
	store.subscribers[id] = subscriber
	return func() {
		store.mtx.Lock()
		defer store.mtx.Unlock()
		delete(store.subscribers, id)
	}
}
