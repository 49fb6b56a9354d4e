// Package listing coordinates filtered, sorted and paginated queries: it keeps the query state, mirrors it to an
// address, debounces free-text search and fetches pages through a shared query cache that collapses identical
// in-flight requests.
package listing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/querycache"
	"github.com/rs/zerolog"
)

// Defaults used for zero-valued options
const (
	DefaultLimit          = 10
	DefaultSearchDebounce = 500 * time.Millisecond
)

var (
	ErrNoQueryKey = errors.New("listing: a query key is required")
	ErrNoQueryFn  = errors.New("listing: a query function is required")
	ErrNoClient   = errors.New("listing: a query cache client is required")
	ErrNoAddress  = errors.New("listing: URL synchronization requires an address")
)

// Options configures a Listing
type Options[T any] struct {
	QueryKey         string
	DefaultFilters   Filters
	DefaultSortBy    string
	DefaultSortOrder SortOrder
	DefaultPage      int
	DefaultLimit     int

	// SearchDebounce delays search input before it reaches the query; negative values disable debouncing
	SearchDebounce time.Duration

	QueryFn      FetchFunc[T]
	QueryOptions []querycache.FetchOption

	// SyncWithURL reads the initial state from Address and writes every state change back to it
	SyncWithURL bool
	Address     Address

	Client *querycache.Client
	Logger *zerolog.Logger
}

// View is a consistent snapshot of a listing
type View[T any] struct {
	Data      []T
	IsLoading bool
	IsError   bool
	Err       error
	Filters   Filters
	Search    string
	SortBy    string
	SortOrder SortOrder
	Pagination
}

// Listing keeps the state of one filtered query and the outcome of its latest fetch.
// All methods are safe for concurrent use.
type Listing[T any] struct {
	key       string
	queryFn   FetchFunc[T]
	queryOpts []querycache.FetchOption
	client    *querycache.Client
	address   Address
	defaults  State
	logger    zerolog.Logger

	store       *Store
	debouncer   *Debouncer[searchInput]
	unsubscribe func()

	mtx        sync.Mutex
	applied    uint64
	rawSearch  string
	search     string
	searchAt   uint64
	query      Query
	generation uint64
	pending    chan struct{}
	data       []T
	total      int
	loading    bool
	err        error
	closed     bool

	subMtx      sync.Mutex
	subscribers map[uint64]func(View[T])
	nextSub     uint64
}

// New creates a listing and starts fetching its initial page.
// With SyncWithURL the initial state is read from the address; the state written back omits default values.
func New[T any](opts Options[T]) (*Listing[T], error) {
	switch {
	case opts.QueryKey == "":
		return nil, ErrNoQueryKey
	case opts.QueryFn == nil:
		return nil, ErrNoQueryFn
	case opts.Client == nil:
		return nil, ErrNoClient
	case opts.SyncWithURL && opts.Address == nil:
		return nil, ErrNoAddress
	}

	defaults := State{
		Filters:   opts.DefaultFilters.Clone(),
		Page:      opts.DefaultPage,
		Limit:     opts.DefaultLimit,
		SortBy:    opts.DefaultSortBy,
		SortOrder: opts.DefaultSortOrder,
	}
	if defaults.Page < 1 {
		defaults.Page = 1
	}
	if defaults.Limit < 1 {
		defaults.Limit = DefaultLimit
	}
	if !defaults.SortOrder.Valid() {
		defaults.SortOrder = Desc
	}
	debounce := opts.SearchDebounce
	if debounce == 0 {
		debounce = DefaultSearchDebounce
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	initial := defaults.Clone()
	if opts.SyncWithURL {
		initial = ParseState(opts.Address.Values(), defaults)
	}

	listing := &Listing[T]{
		key:         opts.QueryKey,
		queryFn:     opts.QueryFn,
		queryOpts:   opts.QueryOptions,
		client:      opts.Client,
		defaults:    defaults,
		logger:      logger.With().Str("query_key", opts.QueryKey).Logger(),
		store:       NewStore(initial),
		rawSearch:   initial.Search,
		search:      initial.Search,
		data:        []T{},
		subscribers: make(map[uint64]func(View[T])),
	}
	if opts.SyncWithURL {
		listing.address = opts.Address
		listing.address.Replace(EncodeState(initial, defaults))
	}
	listing.debouncer = NewDebouncer(debounce, listing.applySearch)
	listing.unsubscribe = listing.store.Subscribe(listing.onStateChange)
	listing.refresh(nil)
	return listing, nil
}

func (listing *Listing[T]) onStateChange(state State, version uint64) {
	listing.mtx.Lock()
	if listing.closed || version <= listing.applied {
		listing.mtx.Unlock()
		return
	}
	listing.applied = version
	if listing.address != nil {
		listing.address.Replace(EncodeState(state, listing.defaults))
	}
	searchChanged := state.Search != listing.rawSearch
	listing.rawSearch = state.Search
	listing.mtx.Unlock()

	if searchChanged {
		listing.debouncer.SetVersion(version, searchInput{version: version, text: state.Search})
	}
	listing.refresh(nil)
	listing.emit()
}

// searchInput is a raw search input tagged with the version of the state transition that produced it
type searchInput struct {
	version uint64
	text    string
}

func (listing *Listing[T]) applySearch(input searchInput) {
	listing.mtx.Lock()
	if listing.closed || input.version < listing.searchAt {
		listing.mtx.Unlock()
		return
	}
	listing.searchAt = input.version
	if listing.search == input.text {
		listing.mtx.Unlock()
		return
	}
	listing.search = input.text
	listing.mtx.Unlock()

	listing.refresh(nil)
	listing.emit()
}

// refresh starts a fetch if the canonical query changed or a forced fetch is requested
func (listing *Listing[T]) refresh(force []querycache.FetchOption) chan struct{} {
	state, _ := listing.store.Get()

	listing.mtx.Lock()
	query := state.Query(listing.search)
	if force == nil && listing.pending != nil && query.Equal(listing.query) {
		done := listing.pending
		listing.mtx.Unlock()
		return done
	}
	listing.query = query
	listing.generation++
	generation := listing.generation
	done := make(chan struct{})
	listing.pending = done
	listing.loading = true
	listing.mtx.Unlock()

	opts := append(append([]querycache.FetchOption{}, listing.queryOpts...), force...)
	go listing.fetch(generation, query, done, opts)
	return done
}

func (listing *Listing[T]) fetch(generation uint64, query Query, done chan struct{}, opts []querycache.FetchOption) {
	defer close(done)

	key := query.Key(listing.key)
	result, err := querycache.Fetch(context.Background(), listing.client, key, func(ctx context.Context) (Result[T], error) {
		return listing.queryFn(ctx, query)
	}, opts...)

	listing.mtx.Lock()
	if generation != listing.generation || listing.closed {
		listing.mtx.Unlock()
		return
	}
	listing.loading = false
	if err != nil {
		listing.err = err
		listing.logger.Debug().Err(err).Str("key", key).Msg("fetch failed")
	} else {
		listing.err = nil
		listing.data = result.Data
		if listing.data == nil {
			listing.data = []T{}
		}
		listing.total = result.Total
	}
	listing.mtx.Unlock()

	listing.emit()
}

// Subscribe registers a function that receives a new view after every state change and every settled fetch.
// The returned function removes the subscription.
func (listing *Listing[T]) Subscribe(subscriber func(View[T])) func() {
	listing.subMtx.Lock()
	defer listing.subMtx.Unlock()
	id := listing.nextSub
	listing.nextSub++
	listing.subscribers[id] = subscriber
	return func() {
		listing.subMtx.Lock()
		defer listing.subMtx.Unlock()
		delete(listing.subscribers, id)
	}
}

func (listing *Listing[T]) emit() {
	listing.subMtx.Lock()
	subscribers := make([]func(View[T]), 0, len(listing.subscribers))
	for _, subscriber := range listing.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	listing.subMtx.Unlock()
	if len(subscribers) == 0 {
		return
	}

	view := listing.Snapshot()
	for _, subscriber := range subscribers {
		subscriber(view)
	}
}

// Snapshot returns a consistent view of the state and the latest fetch outcome
func (listing *Listing[T]) Snapshot() View[T] {
	state, _ := listing.store.Get()

	listing.mtx.Lock()
	defer listing.mtx.Unlock()
	return View[T]{
		Data:       listing.data,
		IsLoading:  listing.loading,
		IsError:    listing.err != nil,
		Err:        listing.err,
		Filters:    state.Filters,
		Search:     state.Search,
		SortBy:     state.SortBy,
		SortOrder:  state.SortOrder,
		Pagination: Paginate(state.Page, state.Limit, listing.total),
	}
}

// Data returns the items of the latest successful fetch; an empty slice before the first one
func (listing *Listing[T]) Data() []T {
	listing.mtx.Lock()
	defer listing.mtx.Unlock()
	return listing.data
}

// Total returns the total count reported by the latest successful fetch
func (listing *Listing[T]) Total() int {
	listing.mtx.Lock()
	defer listing.mtx.Unlock()
	return listing.total
}

// IsLoading reports whether the fetch of the current query is still running
func (listing *Listing[T]) IsLoading() bool {
	listing.mtx.Lock()
	defer listing.mtx.Unlock()
	return listing.loading
}

// IsError reports whether the latest fetch of the current query failed
func (listing *Listing[T]) IsError() bool {
	return listing.Err() != nil
}

// Err returns the error of the latest fetch of the current query
func (listing *Listing[T]) Err() error {
	listing.mtx.Lock()
	defer listing.mtx.Unlock()
	return listing.err
}

// State returns the current query state
func (listing *Listing[T]) State() State {
	state, _ := listing.store.Get()
	return state
}

// Query returns the canonical query of the current state, using the debounced search term
func (listing *Listing[T]) Query() Query {
	listing.mtx.Lock()
	defer listing.mtx.Unlock()
	return listing.query
}

// Page returns the current page
func (listing *Listing[T]) Page() int {
	return listing.State().Page
}

// Limit returns the current page size
func (listing *Listing[T]) Limit() int {
	return listing.State().Limit
}

// Filters returns a copy of the current filters
func (listing *Listing[T]) Filters() Filters {
	return listing.State().Filters
}

// Search returns the raw search input
func (listing *Listing[T]) Search() string {
	return listing.State().Search
}

// SortBy returns the current sort field
func (listing *Listing[T]) SortBy() string {
	return listing.State().SortBy
}

// SortOrder returns the current sort order
func (listing *Listing[T]) SortOrder() SortOrder {
	return listing.State().SortOrder
}

// TotalPages returns the amount of pages of the current page size
func (listing *Listing[T]) TotalPages() int {
	return listing.Snapshot().TotalPages
}

// HasNextPage reports whether a page follows the current one
func (listing *Listing[T]) HasNextPage() bool {
	return listing.Snapshot().HasNextPage
}

// HasPrevPage reports whether a page precedes the current one
func (listing *Listing[T]) HasPrevPage() bool {
	return listing.Snapshot().HasPrevPage
}

// SetFilter sets one filter and returns to the first page; a nil value removes the filter
func (listing *Listing[T]) SetFilter(key string, value any) {
	listing.store.Update(func(state *State) {
		if value == nil {
			delete(state.Filters, key)
		} else {
			state.Filters[key] = value
		}
		state.Page = 1
	})
}

// SetFilters merges the given filters into the current ones and returns to the first page.
// nil values remove the respective filter.
func (listing *Listing[T]) SetFilters(filters Filters) {
	listing.store.Update(func(state *State) {
		for key, value := range filters {
			if value == nil {
				delete(state.Filters, key)
			} else {
				state.Filters[key] = value
			}
		}
		state.Page = 1
	})
}

// SetSearch sets the raw search input and returns to the first page.
// The query picks the term up once it has been stable for the debounce delay.
func (listing *Listing[T]) SetSearch(text string) {
	listing.store.Update(func(state *State) {
		state.Search = text
		state.Page = 1
	})
}

// SetPage sets the current page; values below 1 select the first page
func (listing *Listing[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	listing.store.Update(func(state *State) {
		state.Page = page
	})
}

// SetLimit sets the page size and returns to the first page; values below 1 are raised to 1
func (listing *Listing[T]) SetLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	listing.store.Update(func(state *State) {
		state.Limit = limit
		state.Page = 1
	})
}

// SetSort sorts by the given field. Without an order, selecting the current field again toggles the order and
// selecting another field uses the default order.
func (listing *Listing[T]) SetSort(field string, order SortOrder) {
	listing.store.Update(func(state *State) {
		if !order.Valid() {
			if field == state.SortBy {
				order = state.SortOrder.Toggle()
			} else {
				order = listing.defaults.SortOrder
			}
		}
		state.SortBy = field
		state.SortOrder = order
	})
}

// ResetFilters restores the default filters, search, page, page size and sort in a single transition
func (listing *Listing[T]) ResetFilters() {
	listing.store.Update(func(state *State) {
		*state = listing.defaults.Clone()
	})
}

// FlushSearch applies a pending search input immediately
func (listing *Listing[T]) FlushSearch() {
	listing.debouncer.Flush()
}

// Refetch fetches the current query again, bypassing fresh cached results, and waits for the outcome
func (listing *Listing[T]) Refetch(ctx context.Context) error {
	done := listing.refresh([]querycache.FetchOption{querycache.Force()})
	select {
	case <-done:
		return listing.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the fetch of the current query settled and returns its error
func (listing *Listing[T]) Wait(ctx context.Context) error {
	for {
		listing.mtx.Lock()
		done := listing.pending
		listing.mtx.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		listing.mtx.Lock()
		settled := done == listing.pending
		err := listing.err
		listing.mtx.Unlock()
		if settled {
			return err
		}
	}
}

// Close stops debouncing and detaches the listing from its state; running fetches complete but are discarded
func (listing *Listing[T]) Close() {
	listing.mtx.Lock()
	if listing.closed {
		listing.mtx.Unlock()
		return
	}
	listing.closed = true
	listing.mtx.Unlock()

	listing.unsubscribe()
	listing.debouncer.Stop()
}
