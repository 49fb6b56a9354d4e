package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultGCTime is the time unused entries are kept by the default backend
const DefaultGCTime = 5 * time.Minute

// ErrTypeMismatch is returned when a key is fetched with a result type different from the in-flight one
var ErrTypeMismatch = errors.New("querycache: result type does not match the in-flight fetch of the same key")

// Options configures a Client
type Options struct {
	// Backend stores the results; defaults to a MemoryBackend using DefaultGCTime
	Backend Backend

	// StaleTime is the default duration a stored result is served without fetching again
	StaleTime time.Duration

	// Retry is the default amount of additional attempts after a failed fetch
	Retry int

	// RetryDelay is the default pause between two attempts
	RetryDelay time.Duration

	// Registerer receives the client metrics; nil leaves them unregistered
	Registerer prometheus.Registerer

	// Namespace is the metrics namespace
	Namespace string

	// Logger receives backend failures; defaults to a no-op logger
	Logger *zerolog.Logger
}

// Client is a key-addressed query result cache.
// Concurrent fetches of the same key share one call of the fetch function, and results stay fresh for the
// configured stale time. One Client is meant to be shared by every consumer that should share results.
type Client struct {
	backend  Backend
	inflight singleflight.Group
	defaults fetchConfig

	// epoch counts invalidations; fetches that started in an older epoch do not store their results
	mtx     sync.RWMutex
	epoch   uint64
	running map[string]int

	metrics *metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a new query cache client
func New(opts Options) *Client {
	backend := opts.Backend
	if backend == nil {
		backend = NewMemoryBackend(DefaultGCTime)
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		backend: backend,
		defaults: fetchConfig{
			staleTime:  opts.StaleTime,
			retry:      opts.Retry,
			retryDelay: opts.RetryDelay,
		},
		running: make(map[string]int),
		metrics: newMetrics(opts.Registerer, opts.Namespace),
		logger:  logger,
		now:     time.Now,
	}
}

// Invalidate drops the result stored under the given key so the next fetch hits the fetch function.
// A fetch of the key that is still running keeps serving its current waiters, but its result is not stored.
func (client *Client) Invalidate(ctx context.Context, key string) error {
	client.forget(func(running string) bool { return running == key })
	return client.backend.Delete(ctx, key)
}

// InvalidatePrefix drops every result whose key starts with the given prefix.
// Running fetches of matching keys are handled like in Invalidate.
func (client *Client) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	client.forget(func(running string) bool { return strings.HasPrefix(running, prefix) })
	return client.backend.DeletePrefix(ctx, prefix)
}

// forget starts a new epoch and detaches the matching running fetches, so later callers start new ones
func (client *Client) forget(match func(key string) bool) {
	client.mtx.Lock()
	defer client.mtx.Unlock()
	client.epoch++
	for key := range client.running {
		if match(key) {
			client.inflight.Forget(key)
		}
	}
}

// begin registers a running fetch of key and returns the epoch it started in
func (client *Client) begin(key string) uint64 {
	client.mtx.Lock()
	defer client.mtx.Unlock()
	client.running[key]++
	return client.epoch
}

func (client *Client) finish(key string) {
	client.mtx.Lock()
	defer client.mtx.Unlock()
	if client.running[key]--; client.running[key] <= 0 {
		delete(client.running, key)
	}
}

// Close closes the backend
func (client *Client) Close() error {
	return client.backend.Close()
}

// Fetch returns the result stored under key if it is still fresh and calls fn otherwise.
// Concurrent calls with the same key while fn is running wait for that call instead of issuing their own; they
// receive its result or its error. The call of fn is detached from the cancellation of the caller that started it,
// since other callers may be waiting for it; a caller whose context ends stops waiting and gets the context error.
// Failed fetches are never stored, and neither are results of fetches that were running while their key got
// invalidated.
func Fetch[T any](ctx context.Context, client *Client, key string, fn func(ctx context.Context) (T, error), opts ...FetchOption) (T, error) {
	var zero T
	cfg := client.defaults
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.force {
		if val, ok := lookupFresh[T](ctx, client, key, cfg.staleTime); ok {
			client.metrics.hits.Inc()
			return val, nil
		}
	}
	client.metrics.misses.Inc()

	leader := false
	results := client.inflight.DoChan(key, func() (any, error) {
		leader = true
		epoch := client.begin(key)
		defer client.finish(key)
		detached := context.WithoutCancel(ctx)

		started := client.now()
		val, err := attempt(detached, cfg, fn)
		client.metrics.fetchDuration.Observe(client.now().Sub(started).Seconds())
		if err != nil {
			client.metrics.fetchErrors.Inc()
			return nil, err
		}
		client.store(detached, key, val, epoch)
		return val, nil
	})

	var res singleflight.Result
	select {
	case res = <-results:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if !leader {
		client.metrics.collapsed.Inc()
	}
	if res.Err != nil {
		return zero, res.Err
	}
	val, ok := res.Val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q", ErrTypeMismatch, key)
	}
	return val, nil
}

func lookupFresh[T any](ctx context.Context, client *Client, key string, staleTime time.Duration) (T, bool) {
	var val T
	if staleTime <= 0 {
		return val, false
	}
	entry, ok, err := client.backend.Load(ctx, key)
	if err != nil {
		client.metrics.backendErrors.Inc()
		client.logger.Warn().Err(err).Str("key", key).Msg("could not load a cached query result")
		return val, false
	}
	if !ok || client.now().Sub(entry.UpdatedAt) >= staleTime {
		return val, false
	}
	if err := json.Unmarshal(entry.Payload, &val); err != nil {
		client.metrics.backendErrors.Inc()
		client.logger.Warn().Err(err).Str("key", key).Msg("could not decode a cached query result")
		return val, false
	}
	return val, true
}

func attempt[T any](ctx context.Context, cfg fetchConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		val T
		err error
	)
	for i := 0; i <= cfg.retry; i++ {
		if i > 0 && cfg.retryDelay > 0 {
			time.Sleep(cfg.retryDelay)
		}
		val, err = fn(ctx)
		if err == nil {
			return val, nil
		}
	}
	return val, err
}

func (client *Client) store(ctx context.Context, key string, val any, epoch uint64) {
	payload, err := json.Marshal(val)
	if err != nil {
		client.metrics.backendErrors.Inc()
		client.logger.Warn().Err(err).Str("key", key).Msg("could not encode a query result")
		return
	}
	entry := &Entry{
		Payload:   payload,
		UpdatedAt: client.now(),
	}

	client.mtx.RLock()
	defer client.mtx.RUnlock()
	if epoch != client.epoch {
		client.logger.Debug().Str("key", key).Msg("discarding a query result fetched before an invalidation")
		return
	}
	if err := client.backend.Store(ctx, key, entry); err != nil {
		client.metrics.backendErrors.Inc()
		client.logger.Warn().Err(err).Str("key", key).Msg("could not store a query result")
	}
}
