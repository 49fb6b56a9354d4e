package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

type testClock struct {
	mtx sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mtx.Lock()
	defer clock.mtx.Unlock()
	return clock.now
}

func (clock *testClock) Advance(d time.Duration) {
	clock.mtx.Lock()
	defer clock.mtx.Unlock()
	clock.now = clock.now.Add(d)
}

func newTestClient(t *testing.T, opts Options) (*Client, *testClock) {
	t.Helper()
	if opts.Backend == nil {
		opts.Backend = NewMemoryBackend(0)
	}
	client := New(opts)
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	client.now = clock.Now
	t.Cleanup(func() { _ = client.Close() })
	return client, clock
}

func TestFetchCollapsesConcurrentCalls(t *testing.T) {
	client, _ := newTestClient(t, Options{})

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (page, error) {
		calls.Add(1)
		<-release
		return page{Items: []string{"a", "b"}, Total: 2}, nil
	}

	results := make([]page, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Fetch(context.Background(), client, "offers:{}", fetch)
		}(i)
	}

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(client.metrics.misses) == 2 && calls.Load() == 1
	}, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, page{Items: []string{"a", "b"}, Total: 2}, results[i])
	}
	assert.Equal(t, float64(1), testutil.ToFloat64(client.metrics.collapsed))
}

func TestFetchPropagatesErrorsWithoutCaching(t *testing.T) {
	client, _ := newTestClient(t, Options{StaleTime: time.Minute})

	boom := errors.New("boom")
	var calls atomic.Int32
	release := make(chan struct{})
	failing := func(context.Context) (page, error) {
		calls.Add(1)
		<-release
		return page{}, boom
	}

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := Fetch(context.Background(), client, "offers:{}", failing)
			errs <- err
		}()
	}
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(client.metrics.misses) == 2
	}, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, <-errs, boom)
	}
	assert.Equal(t, int32(1), calls.Load())

	// the failed key is neither cached nor stuck in flight
	res, err := Fetch(context.Background(), client, "offers:{}", func(context.Context) (page, error) {
		calls.Add(1)
		return page{Total: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchServesFreshResults(t *testing.T) {
	client, clock := newTestClient(t, Options{StaleTime: 30 * time.Second})

	calls := 0
	fetch := func(context.Context) (page, error) {
		calls++
		return page{Total: calls}, nil
	}

	res, err := Fetch(context.Background(), client, "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	clock.Advance(29 * time.Second)
	res, err = Fetch(context.Background(), client, "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, calls)

	clock.Advance(time.Second)
	res, err = Fetch(context.Background(), client, "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	res, err = Fetch(context.Background(), client, "k", fetch, Force())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)

	res, err = Fetch(context.Background(), client, "k", fetch, WithStaleTime(0))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)

	assert.Equal(t, float64(1), testutil.ToFloat64(client.metrics.hits))
}

func TestFetchRetries(t *testing.T) {
	client, _ := newTestClient(t, Options{Retry: 1})

	calls := 0
	flaky := func(context.Context) (page, error) {
		calls++
		if calls < 3 {
			return page{}, errors.New("unavailable")
		}
		return page{Total: 3}, nil
	}

	_, err := Fetch(context.Background(), client, "k", flaky)
	assert.EqualError(t, err, "unavailable")
	assert.Equal(t, 2, calls)

	calls = 0
	res, err := Fetch(context.Background(), client, "k", flaky, WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(client.metrics.fetchErrors))
}

func TestFetchIsDetachedFromCallerCancellation(t *testing.T) {
	client, _ := newTestClient(t, Options{StaleTime: time.Minute})

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (page, error) {
		calls.Add(1)
		<-release
		if err := ctx.Err(); err != nil {
			return page{}, err
		}
		return page{Total: 7}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, client, "k", fetch)
		errs <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Fetch kept waiting after its context was canceled")
	}

	// the abandoned fetch still completes and fills the cache
	close(release)
	require.Eventually(t, func() bool {
		res, err := Fetch(context.Background(), client, "k", func(context.Context) (page, error) {
			return page{}, errors.New("not cached")
		})
		return err == nil && res.Total == 7
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvalidate(t *testing.T) {
	client, _ := newTestClient(t, Options{StaleTime: time.Hour})
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) (page, error) {
		calls++
		return page{Total: calls}, nil
	}
	for _, key := range []string{"offers:a", "offers:b", "universities:a"} {
		_, err := Fetch(ctx, client, key, fetch)
		require.NoError(t, err)
	}
	require.Equal(t, 3, calls)

	n, err := client.InvalidatePrefix(ctx, "offers:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = Fetch(ctx, client, "universities:a", fetch)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	_, err = Fetch(ctx, client, "offers:a", fetch)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)

	require.NoError(t, client.Invalidate(ctx, "universities:a"))
	_, err = Fetch(ctx, client, "universities:a", fetch)
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
}

func TestInvalidationDiscardsRunningFetches(t *testing.T) {
	client, _ := newTestClient(t, Options{StaleTime: time.Minute})
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	outdated := make(chan page, 1)
	go func() {
		res, err := Fetch(ctx, client, "offers:x", func(context.Context) (page, error) {
			close(started)
			<-release
			return page{Items: []string{"before write"}}, nil
		})
		assert.NoError(t, err)
		outdated <- res
	}()
	<-started

	_, err := client.InvalidatePrefix(ctx, "offers:")
	require.NoError(t, err)

	// callers arriving after the invalidation start a new fetch instead of joining the running one
	calls := 0
	res, err := Fetch(ctx, client, "offers:x", func(context.Context) (page, error) {
		calls++
		return page{Items: []string{"after write"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"after write"}, res.Items)

	// the outdated fetch still serves its own waiters but does not overwrite the newer result
	close(release)
	assert.Equal(t, []string{"before write"}, (<-outdated).Items)

	res, err = Fetch(ctx, client, "offers:x", func(context.Context) (page, error) {
		calls++
		return page{Items: []string{"unexpected"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"after write"}, res.Items)
	assert.Equal(t, 1, calls)
}

func TestInvalidateDuringFetchForcesRefetch(t *testing.T) {
	client, _ := newTestClient(t, Options{StaleTime: time.Minute})
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := Fetch(ctx, client, "offers:x", func(context.Context) (page, error) {
			close(started)
			<-release
			return page{Total: 1}, nil
		})
		assert.NoError(t, err)
	}()
	<-started

	require.NoError(t, client.Invalidate(ctx, "offers:x"))
	close(release)
	<-done

	calls := 0
	res, err := Fetch(ctx, client, "offers:x", func(context.Context) (page, error) {
		calls++
		return page{Total: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, calls)
}

func TestMetricsRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	client, _ := newTestClient(t, Options{Registerer: registry, Namespace: "offers"})

	_, err := Fetch(context.Background(), client, "k", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "offers_query_cache_misses_total")
	assert.Contains(t, names, "offers_query_cache_fetch_duration_seconds")
}
