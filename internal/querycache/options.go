package querycache

import "time"

type fetchConfig struct {
	staleTime  time.Duration
	retry      int
	retryDelay time.Duration
	force      bool
}

// FetchOption overrides the client defaults for a single fetch
type FetchOption func(*fetchConfig)

// WithStaleTime sets how long a stored result is served without fetching again.
// A duration <= 0 makes every non-concurrent fetch call the fetch function.
func WithStaleTime(d time.Duration) FetchOption {
	return func(cfg *fetchConfig) {
		cfg.staleTime = d
	}
}

// WithRetry sets the amount of additional attempts after a failed fetch and the delay between them
func WithRetry(count int, delay time.Duration) FetchOption {
	return func(cfg *fetchConfig) {
		if count < 0 {
			count = 0
		}
		cfg.retry = count
		cfg.retryDelay = delay
	}
}

// Force bypasses fresh stored results; concurrent fetches are still collapsed
func Force() FetchOption {
	return func(cfg *fetchConfig) {
		cfg.force = true
	}
}
