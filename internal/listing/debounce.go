package listing

import (
	"sync"
	"time"
)

// Debouncer delays a rapidly changing value until it has been stable for a fixed delay.
// Only the latest value is ever emitted; a superseded timer never emits.
type Debouncer[T any] struct {
	delay time.Duration
	emit  func(T)

	mtx     sync.Mutex
	timer   *time.Timer
	latest  T
	pending bool
	seq     uint64
	version uint64
}

// NewDebouncer creates a debouncer calling emit with the settled value.
// A delay <= 0 emits synchronously on every Set.
func NewDebouncer[T any](delay time.Duration, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		emit:  emit,
	}
}

// Set records a new value and restarts the delay
func (debouncer *Debouncer[T]) Set(value T) {
	debouncer.mtx.Lock()
	debouncer.accept(debouncer.version+1, value)
}

// SetVersion works like Set but ignores the value if a value with the same or a newer version was set before.
// It reports whether the value was accepted.
func (debouncer *Debouncer[T]) SetVersion(version uint64, value T) bool {
	debouncer.mtx.Lock()
	if version <= debouncer.version {
		debouncer.mtx.Unlock()
		return false
	}
	debouncer.accept(version, value)
	return true
}

// accept records a value; the caller holds the lock, which accept releases
func (debouncer *Debouncer[T]) accept(version uint64, value T) {
	debouncer.version = version
	if debouncer.delay <= 0 {
		debouncer.mtx.Unlock()
		debouncer.emit(value)
		return
	}
	defer debouncer.mtx.Unlock()

	debouncer.latest = value
	debouncer.pending = true
	debouncer.seq++
	seq := debouncer.seq
	if debouncer.timer != nil {
		debouncer.timer.Stop()
	}
	debouncer.timer = time.AfterFunc(debouncer.delay, func() {
		debouncer.fire(seq)
	})
}

func (debouncer *Debouncer[T]) fire(seq uint64) {
	debouncer.mtx.Lock()
	if seq != debouncer.seq || !debouncer.pending {
		debouncer.mtx.Unlock()
		return
	}
	debouncer.pending = false
	value := debouncer.latest
	debouncer.mtx.Unlock()

	debouncer.emit(value)
}

// Pending reports whether a value is waiting for the delay to pass
func (debouncer *Debouncer[T]) Pending() bool {
	debouncer.mtx.Lock()
	defer debouncer.mtx.Unlock()
	return debouncer.pending
}

// Flush emits a pending value immediately
func (debouncer *Debouncer[T]) Flush() {
	debouncer.mtx.Lock()
	if !debouncer.pending {
		debouncer.mtx.Unlock()
		return
	}
	debouncer.pending = false
	debouncer.seq++
	if debouncer.timer != nil {
		debouncer.timer.Stop()
	}
	value := debouncer.latest
	debouncer.mtx.Unlock()

	debouncer.emit(value)
}

// Stop discards a pending value
func (debouncer *Debouncer[T]) Stop() {
	debouncer.mtx.Lock()
	defer debouncer.mtx.Unlock()
	debouncer.pending = false
	debouncer.seq++
	if debouncer.timer != nil {
		debouncer.timer.Stop()
	}
}
