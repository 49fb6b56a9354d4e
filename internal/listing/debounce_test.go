package listing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder[T any] struct {
	mtx    sync.Mutex
	values []T
}

func (rec *recorder[T]) record(value T) {
	rec.mtx.Lock()
	defer rec.mtx.Unlock()
	rec.values = append(rec.values, value)
}

func (rec *recorder[T]) get() []T {
	rec.mtx.Lock()
	defer rec.mtx.Unlock()
	return append([]T(nil), rec.values...)
}

func TestDebouncerEmitsOnlyTheSettledValue(t *testing.T) {
	rec := &recorder[string]{}
	debouncer := NewDebouncer(100*time.Millisecond, rec.record)

	for _, input := range []string{"a", "ab", "abc"} {
		debouncer.Set(input)
		time.Sleep(10 * time.Millisecond)
	}
	assert.True(t, debouncer.Pending())
	assert.Empty(t, rec.get())

	assert.Eventually(t, func() bool { return len(rec.get()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"abc"}, rec.get())
	assert.False(t, debouncer.Pending())
}

func TestDebouncerFlushAndStop(t *testing.T) {
	rec := &recorder[int]{}
	debouncer := NewDebouncer(time.Hour, rec.record)

	debouncer.Set(1)
	debouncer.Set(2)
	debouncer.Flush()
	assert.Equal(t, []int{2}, rec.get())

	// nothing pending anymore
	debouncer.Flush()
	assert.Equal(t, []int{2}, rec.get())

	debouncer.Set(3)
	debouncer.Stop()
	debouncer.Flush()
	assert.Equal(t, []int{2}, rec.get())
}

func TestDebouncerWithoutDelay(t *testing.T) {
	rec := &recorder[string]{}
	debouncer := NewDebouncer(0, rec.record)

	debouncer.Set("x")
	debouncer.Set("y")
	assert.Equal(t, []string{"x", "y"}, rec.get())
	assert.False(t, debouncer.Pending())
}

func TestDebouncerIgnoresOutdatedVersions(t *testing.T) {
	for name, delay := range map[string]time.Duration{"delayed": time.Hour, "synchronous": -1} {
		t.Run(name, func(t *testing.T) {
			rec := &recorder[string]{}
			debouncer := NewDebouncer(delay, rec.record)

			assert.True(t, debouncer.SetVersion(3, "abc"))
			assert.False(t, debouncer.SetVersion(2, "ab"))
			assert.False(t, debouncer.SetVersion(3, "abc"))
			debouncer.Flush()
			assert.Equal(t, []string{"abc"}, rec.get())

			// plain Set continues after the latest version
			debouncer.Set("abcd")
			debouncer.Flush()
			assert.Equal(t, []string{"abc", "abcd"}, rec.get())
		})
	}
}
