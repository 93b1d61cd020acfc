package checkout

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerRunsOnceAfterQuietPeriod(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, int32(0), calls.Load())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerCancelAndStop(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(10*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	d.Stop()
	d.Trigger()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
