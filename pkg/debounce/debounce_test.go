package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTriggerCoalesces(t *testing.T) {
	d := New(30 * time.Millisecond)
	var calls, last atomic.Int32
	for i := int32(1); i <= 5; i++ {
		v := i
		d.Trigger(func() {
			calls.Add(1)
			last.Store(v)
		})
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestStopCancelsPending(t *testing.T) {
	d := New(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })

	assert.True(t, d.Stop())
	assert.False(t, d.Stop())
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
