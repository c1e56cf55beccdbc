package dom_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiosync/internal/dom"
)

func TestManualClockFiresInDeadlineOrder(t *testing.T) {
	clock := dom.NewManualClock()

	var fired []string
	clock.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "c") })
	clock.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })
	clock.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "b") })

	clock.Advance(250 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, fired)

	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Zero(t, clock.Pending())
}

func TestManualClockCancelBeforeFire(t *testing.T) {
	clock := dom.NewManualClock()

	fired := false
	sub := clock.AfterFunc(100*time.Millisecond, func() { fired = true })
	sub.Close()

	clock.Advance(time.Second)
	assert.False(t, fired)
	assert.Zero(t, clock.Pending())
}

func TestManualClockEveryRepeats(t *testing.T) {
	clock := dom.NewManualClock()

	ticks := 0
	sub := clock.Every(time.Second, func() { ticks++ })

	clock.Advance(3500 * time.Millisecond)
	assert.Equal(t, 3, ticks)

	sub.Close()
	clock.Advance(5 * time.Second)
	assert.Equal(t, 3, ticks)
}

func TestManualClockCallbackSchedulesWithinWindow(t *testing.T) {
	clock := dom.NewManualClock()

	var fired []string
	clock.AfterFunc(100*time.Millisecond, func() {
		fired = append(fired, "first")
		clock.AfterFunc(50*time.Millisecond, func() { fired = append(fired, "chained") })
	})

	// The chained timer lands at 150ms, inside the advanced window, so one
	// Advance drains both.
	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"first", "chained"}, fired)
}

func TestWallClockAfterFunc(t *testing.T) {
	clock := dom.WallClock()

	done := make(chan struct{})
	clock.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestWallClockEveryStops(t *testing.T) {
	clock := dom.WallClock()

	var mu sync.Mutex
	ticks := 0
	sub := clock.Every(time.Millisecond, func() {
		mu.Lock()
		ticks++
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks >= 2
	}, time.Second, time.Millisecond)

	sub.Close()
	mu.Lock()
	stopped := ticks
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	// One tick may already be in flight when Close lands.
	assert.LessOrEqual(t, ticks, stopped+1)
}
