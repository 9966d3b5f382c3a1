package polling

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws, then returns 0.99.
type scriptedRand struct {
	mu    sync.Mutex
	draws []float64
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.draws) == 0 {
		return 0.99
	}
	v := r.draws[0]
	r.draws = r.draws[1:]
	return v
}

type harness struct {
	clock *clockwork.FakeClock
	sched *Scheduler
	ticks chan ConnectionState
}

func newHarness(t *testing.T, draws ...float64) *harness {
	t.Helper()
	h := &harness{
		clock: clockwork.NewFakeClock(),
		ticks: make(chan ConnectionState, 16),
	}
	h.sched = New(Config{
		Clock:  h.clock,
		Rand:   &scriptedRand{draws: draws},
		OnTick: func(s ConnectionState) { h.ticks <- s },
	})
	t.Cleanup(h.sched.Stop)
	return h
}

func (h *harness) waitTick(t *testing.T) ConnectionState {
	t.Helper()
	select {
	case s := <-h.ticks:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for polling tick")
		return ConnectionState{}
	}
}

func (h *harness) expectNoTick(t *testing.T) {
	t.Helper()
	select {
	case s := <-h.ticks:
		t.Fatalf("unexpected polling tick: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScheduler_InitialState(t *testing.T) {
	h := newHarness(t)

	state := h.sched.State()
	assert.Equal(t, Connected, state.Status)
	assert.False(t, state.HasActiveAlert)
	assert.Equal(t, h.clock.Now(), state.LastUpdateAt)
	assert.False(t, h.sched.Running())
}

func TestScheduler_TickDrawsStatusAndAlert(t *testing.T) {
	h := newHarness(t,
		0.05, 0.5, // reconnecting, no alert
		0.5, 0.1, // connected, alert
	)
	require.NoError(t, h.sched.Start(5))
	require.True(t, h.sched.Running())
	assert.Equal(t, 5*time.Minute, h.sched.Interval())

	h.clock.Advance(5 * time.Minute)
	state := h.waitTick(t)
	assert.Equal(t, Reconnecting, state.Status)
	assert.False(t, state.HasActiveAlert)
	assert.Equal(t, h.clock.Now(), state.LastUpdateAt)

	h.clock.Advance(5 * time.Minute)
	state = h.waitTick(t)
	assert.Equal(t, Connected, state.Status)
	assert.True(t, state.HasActiveAlert)
	assert.Equal(t, state, h.sched.State())
	assert.Equal(t, uint64(2), h.sched.TickCount())
}

func TestScheduler_DismissedAlertCanBeRaisedAgain(t *testing.T) {
	h := newHarness(t,
		0.5, 0.1,
		0.5, 0.1,
	)
	require.NoError(t, h.sched.Start(5))

	h.clock.Advance(5 * time.Minute)
	require.True(t, h.waitTick(t).HasActiveAlert)

	assert.False(t, h.sched.DismissAlert().HasActiveAlert)
	assert.False(t, h.sched.State().HasActiveAlert)

	h.clock.Advance(5 * time.Minute)
	assert.True(t, h.waitTick(t).HasActiveAlert)
}

func TestScheduler_ReconfigureReplacesTicker(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sched.Start(10))

	h.clock.Advance(10 * time.Minute)
	h.waitTick(t)

	h.clock.Advance(5 * time.Minute)
	h.expectNoTick(t)

	require.NoError(t, h.sched.Reconfigure(5))
	assert.Equal(t, 5*time.Minute, h.sched.Interval())

	h.clock.Advance(5 * time.Minute)
	h.waitTick(t)
	h.expectNoTick(t)

	h.clock.Advance(5 * time.Minute)
	h.waitTick(t)
	h.expectNoTick(t)

	assert.Equal(t, uint64(3), h.sched.TickCount())
}

func TestScheduler_Stop(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sched.Start(5))

	h.sched.Stop()
	h.sched.Stop()
	assert.False(t, h.sched.Running())
	assert.Zero(t, h.sched.Interval())

	h.clock.Advance(time.Hour)
	h.expectNoTick(t)
	assert.Zero(t, h.sched.TickCount())
}

func TestScheduler_NeverReachesDisconnected(t *testing.T) {
	h := newHarness(t, 0.0, 0.0, 0.0999, 0.0, 0.1, 0.2)
	require.NoError(t, h.sched.Start(5))

	for i := 0; i < 3; i++ {
		h.clock.Advance(5 * time.Minute)
		assert.NotEqual(t, Disconnected, h.waitTick(t).Status)
	}
}

func TestScheduler_ZeroProbabilitiesNeverChangeStatus(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ticks := make(chan ConnectionState, 4)
	sched := New(Config{
		Clock:                clock,
		Rand:                 &scriptedRand{draws: []float64{0.0, 0.0, 0.0, 0.0}},
		ReconnectProbability: Probability(0),
		AlertProbability:     Probability(0),
		OnTick:               func(s ConnectionState) { ticks <- s },
	})
	t.Cleanup(sched.Stop)
	require.NoError(t, sched.Start(5))

	for i := 0; i < 2; i++ {
		clock.Advance(5 * time.Minute)
		select {
		case s := <-ticks:
			assert.Equal(t, Connected, s.Status)
			assert.False(t, s.HasActiveAlert)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for polling tick")
		}
	}
}

func TestScheduler_CertainProbabilities(t *testing.T) {
	h := newHarness(t)
	h.sched.pReconn, h.sched.pAlert = 1, 1
	require.NoError(t, h.sched.Start(5))

	h.clock.Advance(5 * time.Minute)
	state := h.waitTick(t)
	assert.Equal(t, Reconnecting, state.Status)
	assert.True(t, state.HasActiveAlert)
}

func TestScheduler_RejectsInvalidInterval(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.sched.Start(0), ErrInvalidInterval)
	assert.ErrorIs(t, h.sched.Reconfigure(-5), ErrInvalidInterval)
	assert.False(t, h.sched.Running())
}

func TestConnectionStatus_Label(t *testing.T) {
	assert.Equal(t, "Live", Connected.Label())
	assert.Equal(t, "Updating...", Reconnecting.Label())
	assert.Equal(t, "Offline", Disconnected.Label())
}

func TestFormatLastUpdate(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "Just now", FormatLastUpdate(now, now))
	assert.Equal(t, "Just now", FormatLastUpdate(now, now.Add(-59*time.Second)))
	assert.Equal(t, "5m ago", FormatLastUpdate(now, now.Add(-5*time.Minute)))
	assert.Equal(t, "59m ago", FormatLastUpdate(now, now.Add(-59*time.Minute)))
	assert.Equal(t, "12:15", FormatLastUpdate(now, now.Add(-135*time.Minute)))
}
