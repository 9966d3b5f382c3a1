// Package polling runs the timer that refreshes the connection status
// indicator. Each tick stamps the update time and draws a simulated status
// and alert flag from an injected random source.
package polling

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// DefaultReconnectProbability is the chance a tick reports Reconnecting.
	DefaultReconnectProbability = 0.1
	// DefaultAlertProbability is the chance a tick raises an alert.
	DefaultAlertProbability = 0.2
)

// ErrInvalidInterval is returned for non-positive refresh intervals.
var ErrInvalidInterval = errors.New("refresh interval must be positive")

// Probability returns a pointer to p for the Config probability fields.
func Probability(p float64) *float64 {
	return &p
}

// Rand is the random source used to simulate status changes.
type Rand interface {
	Float64() float64
}

// Config configures a Scheduler. Zero values select real-time defaults.
type Config struct {
	Clock clockwork.Clock
	Rand  Rand
	// ReconnectProbability and AlertProbability default to
	// DefaultReconnectProbability and DefaultAlertProbability when nil.
	ReconnectProbability *float64
	AlertProbability     *float64
	// OnTick, when set, receives the state produced by every applied tick.
	// It runs on the scheduler goroutine.
	OnTick func(ConnectionState)
	Logger zerolog.Logger
}

// Scheduler owns the ConnectionState and the ticker that mutates it.
type Scheduler struct {
	clock     clockwork.Clock
	rand      Rand
	pReconn   float64
	pAlert    float64
	onTick    func(ConnectionState)
	logger    zerolog.Logger
	tickCount atomic.Uint64

	mu       sync.Mutex
	state    ConnectionState
	ticker   clockwork.Ticker
	done     chan struct{}
	gen      uint64
	interval time.Duration
}

// New creates a stopped Scheduler in the Connected state.
func New(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	pReconn, pAlert := DefaultReconnectProbability, DefaultAlertProbability
	if cfg.ReconnectProbability != nil {
		pReconn = *cfg.ReconnectProbability
	}
	if cfg.AlertProbability != nil {
		pAlert = *cfg.AlertProbability
	}

	return &Scheduler{
		clock:   cfg.Clock,
		rand:    cfg.Rand,
		pReconn: pReconn,
		pAlert:  pAlert,
		onTick:  cfg.OnTick,
		logger:  cfg.Logger,
		state: ConnectionState{
			Status:       Connected,
			LastUpdateAt: cfg.Clock.Now(),
		},
	}
}

// Start installs a ticker firing every minutes. Any running ticker is
// cancelled first, so Start doubles as reconfiguration.
func (s *Scheduler) Start(minutes int) error {
	if minutes <= 0 {
		return ErrInvalidInterval
	}
	interval := time.Duration(minutes) * time.Minute

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.gen++
	s.interval = interval
	s.ticker = s.clock.NewTicker(interval)
	s.done = make(chan struct{})
	go s.loop(s.gen, s.ticker, s.done)

	s.logger.Debug().Dur("interval", interval).Uint64("generation", s.gen).Msg("polling ticker installed")
	return nil
}

// Reconfigure restarts the ticker with a new period.
func (s *Scheduler) Reconfigure(minutes int) error {
	return s.Start(minutes)
}

// Stop cancels the ticker. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.logger.Debug().Msg("polling ticker stopped")
	}
	s.cancelLocked()
	// Invalidate ticks already buffered by the cancelled ticker.
	s.gen++
	s.interval = 0
}

// Running reports whether a ticker is installed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker != nil
}

// Interval returns the period of the installed ticker, or 0 when stopped.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// State returns a copy of the current connection state.
func (s *Scheduler) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TickCount returns the number of ticks applied so far.
func (s *Scheduler) TickCount() uint64 {
	return s.tickCount.Load()
}

// DismissAlert clears the alert flag. A later tick may raise it again.
func (s *Scheduler) DismissAlert() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.HasActiveAlert = false
	return s.state
}

func (s *Scheduler) cancelLocked() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}

func (s *Scheduler) loop(gen uint64, ticker clockwork.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			state, ok := s.tick(gen)
			if !ok {
				return
			}
			if s.onTick != nil {
				s.onTick(state)
			}
		}
	}
}

// tick applies one timer firing. Ticks from a superseded generation are
// dropped.
func (s *Scheduler) tick(gen uint64) (ConnectionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return ConnectionState{}, false
	}

	s.state.LastUpdateAt = s.clock.Now()
	if s.rand.Float64() < s.pReconn {
		s.state.Status = Reconnecting
	} else {
		s.state.Status = Connected
	}
	s.state.HasActiveAlert = s.rand.Float64() < s.pAlert
	s.tickCount.Inc()

	s.logger.Debug().
		Str("status", string(s.state.Status)).
		Bool("alert", s.state.HasActiveAlert).
		Msg("polling tick")
	return s.state, true
}
