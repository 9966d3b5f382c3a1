// Package session composes search, querying, preferences and polling for a
// single interactive surface.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/i474232898/weatherscope/internal/locations"
	"github.com/i474232898/weatherscope/internal/polling"
	"github.com/i474232898/weatherscope/internal/preferences"
	"github.com/i474232898/weatherscope/internal/weather"
)

var (
	// ErrClosed is returned by operations on a torn-down session.
	ErrClosed = errors.New("session closed")
	// ErrSuperseded is returned by Submit when a newer query started before
	// this one settled; its result was discarded.
	ErrSuperseded = errors.New("query superseded by a newer submission")
	// ErrUnknownSuggestion is returned by Select for ids not in the index.
	ErrUnknownSuggestion = errors.New("unknown suggestion")
	// ErrUnknownRegion is returned by Blur for unrecognized regions.
	ErrUnknownRegion = errors.New("unknown region")
)

// Region names an interactive area whose loss of focus closes its panel.
type Region string

const (
	RegionSearch      Region = "search"
	RegionPreferences Region = "preferences"
)

// Querier runs a single weather query.
type Querier interface {
	Query(ctx context.Context, rawCityName string) (weather.Snapshot, error)
}

// PreferenceStore persists preferences.
type PreferenceStore interface {
	Load(ctx context.Context) preferences.Preferences
	SetUnits(ctx context.Context, units preferences.Units) (preferences.Preferences, error)
	SetRefreshInterval(ctx context.Context, minutes int) (preferences.Preferences, error)
}

// StatusScheduler drives the connection status indicator.
type StatusScheduler interface {
	Start(minutes int) error
	Reconfigure(minutes int) error
	Stop()
	State() polling.ConnectionState
	DismissAlert() polling.ConnectionState
}

// Recorder receives session level events for instrumentation.
type Recorder interface {
	StaleResult()
}

// SearchSession is the state of the search box and its suggestion list.
type SearchSession struct {
	QueryText   string                 `json:"queryText"`
	Suggestions []locations.Suggestion `json:"suggestions"`
	IsOpen      bool                   `json:"isOpen"`
}

// QueryView is the outcome of the most recent submitted query.
type QueryView struct {
	Loading      bool              `json:"loading"`
	Snapshot     *weather.Snapshot `json:"snapshot,omitempty"`
	ErrorKind    weather.ErrorKind `json:"errorKind,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	// DidYouMean is a known location resembling a query that was not found.
	DidYouMean *locations.Suggestion `json:"didYouMean,omitempty"`
}

// View is a read-only copy of the whole session state.
type View struct {
	ID              string                  `json:"id"`
	Search          SearchSession           `json:"search"`
	PreferencesOpen bool                    `json:"preferencesOpen"`
	Preferences     preferences.Preferences `json:"preferences"`
	Query           QueryView               `json:"query"`
	Connection      polling.ConnectionState `json:"connection"`
}

// Config wires a Controller's collaborators.
type Config struct {
	// Index supplies search suggestions.
	Index *locations.Index
	// Favorites is the monitored-locations list.
	Favorites   *locations.Index
	Querier     Querier
	Preferences PreferenceStore
	Scheduler   StatusScheduler
	Recorder    Recorder
	Logger      zerolog.Logger
}

// Controller owns one session's state. All methods are safe for concurrent use.
type Controller struct {
	id        string
	index     *locations.Index
	favorites *locations.Index
	querier   Querier
	prefs     PreferenceStore
	sched     StatusScheduler
	recorder  Recorder
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	search      SearchSession
	prefsOpen   bool
	preferences preferences.Preferences
	query       QueryView
	gen         uint64
	closed      bool
}

// New loads preferences and starts polling at the stored refresh interval.
func New(ctx context.Context, cfg Config) (*Controller, error) {
	if cfg.Index == nil {
		cfg.Index = locations.NewIndex(nil)
	}
	if cfg.Favorites == nil {
		cfg.Favorites = locations.NewIndex(nil)
	}

	id := uuid.NewString()
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &Controller{
		id:        id,
		index:     cfg.Index,
		favorites: cfg.Favorites,
		querier:   cfg.Querier,
		prefs:     cfg.Preferences,
		sched:     cfg.Scheduler,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger.With().Str("session", id).Logger(),
		ctx:       sctx,
		cancel:    cancel,
		search:    SearchSession{Suggestions: []locations.Suggestion{}},
	}

	c.preferences = c.prefs.Load(ctx)
	if err := c.sched.Start(c.preferences.RefreshIntervalMinutes); err != nil {
		cancel()
		return nil, fmt.Errorf("start polling: %w", err)
	}

	c.logger.Info().
		Str("units", string(c.preferences.Units)).
		Int("refresh_minutes", c.preferences.RefreshIntervalMinutes).
		Msg("session started")
	return c, nil
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// Input records a keystroke in the search box and refreshes suggestions.
func (c *Controller) Input(text string) SearchSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.search.QueryText = text
	c.search.Suggestions = c.index.Filter(text)
	c.search.IsOpen = true
	return c.searchLocked()
}

// Focus opens the search panel.
func (c *Controller) Focus() SearchSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.search.IsOpen = true
	return c.searchLocked()
}

// Select commits the suggestion with id into the search box and closes the panel.
func (c *Controller) Select(id int) (SearchSession, error) {
	item, ok := c.index.Get(id)
	if !ok {
		return c.Search(), fmt.Errorf("%w: %d", ErrUnknownSuggestion, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.search = SearchSession{QueryText: item.DisplayName, Suggestions: []locations.Suggestion{}}
	return c.searchLocked(), nil
}

// Blur handles focus leaving region: its panel closes, and leaving search
// also clears the suggestions.
func (c *Controller) Blur(region Region) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch region {
	case RegionSearch:
		c.search.IsOpen = false
		c.search.Suggestions = []locations.Suggestion{}
	case RegionPreferences:
		c.prefsOpen = false
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	return nil
}

// TogglePreferences flips the preferences panel and returns its new visibility.
func (c *Controller) TogglePreferences() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prefsOpen = !c.prefsOpen
	return c.prefsOpen
}

// Search returns a copy of the search session.
func (c *Controller) Search() SearchSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchLocked()
}

// Submit runs a weather query for raw. Blank input is rejected with
// weather.ErrEmptyQuery before any I/O. The previous result and error are
// cleared when the query starts. Only the most recently started query may
// update the session; an older query that settles later gets ErrSuperseded.
// Query failures are reported in the returned view, not as an error.
func (c *Controller) Submit(ctx context.Context, raw string) (QueryView, error) {
	city := strings.TrimSpace(raw)
	if city == "" {
		return c.Query(), weather.ErrEmptyQuery
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return QueryView{}, ErrClosed
	}
	c.gen++
	gen := c.gen
	c.query = QueryView{Loading: true}
	qctx, cancel := context.WithCancel(c.ctx)
	c.mu.Unlock()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	defer cancel()

	snap, err := c.querier.Query(qctx, city)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.logger.Debug().Str("city", city).Msg("discarding query result after close")
		return QueryView{}, ErrClosed
	}
	if gen != c.gen {
		if c.recorder != nil {
			c.recorder.StaleResult()
		}
		c.logger.Debug().Str("city", city).Uint64("generation", gen).Msg("discarding stale query result")
		return c.queryLocked(), ErrSuperseded
	}

	if err != nil {
		kind := weather.KindOf(err)
		view := QueryView{ErrorKind: kind, ErrorMessage: MessageFor(kind)}
		if kind == weather.KindNotFound {
			if hint, ok := c.index.Closest(city); ok && !strings.EqualFold(hint.City(), city) {
				view.DidYouMean = &hint
			}
		}
		c.query = view
		return c.queryLocked(), nil
	}

	c.query = QueryView{Snapshot: &snap}
	return c.queryLocked(), nil
}

// Query returns a copy of the current query outcome.
func (c *Controller) Query() QueryView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked()
}

// Preferences returns the session's current preferences.
func (c *Controller) Preferences() preferences.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preferences
}

// SetUnits persists a new unit system.
func (c *Controller) SetUnits(ctx context.Context, units preferences.Units) (preferences.Preferences, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.preferences, ErrClosed
	}
	prefs, err := c.prefs.SetUnits(ctx, units)
	if err != nil {
		c.logger.Error().Err(err).Str("units", string(units)).Msg("rejected units preference")
		return c.preferences, err
	}
	c.preferences = prefs
	return prefs, nil
}

// SetRefreshInterval persists a new refresh cadence and restarts polling with it.
func (c *Controller) SetRefreshInterval(ctx context.Context, minutes int) (preferences.Preferences, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.preferences, ErrClosed
	}
	prefs, err := c.prefs.SetRefreshInterval(ctx, minutes)
	if err != nil {
		c.logger.Error().Err(err).Int("minutes", minutes).Msg("rejected refresh interval preference")
		return c.preferences, err
	}
	c.preferences = prefs
	if err := c.sched.Reconfigure(prefs.RefreshIntervalMinutes); err != nil {
		return prefs, fmt.Errorf("reconfigure polling: %w", err)
	}
	return prefs, nil
}

// Status returns the connection state.
func (c *Controller) Status() polling.ConnectionState {
	return c.sched.State()
}

// DismissAlert clears the active alert until the next tick.
func (c *Controller) DismissAlert() polling.ConnectionState {
	return c.sched.DismissAlert()
}

// Locations returns the monitored locations.
func (c *Controller) Locations() []locations.Suggestion {
	return c.favorites.All()
}

// RemoveLocation drops a monitored location. Search suggestions are not
// affected.
func (c *Controller) RemoveLocation(id int) bool {
	return c.favorites.Remove(id)
}

// View returns a copy of the whole session state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return View{
		ID:              c.id,
		Search:          c.searchLocked(),
		PreferencesOpen: c.prefsOpen,
		Preferences:     c.preferences,
		Query:           c.queryLocked(),
		Connection:      c.sched.State(),
	}
}

// Close stops polling and discards any in-flight query. It is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.search = SearchSession{Suggestions: []locations.Suggestion{}}
	c.prefsOpen = false
	c.query = QueryView{}
	c.mu.Unlock()

	c.cancel()
	c.sched.Stop()
	c.logger.Info().Msg("session closed")
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) searchLocked() SearchSession {
	out := c.search
	out.Suggestions = append([]locations.Suggestion{}, c.search.Suggestions...)
	return out
}

func (c *Controller) queryLocked() QueryView {
	out := c.query
	if c.query.Snapshot != nil {
		snap := *c.query.Snapshot
		out.Snapshot = &snap
	}
	if c.query.DidYouMean != nil {
		hint := *c.query.DidYouMean
		out.DidYouMean = &hint
	}
	return out
}
