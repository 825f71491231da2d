package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/geo"
	"github.com/i474232898/weather-sync/internal/logging"
	"github.com/i474232898/weather-sync/internal/store"
	"github.com/i474232898/weather-sync/internal/weather"
)

// Fetcher produces snapshots; *weather.ForecastClient implements it.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, coords weather.Coordinates, unit weather.Unit, knownName string) (weather.WeatherSnapshot, error)
}

// LocationResolver acquires device or fallback locations; *geo.Resolver implements it.
type LocationResolver interface {
	AcquireInitialLocation(ctx context.Context, fallback weather.Coordinates, fallbackName string, timeout time.Duration) geo.Resolution
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// Options tunes the scheduler.
type Options struct {
	Unit            weather.Unit
	RefreshInterval time.Duration
	GeoTimeout      time.Duration
	FetchTimeout    time.Duration
}

// DefaultOptions mirrors the production defaults.
func DefaultOptions() Options {
	return Options{
		Unit:            weather.Celsius,
		RefreshInterval: 10 * time.Minute,
		GeoTimeout:      4 * time.Second,
		FetchTimeout:    30 * time.Second,
	}
}

// Scheduler owns the SyncState and decides when to fetch: at start, on unit
// change, on search or locate, on demand, and on a periodic interval.
// Concurrent fetches are not deduplicated; the newest completion wins.
type Scheduler struct {
	cron *gocron.Scheduler

	jobMu  sync.Mutex
	job    *gocron.Job
	closed bool

	fetcher  Fetcher
	searcher weather.SearchResolver
	geo      LocationResolver
	state    *store.StateStore
	opts     Options
	log      *logrus.Entry
}

// New creates a Scheduler. searcher may be nil when search is not offered.
func New(fetcher Fetcher, searcher weather.SearchResolver, geoResolver LocationResolver, opts Options) *Scheduler {
	def := DefaultOptions()
	if opts.Unit == "" {
		opts.Unit = def.Unit
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = def.RefreshInterval
	}
	if opts.GeoTimeout <= 0 {
		opts.GeoTimeout = def.GeoTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = def.FetchTimeout
	}

	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		fetcher:  fetcher,
		searcher: searcher,
		geo:      geoResolver,
		state:    store.NewStateStore(opts.Unit),
		opts:     opts,
		log:      logging.NewLogger("scheduler"),
	}
}

// State returns a copy of the current SyncState.
func (s *Scheduler) State() store.SyncState {
	return s.state.Snapshot()
}

// Start acquires the initial location once, installs it and performs the
// first fetch. The returned error is the first fetch's error, which is also
// recorded in the state. A location chosen while the initial location is
// still resolving (search, locate, SetLocation) wins and Start installs nothing.
func (s *Scheduler) Start(ctx context.Context, fallback weather.Coordinates, fallbackName string) error {
	gen := s.state.LocationGeneration()
	res := s.geo.AcquireInitialLocation(ctx, fallback, fallbackName, s.opts.GeoTimeout)
	log := s.log.WithFields(logrus.Fields{
		"source": res.Source,
		"lat":    res.Coordinates.Latitude,
		"lon":    res.Coordinates.Longitude,
	})

	ticket, target, ok := s.state.RelocateIfUnmoved(gen, res.Coordinates, res.Name, uuid.NewString())
	if !ok {
		log.Info("location changed while resolving; initial location discarded")
		return nil
	}
	log.Info("initial location resolved")

	s.armRefresh()
	return s.fetch(ctx, ticket, target)
}

// SetUnit changes the unit. When coordinates are known and the unit actually
// changed, it refetches once, keeping the current place name.
func (s *Scheduler) SetUnit(ctx context.Context, u weather.Unit) error {
	prev := s.state.SetUnit(u)
	if prev == u {
		return nil
	}

	ticket, target, ok := s.state.BeginRefetch(uuid.NewString())
	if !ok {
		return nil
	}
	return s.fetch(ctx, ticket, target)
}

// RefreshNow fetches for the current coordinates and place name. It is a
// no-op when coordinates are unset.
func (s *Scheduler) RefreshNow(ctx context.Context) error {
	ticket, target, ok := s.state.BeginRefetch(uuid.NewString())
	if !ok {
		s.disarmRefresh()
		return nil
	}
	return s.fetch(ctx, ticket, target)
}

// Search resolves text to a place and fetches its weather. Blank text is
// rejected without touching state. A failed lookup records the error and
// leaves coordinates and snapshot as they were.
func (s *Scheduler) Search(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.InvalidInput("empty search query")
	}
	if s.searcher == nil {
		err := apperrors.New(apperrors.ErrCodeNoCapability, "search not available")
		s.state.SetError(err)
		return err
	}

	place, err := s.searcher.ResolveQuery(ctx, text)
	if err != nil {
		s.log.WithError(err).WithField("query", text).Warn("search failed")
		s.state.SetError(err)
		return err
	}

	return s.install(ctx, place.Coordinates, place.Name)
}

// Locate asks the device for its position (no fallback) and fetches its
// weather, resolving the place name downstream.
func (s *Scheduler) Locate(ctx context.Context) error {
	coords, err := s.geo.Locate(ctx)
	if err != nil {
		s.log.WithError(err).Warn("locate failed")
		s.state.SetError(err)
		return err
	}
	return s.install(ctx, coords, "")
}

// SetLocation installs externally supplied coordinates, for example a
// browser-side position, and fetches. An empty name is reverse-geocoded.
func (s *Scheduler) SetLocation(ctx context.Context, coords weather.Coordinates, name string) error {
	return s.install(ctx, coords, name)
}

// ClearLocation unsets the coordinates and tears down the periodic refresh.
func (s *Scheduler) ClearLocation() {
	s.state.ClearCoordinates()
	s.disarmRefresh()
}

// Shutdown stops the periodic refresh. In-flight fetches still complete.
func (s *Scheduler) Shutdown() {
	s.jobMu.Lock()
	s.closed = true
	if s.job != nil {
		s.cron.RemoveByReference(s.job)
		s.job = nil
	}
	s.jobMu.Unlock()

	// Stop waits for a running tick, which may itself take jobMu.
	s.cron.Stop()
}

// install replaces the location and its known name, then fetches for it.
func (s *Scheduler) install(ctx context.Context, coords weather.Coordinates, name string) error {
	ticket, target := s.state.Relocate(coords, name, uuid.NewString())
	s.armRefresh()
	return s.fetch(ctx, ticket, target)
}

// fetch runs a begun fetch cycle and installs its outcome if it is still the newest.
func (s *Scheduler) fetch(ctx context.Context, ticket store.Ticket, target store.FetchTarget) error {
	log := s.log.WithFields(logrus.Fields{
		"cycle": ticket.CycleID,
		"seq":   ticket.Seq,
		"lat":   target.Coordinates.Latitude,
		"lon":   target.Coordinates.Longitude,
		"unit":  target.Unit,
	})
	log.Debug("fetch cycle started")

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	snapshot, err := s.fetcher.FetchSnapshot(fetchCtx, target.Coordinates, target.Unit, target.PlaceName)

	var applied bool
	if err != nil {
		applied = s.state.Complete(ticket, nil, err)
		log.WithError(err).Warn("fetch cycle failed")
	} else {
		applied = s.state.Complete(ticket, &snapshot, nil)
		log.WithField("place", snapshot.PlaceName).Info("fetch cycle completed")
	}
	if !applied {
		log.Debug("superseded by a newer fetch; outcome discarded")
	}

	return err
}

func (s *Scheduler) armRefresh() {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.closed || s.job != nil {
		return
	}

	job, err := s.cron.Every(s.opts.RefreshInterval).WaitForSchedule().Do(s.tick)
	if err != nil {
		s.log.WithError(err).Error("failed to schedule periodic refresh")
		return
	}
	s.job = job

	if !s.cron.IsRunning() {
		s.cron.StartAsync()
	}
	s.log.WithField("interval", s.opts.RefreshInterval).Debug("periodic refresh armed")
}

func (s *Scheduler) disarmRefresh() {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.job == nil {
		return
	}
	s.cron.RemoveByReference(s.job)
	s.job = nil
	s.log.Debug("periodic refresh removed")
}

func (s *Scheduler) tick() {
	s.log.Debug("periodic refresh")
	if err := s.RefreshNow(context.Background()); err != nil {
		s.log.WithError(err).Warn("periodic refresh failed")
	}
}
