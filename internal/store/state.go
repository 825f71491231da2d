package store

import (
	"sync"
	"time"

	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/weather"
)

// ErrorInfo is the user-visible form of a failed fetch cycle or search.
type ErrorInfo struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

// NewErrorInfo converts err into an ErrorInfo.
func NewErrorInfo(err error) *ErrorInfo {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	return &ErrorInfo{Code: code, Message: apperrors.MessageOf(err)}
}

// SyncState is the engine's single mutable state. Values returned by
// StateStore.Snapshot are copies. PlaceName is the known name for
// Coordinates; empty means it is resolved on the next fetch.
type SyncState struct {
	Coordinates *weather.Coordinates     `json:"coordinates"`
	PlaceName   string                   `json:"placeName,omitempty"`
	Snapshot    *weather.WeatherSnapshot `json:"snapshot"`
	Unit        weather.Unit             `json:"unit"`
	Loading     bool                     `json:"loading"`
	Error       *ErrorInfo               `json:"error"`
	LastUpdated *time.Time               `json:"lastUpdated"`
	CycleID     string                   `json:"cycleId,omitempty"`
}

// Ticket identifies a started fetch cycle. Gen is the location generation
// the cycle was started for.
type Ticket struct {
	Seq     uint64
	Gen     uint64
	CycleID string
}

// FetchTarget is the input of one fetch cycle, captured when the cycle begins.
type FetchTarget struct {
	Coordinates weather.Coordinates
	Unit        weather.Unit
	PlaceName   string
}

// StateStore guards the SyncState. Fetch cycles are sequence numbered; a
// completion is applied only when it is newer than the last applied one.
// Every location change bumps the location generation.
type StateStore struct {
	mu sync.RWMutex

	state SyncState

	started uint64 // last sequence handed out
	applied uint64 // last sequence whose outcome was installed
	errSeq  uint64 // sequence current when the displayed error was recorded
	gen     uint64 // location generation

	now func() time.Time
}

// NewStateStore creates a store with the given initial unit.
func NewStateStore(unit weather.Unit) *StateStore {
	return &StateStore{
		state: SyncState{Unit: unit},
		now:   time.Now,
	}
}

// Snapshot returns a copy of the current state.
func (s *StateStore) Snapshot() SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *StateStore) copyLocked() SyncState {
	out := s.state
	if s.state.Coordinates != nil {
		c := *s.state.Coordinates
		out.Coordinates = &c
	}
	if s.state.Snapshot != nil {
		snap := *s.state.Snapshot
		out.Snapshot = &snap
	}
	if s.state.Error != nil {
		e := *s.state.Error
		out.Error = &e
	}
	if s.state.LastUpdated != nil {
		ts := *s.state.LastUpdated
		out.LastUpdated = &ts
	}
	return out
}

// LocationGeneration returns the current location generation.
func (s *StateStore) LocationGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Relocate installs coordinates and their known name and begins a fetch
// cycle for them in one update.
func (s *StateStore) Relocate(c weather.Coordinates, name, cycleID string) (Ticket, FetchTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relocateLocked(c, name, cycleID)
}

// RelocateIfUnmoved is Relocate guarded by the location generation: it
// reports false and changes nothing when the location changed since gen.
func (s *StateStore) RelocateIfUnmoved(gen uint64, c weather.Coordinates, name, cycleID string) (Ticket, FetchTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return Ticket{}, FetchTarget{}, false
	}
	t, target := s.relocateLocked(c, name, cycleID)
	return t, target, true
}

func (s *StateStore) relocateLocked(c weather.Coordinates, name, cycleID string) (Ticket, FetchTarget) {
	s.gen++
	s.state.Coordinates = &c
	s.state.PlaceName = name
	return s.beginLocked(cycleID), FetchTarget{Coordinates: c, Unit: s.state.Unit, PlaceName: name}
}

// BeginRefetch begins a fetch cycle for the current coordinates, unit and
// place name. It reports false, starting nothing, when coordinates are unset.
func (s *StateStore) BeginRefetch(cycleID string) (Ticket, FetchTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Coordinates == nil {
		return Ticket{}, FetchTarget{}, false
	}
	target := FetchTarget{
		Coordinates: *s.state.Coordinates,
		Unit:        s.state.Unit,
		PlaceName:   s.state.PlaceName,
	}
	return s.beginLocked(cycleID), target, true
}

// ClearCoordinates unsets the coordinates and their place name.
func (s *StateStore) ClearCoordinates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state.Coordinates = nil
	s.state.PlaceName = ""
}

// SetUnit replaces the unit and returns the previous one.
func (s *StateStore) SetUnit(u weather.Unit) weather.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Unit
	s.state.Unit = u
	return prev
}

// SetError records err without touching coordinates or snapshot. Cycles
// already in flight do not clear it when they succeed.
func (s *StateStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = NewErrorInfo(err)
	s.errSeq = s.started
}

// Begin starts a fetch cycle: loading is set, the error cleared and
// lastUpdated stamped with the start time.
func (s *StateStore) Begin(cycleID string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(cycleID)
}

func (s *StateStore) beginLocked(cycleID string) Ticket {
	s.started++
	ts := s.now()
	s.state.Loading = true
	s.state.Error = nil
	s.state.LastUpdated = &ts
	s.state.CycleID = cycleID

	return Ticket{Seq: s.started, Gen: s.gen, CycleID: cycleID}
}

// Complete installs the outcome of a cycle as one update. Exactly one of
// snapshot or err is used; an error keeps the previous snapshot. It reports
// false when a newer cycle already completed and the outcome was discarded.
func (s *StateStore) Complete(t Ticket, snapshot *weather.WeatherSnapshot, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Seq <= s.applied {
		return false
	}
	s.applied = t.Seq

	if err != nil {
		s.state.Error = NewErrorInfo(err)
		s.errSeq = t.Seq
	} else if snapshot != nil {
		snap := *snapshot
		s.state.Snapshot = &snap
		if t.Seq > s.errSeq {
			s.state.Error = nil
		}
		// Remember the resolved name while the location is unchanged.
		if t.Gen == s.gen && s.state.Coordinates != nil {
			s.state.PlaceName = snap.PlaceName
		}
	}
	s.state.Loading = s.applied < s.started
	return true
}
