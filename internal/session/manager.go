// Package session owns the per-floor editing sessions.  Each floor has
// at most one live Lifecycle; a mutex per session serializes every
// request against it, which is what makes the editor's single-threaded
// model hold over concurrent HTTP traffic.  The manager also runs the
// autosave timers: a short debounce after the last edit plus a periodic
// backstop while a draft is open.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-floor-plan/internal/editor"
	"github.com/iliyamo/restaurant-floor-plan/internal/repository"
)

// Config carries the session tunables.
type Config struct {
	AutosaveDebounce time.Duration // quiet period after an edit before saving
	AutosaveInterval time.Duration // unconditional save cadence while drafting
	IdleTimeout      time.Duration // published sessions idle this long are evicted
}

func (c *Config) fill() {
	if c.AutosaveDebounce <= 0 {
		c.AutosaveDebounce = 3 * time.Second
	}
	if c.AutosaveInterval <= 0 {
		c.AutosaveInterval = time.Minute
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Minute
	}
}

// Manager hands out sessions keyed by floor id, loading the floor and
// its latest published version on first access.
type Manager struct {
	mu       sync.Mutex
	sessions map[uint64]*Session

	floors   *repository.FloorRepo
	versions *repository.VersionRepo
	gw       editor.Gateways
	cfg      Config
}

// NewManager wires the repositories and gateways.  The draft store and
// notifier may be nil; the lifecycle degrades those to no-ops.
func NewManager(floors *repository.FloorRepo, versions *repository.VersionRepo,
	approvals *repository.ApprovalRepo, activity *repository.ActivityRepo,
	drafts *repository.DraftStore, notify editor.Notifier, cfg Config) *Manager {
	cfg.fill()
	gw := editor.Gateways{
		Versions: versionGateway{versions},
		Notify:   notify,
	}
	if approvals != nil {
		gw.Approvals = approvalGateway{approvals}
	}
	if activity != nil {
		gw.Activity = activityGateway{activity}
	}
	if drafts != nil {
		gw.Drafts = drafts
	}
	m := &Manager{
		sessions: map[uint64]*Session{},
		floors:   floors,
		versions: versions,
		gw:       gw,
		cfg:      cfg,
	}
	go m.janitor()
	return m
}

// Acquire returns the floor's session, creating it on first use.
func (m *Manager) Acquire(ctx context.Context, floorID uint64) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[floorID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Load outside the manager lock; slow floors must not stall others.
	floor, err := m.floors.GetByID(ctx, floorID)
	if err != nil {
		return nil, err
	}
	latest, err := m.versions.GetLatest(ctx, floorID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[floorID]; ok {
		return s, nil
	}
	s := &Session{
		floorID:  floorID,
		lc:       editor.NewLifecycle(*floor, latest, m.gw),
		cfg:      m.cfg,
		lastUsed: time.Now(),
	}
	m.sessions[floorID] = s
	return s, nil
}

// Drop removes a floor's session, e.g. after the floor is deleted.
func (m *Manager) Drop(floorID uint64) {
	m.mu.Lock()
	s := m.sessions[floorID]
	delete(m.sessions, floorID)
	m.mu.Unlock()
	if s != nil {
		s.stopTimers()
	}
}

// janitor evicts idle sessions that hold no draft.  A session with an
// open draft is never evicted; its state is only in memory.
func (m *Manager) janitor() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for range tick.C {
		cutoff := time.Now().Add(-m.cfg.IdleTimeout)
		m.mu.Lock()
		for id, s := range m.sessions {
			if s.idleSince(cutoff) {
				delete(m.sessions, id)
				s.stopTimers()
			}
		}
		m.mu.Unlock()
	}
}

// Session serializes access to one floor's lifecycle.
type Session struct {
	mu       sync.Mutex
	floorID  uint64
	lc       *editor.Lifecycle
	cfg      Config
	lastUsed time.Time

	debounce *time.Timer
	interval *time.Timer
}

// FloorID returns the floor this session serves.
func (s *Session) FloorID() uint64 { return s.floorID }

// Do runs fn with exclusive access to the lifecycle.  Everything a
// handler does to the editor goes through here.
func (s *Session) Do(fn func(*editor.Lifecycle) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return fn(s.lc)
}

// MarkDirty schedules a draft autosave: the debounce timer restarts on
// every call and the interval backstop starts on the first.  Call after
// any mutating editor operation.
func (s *Session) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.cfg.AutosaveDebounce, s.autosave)
	if s.interval == nil {
		s.interval = time.AfterFunc(s.cfg.AutosaveInterval, s.intervalSave)
	}
}

// autosave persists the draft blob if a draft is still open.  Failures
// are dropped: the next edit reschedules and the in-memory draft is
// authoritative.
func (s *Session) autosave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

func (s *Session) intervalSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
	if s.lc.State() == editor.StatePublished {
		s.interval = nil
		return
	}
	s.interval = time.AfterFunc(s.cfg.AutosaveInterval, s.intervalSave)
}

func (s *Session) saveLocked() {
	if s.lc.State() == editor.StatePublished {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.lc.SaveDraft(ctx)
}

// StopAutosave cancels both timers; called when the draft is published
// or discarded.
func (s *Session) StopAutosave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
}

func (s *Session) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
}

func (s *Session) stopTimersLocked() {
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	if s.interval != nil {
		s.interval.Stop()
		s.interval = nil
	}
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lc.State() == editor.StatePublished && s.lastUsed.Before(cutoff)
}
