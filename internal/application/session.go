package application

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/davarch/ci-dashboard/internal/domain"
)

// Session is the state shared by one dashboard run: the last project list
// and counters describing the refresh cycles.
type Session struct {
	mu          sync.RWMutex
	projects    []domain.Project
	lastRefresh time.Time

	started  atomic.Int64
	finished atomic.Int64
	failures atomic.Int64
}

type Stats struct {
	Projects       int
	CyclesStarted  int64
	CyclesFinished int64
	Failures       int64
	LastRefresh    time.Time
}

func NewSession() *Session { return &Session{} }

func (s *Session) SetProjects(ps []domain.Project) {
	cp := make([]domain.Project, len(ps))
	copy(cp, ps)

	s.mu.Lock()
	s.projects = cp
	s.lastRefresh = time.Now()
	s.mu.Unlock()
}

func (s *Session) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]domain.Project, len(s.projects))
	copy(cp, s.projects)
	return cp
}

func (s *Session) Stats() Stats {
	s.mu.RLock()
	st := Stats{Projects: len(s.projects), LastRefresh: s.lastRefresh}
	s.mu.RUnlock()

	st.CyclesStarted = s.started.Load()
	st.CyclesFinished = s.finished.Load()
	st.Failures = s.failures.Load()
	return st
}

func (s *Session) cycleStarted()  { s.started.Add(1) }
func (s *Session) cycleFinished() { s.finished.Add(1) }
func (s *Session) branchFailed()  { s.failures.Add(1) }
