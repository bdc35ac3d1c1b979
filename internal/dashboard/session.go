package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/model"
)

// Source answers game queries. storage.DB implements it.
type Source interface {
	Games(ctx context.Context, req filter.Request) ([]model.GameRecord, error)
}

// Session owns one view's filter state, expansion set and the most recently
// applied fetch. Only the result of the latest issued fetch is ever applied.
type Session struct {
	mu       sync.Mutex
	view     View
	state    filter.State
	expanded Expanded
	games    []model.GameRecord
	loaded   bool
	ticket   uint64
}

// NewSession starts a session for v at state.
func NewSession(v View, state filter.State) *Session {
	return &Session{view: v, state: state, expanded: Expanded{}}
}

// View returns the session's view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// State returns the current filter state.
func (s *Session) State() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Query returns the canonical encoded form of the current state.
func (s *Session) Query() filter.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Codec.Encode(s.state)
}

// Loaded reports whether any fetch has been committed yet.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Begin issues a new fetch ticket, superseding any fetch still in flight,
// and returns the request to run.
func (s *Session) Begin() (uint64, filter.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	return s.ticket, s.state.Request()
}

// Commit applies games if ticket is still the latest issued. It reports
// whether the result was applied; stale results are dropped.
func (s *Session) Commit(ticket uint64, games []model.GameRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.ticket {
		return false
	}
	s.games = games
	s.loaded = true
	return true
}

// Refresh fetches from src for the current state and commits the result.
// A fetch superseded while in flight returns applied == false and no error.
func (s *Session) Refresh(ctx context.Context, src Source) (applied bool, err error) {
	ticket, req := s.Begin()
	games, err := src.Games(ctx, req)
	if err != nil {
		return false, fmt.Errorf("fetch %s: %w", s.View().Name, err)
	}
	return s.Commit(ticket, games), nil
}

// SetState replaces the filter state. When the data request changes the
// expansion set is cleared and any in-flight fetch is invalidated; the
// caller is expected to Refresh.
func (s *Session) SetState(state filter.State) (needsFetch bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStateLocked(state)
}

// SetView switches to another view, keeping the loaded games only when the
// new state asks for the same data.
func (s *Session) SetView(v View, state filter.State) (needsFetch bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	s.expanded = Expanded{}
	return s.setStateLocked(state)
}

// setStateLocked requires s.mu.
func (s *Session) setStateLocked(state filter.State) bool {
	needsFetch := !sameRequest(s.state.Request(), state.Request())
	s.state = state
	if needsFetch {
		s.expanded = Expanded{}
		s.ticket++
	}
	return needsFetch
}

// ToggleSort applies a header click on key.
func (s *Session) ToggleSort(key analysis.SortKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.view.Codec.ValidSort(key) {
		return fmt.Errorf("view %s cannot sort by %q", s.view.Name, key)
	}
	s.state.Sort, s.state.Dir = analysis.Toggle(s.state.Sort, s.state.Dir, key)
	return nil
}

// ToggleExpand flips the drill-down of bucket key and reports the new state.
func (s *Session) ToggleExpand(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, err := s.view.ExpandKey(key)
	if err != nil {
		return false, err
	}
	return s.expanded.Toggle(k), nil
}

// Table builds the view from the last committed games.
func (s *Session) Table() Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Build(s.games, s.state, s.expanded)
}

func sameRequest(a, b filter.Request) bool {
	if a.TeamSize != b.TeamSize || a.ExcludeTies != b.ExcludeTies || a.MinDuration != b.MinDuration {
		return false
	}
	if len(a.Playlists) != len(b.Playlists) {
		return false
	}
	for i := range a.Playlists {
		if a.Playlists[i] != b.Playlists[i] {
			return false
		}
	}
	return true
}
