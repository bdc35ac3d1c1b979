package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/model"
)

func makeGame(id, date string, my, opp int, pbb float64) model.GameRecord {
	tm := model.RoleStats{PercentBehindBall: pbb - 5, AvgSpeed: 1400, AvgDistanceToBall: 2100}
	return model.GameRecord{
		ID: id, Date: date, MyGoals: my, OppGoals: opp,
		Playlist: "Ranked Doubles", Duration: 300, TeamSize: 2,
		Me:        model.RoleStats{PercentBehindBall: pbb, AvgSpeed: 1500, AvgDistanceToBall: 2000},
		Teammates: &tm,
		Opponents: model.RoleStats{PercentBehindBall: pbb + 5, AvgSpeed: 1300, AvgDistanceToBall: 2200},
	}
}

func sampleGames() []model.GameRecord {
	return []model.GameRecord{
		makeGame("a", "2025-01-01T10:00:00Z", 3, 0, 60),
		makeGame("b", "2025-01-03T10:00:00Z", 3, 0, 70),
		makeGame("c", "2025-01-02T10:00:00Z", 1, 2, 65),
		makeGame("d", "2025-01-04T10:00:00Z", 2, 0, 55),
	}
}

func mustView(t *testing.T, name string) View {
	t.Helper()
	v, err := Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return v
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"scoreline", "goaldiff", "games"} {
		mustView(t, name)
	}
	if _, err := Lookup("heatmap"); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestBuildScoreline(t *testing.T) {
	v := mustView(t, "scoreline")
	tbl := v.Build(sampleGames(), v.Codec.Default(), nil)

	if tbl.Total != 4 {
		t.Errorf("total: want 4, got %d", tbl.Total)
	}
	want := []string{"3-0", "2-0", "1-2"}
	if len(tbl.Rows) != len(want) {
		t.Fatalf("want %d rows, got %d", len(want), len(tbl.Rows))
	}
	for i, k := range want {
		if tbl.Rows[i].Key != k {
			t.Errorf("row %d: want %s, got %s", i, k, tbl.Rows[i].Key)
		}
	}
	if tbl.Rows[0].Games != 2 || tbl.Rows[0].Outcome != "win" {
		t.Errorf("3-0 row: %+v", tbl.Rows[0])
	}
	if tbl.Rows[2].Outcome != "loss" {
		t.Errorf("1-2 outcome: want loss, got %s", tbl.Rows[2].Outcome)
	}
	if tbl.Query != "" {
		t.Errorf("default state should encode empty, got %q", tbl.Query)
	}
	if len(tbl.Rows[0].Cells) != len(model.Stats) {
		t.Fatalf("want %d cells, got %d", len(model.Stats), len(tbl.Rows[0].Cells))
	}
	if bars := tbl.Rows[0].Cells[0].Bars; len(bars) != 3 {
		t.Errorf("2v2 rows should carry three bars, got %d", len(bars))
	}
}

func TestBuildExpandedSubRows(t *testing.T) {
	v := mustView(t, "scoreline")
	tbl := v.Build(sampleGames(), v.Codec.Default(), Expanded{"3-0": true})

	row := tbl.Rows[0]
	if !row.Expanded {
		t.Fatal("3-0 should be expanded")
	}
	if len(row.Sub) != 2 {
		t.Fatalf("want 2 sub-rows, got %d", len(row.Sub))
	}
	if row.Sub[0].Key != "b" || row.Sub[1].Key != "a" {
		t.Errorf("sub-rows should be newest first, got %s, %s", row.Sub[0].Key, row.Sub[1].Key)
	}
	if tbl.Rows[1].Expanded || tbl.Rows[1].Sub != nil {
		t.Error("2-0 should not be expanded")
	}
}

func TestBuildGoalDiff(t *testing.T) {
	v := mustView(t, "goaldiff")
	tbl := v.Build(sampleGames(), v.Codec.Default(), nil)
	want := []string{"+3", "+2", "-1"}
	if len(tbl.Rows) != len(want) {
		t.Fatalf("want %d rows, got %d", len(want), len(tbl.Rows))
	}
	for i, k := range want {
		if tbl.Rows[i].Key != k {
			t.Errorf("row %d: want %s, got %s", i, k, tbl.Rows[i].Key)
		}
	}
}

func TestBuildGamesView(t *testing.T) {
	v := mustView(t, "games")
	tbl := v.Build(sampleGames(), v.Codec.Default(), nil)
	want := []string{"d", "b", "c", "a"}
	for i, id := range want {
		if tbl.Rows[i].Key != id {
			t.Errorf("row %d: want %s, got %s", i, id, tbl.Rows[i].Key)
		}
	}
	var active int
	for _, c := range tbl.Columns {
		if c.Active {
			active++
			if c.Key != analysis.SortDate || c.Dir != analysis.Desc {
				t.Errorf("active column: %+v", c)
			}
		}
	}
	if active != 1 {
		t.Errorf("want exactly one active column, got %d", active)
	}
}

func TestBuildEmpty(t *testing.T) {
	for _, v := range Views {
		tbl := v.Build(nil, v.Codec.Default(), nil)
		if len(tbl.Rows) != 0 || tbl.Total != 0 {
			t.Errorf("%s: expected empty table, got %+v", v.Name, tbl)
		}
	}
}

func TestExpandedToggle(t *testing.T) {
	e := Expanded{}
	if !e.Toggle("3-0") {
		t.Error("first toggle should expand")
	}
	if e.Toggle("3-0") {
		t.Error("second toggle should collapse")
	}
	if len(e) != 0 {
		t.Errorf("set should be empty, got %v", e)
	}
}

// ---- Session ----

type stubSource struct {
	games []model.GameRecord
	err   error
	reqs  []filter.Request
}

func (s *stubSource) Games(_ context.Context, req filter.Request) ([]model.GameRecord, error) {
	s.reqs = append(s.reqs, req)
	return s.games, s.err
}

func TestSessionStaleCommitDiscarded(t *testing.T) {
	v := mustView(t, "games")
	s := NewSession(v, v.Codec.Default())

	first, _ := s.Begin()
	second, _ := s.Begin()

	latest := sampleGames()[:1]
	if !s.Commit(second, latest) {
		t.Fatal("latest ticket should apply")
	}
	if s.Commit(first, sampleGames()) {
		t.Fatal("stale ticket must not apply")
	}
	if got := s.Table().Total; got != 1 {
		t.Errorf("table should reflect the latest fetch only, got %d games", got)
	}
}

func TestSessionStaleResolvedFirst(t *testing.T) {
	v := mustView(t, "games")
	s := NewSession(v, v.Codec.Default())

	first, _ := s.Begin()
	second, _ := s.Begin()
	if s.Commit(first, sampleGames()) {
		t.Fatal("superseded fetch resolving first must be dropped")
	}
	if s.Loaded() {
		t.Error("nothing should be loaded yet")
	}
	s.Commit(second, nil)
	if !s.Loaded() {
		t.Error("latest commit should mark the session loaded")
	}
}

func TestSessionRefresh(t *testing.T) {
	v := mustView(t, "scoreline")
	st := v.Codec.Default()
	st.TeamSize = 3
	s := NewSession(v, st)
	src := &stubSource{games: sampleGames()}

	applied, err := s.Refresh(context.Background(), src)
	if err != nil || !applied {
		t.Fatalf("Refresh: applied=%v err=%v", applied, err)
	}
	if len(src.reqs) != 1 || src.reqs[0].TeamSize != 3 {
		t.Errorf("unexpected request: %+v", src.reqs)
	}
	if got := len(s.Table().Rows); got != 3 {
		t.Errorf("want 3 rows, got %d", got)
	}

	src.err = errors.New("boom")
	if _, err := s.Refresh(context.Background(), src); err == nil {
		t.Error("expected fetch error")
	}
	if got := len(s.Table().Rows); got != 3 {
		t.Errorf("failed refresh must keep previous data, got %d rows", got)
	}
}

func TestSessionSetStateInvalidatesInFlight(t *testing.T) {
	v := mustView(t, "scoreline")
	s := NewSession(v, v.Codec.Default())
	if _, err := s.ToggleExpand("3-0"); err != nil {
		t.Fatal(err)
	}

	ticket, _ := s.Begin()
	st := s.State()
	st.TeamSize = 1
	if !s.SetState(st) {
		t.Fatal("team size change should need a fetch")
	}
	if s.Commit(ticket, sampleGames()) {
		t.Error("fetch issued for old filters must be discarded")
	}

	ticket, _ = s.Begin()
	s.Commit(ticket, sampleGames())
	for _, r := range s.Table().Rows {
		if r.Expanded {
			t.Errorf("expansion should be cleared on filter change, %s still expanded", r.Key)
		}
	}
}

func TestSessionSortChangeKeepsData(t *testing.T) {
	v := mustView(t, "scoreline")
	s := NewSession(v, v.Codec.Default())
	ticket, _ := s.Begin()
	s.Commit(ticket, sampleGames())

	st := s.State()
	st.Sort = analysis.SortGames
	if s.SetState(st) {
		t.Error("sort change should not need a fetch")
	}
	if rows := s.Table().Rows; rows[0].Key != "3-0" {
		t.Errorf("games desc: want 3-0 first, got %s", rows[0].Key)
	}
}

func TestSessionToggleSort(t *testing.T) {
	v := mustView(t, "scoreline")
	s := NewSession(v, v.Codec.Default())

	if err := s.ToggleSort(analysis.SortScore); err != nil {
		t.Fatal(err)
	}
	if st := s.State(); st.Sort != analysis.SortScore || st.Dir != analysis.Asc {
		t.Errorf("same key should flip: %+v", st)
	}
	if err := s.ToggleSort("pbb"); err != nil {
		t.Fatal(err)
	}
	if st := s.State(); st.Sort != "pbb" || st.Dir != analysis.Desc {
		t.Errorf("new key should reset to desc: %+v", st)
	}
	if err := s.ToggleSort(analysis.SortDate); err == nil {
		t.Error("scoreline view must reject date sort")
	}
	if q := s.Query(); q[filter.KeySort] != "pbb" {
		t.Errorf("query should carry sort=pbb, got %v", q)
	}
}

func TestSessionToggleExpandCanonical(t *testing.T) {
	v := mustView(t, "goaldiff")
	s := NewSession(v, v.Codec.Default())
	ticket, _ := s.Begin()
	s.Commit(ticket, sampleGames())

	if on, err := s.ToggleExpand("3"); err != nil || !on {
		t.Fatalf("ToggleExpand: on=%v err=%v", on, err)
	}
	if !s.Table().Rows[0].Expanded {
		t.Error("\"3\" should expand the +3 bucket")
	}

	g := NewSession(mustView(t, "games"), Views[2].Codec.Default())
	if _, err := g.ToggleExpand("3-0"); err == nil {
		t.Error("games view has no drill-down")
	}
}

func TestExpandKey(t *testing.T) {
	gd := mustView(t, "goaldiff")
	for _, in := range []string{"3", "+3", " 3", " +3 "} {
		if k, err := gd.ExpandKey(in); err != nil || k != "+3" {
			t.Errorf("ExpandKey(%q) = %q, %v; want +3", in, k, err)
		}
	}
	if k, err := gd.ExpandKey("-1"); err != nil || k != "-1" {
		t.Errorf("ExpandKey(-1) = %q, %v", k, err)
	}
	if k, err := mustView(t, "scoreline").ExpandKey(" 3-0"); err != nil || k != "3-0" {
		t.Errorf("scoreline ExpandKey = %q, %v", k, err)
	}
	if _, err := gd.ExpandKey("three"); err == nil {
		t.Error("expected error for malformed key")
	}
	if _, err := mustView(t, "games").ExpandKey("3-0"); err == nil {
		t.Error("games view has no drill-down")
	}
}

func TestSessionSetViewInvalidatesInFlight(t *testing.T) {
	sl := mustView(t, "scoreline")
	s := NewSession(sl, sl.Codec.Default())
	ticket, _ := s.Begin()

	gv := mustView(t, "games")
	if s.SetView(gv, gv.Codec.Default()) {
		t.Error("same data request should not need a fetch")
	}
	if !s.Commit(ticket, sampleGames()) {
		t.Error("fetch for an unchanged request should still apply")
	}

	ticket, _ = s.Begin()
	st := sl.Codec.Default()
	st.TeamSize = 3
	if !s.SetView(sl, st) {
		t.Fatal("team size change should need a fetch")
	}
	if s.Commit(ticket, sampleGames()) {
		t.Error("fetch issued before the view switch must be discarded")
	}
}

func TestSessionSetViewAtomic(t *testing.T) {
	sl := mustView(t, "scoreline")
	slState := sl.Codec.Default()
	slState.Sort = analysis.SortGames // not offered by the games view
	gv := mustView(t, "games")

	s := NewSession(sl, slState)
	ticket, _ := s.Begin()
	s.Commit(ticket, sampleGames())

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			var active int
			for _, c := range s.Table().Columns {
				if c.Active {
					active++
				}
			}
			if active != 1 {
				t.Errorf("table built from a half-switched session: %d active columns", active)
				return
			}
		}
	}()
	for i := 0; i < 500; i++ {
		s.SetView(gv, gv.Codec.Default())
		s.SetView(sl, slState)
	}
	close(done)
	wg.Wait()
}
