package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/dashboard"
	"github.com/pable/rlstats/internal/model"
)

func TestShadeStops(t *testing.T) {
	tests := []struct {
		t       float64
		r, g, b uint8
	}{
		{0, 45, 120, 45},
		{0.5, 165, 140, 35},
		{1, 195, 60, 30},
		{-3, 45, 120, 45},
		{7, 195, 60, 30},
	}
	for _, tt := range tests {
		r, g, b := Shade(tt.t, 1).RGB255()
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("Shade(%v): want (%d,%d,%d), got (%d,%d,%d)", tt.t, tt.r, tt.g, tt.b, r, g, b)
		}
	}
}

func TestShadeIntensity(t *testing.T) {
	full := Shade(1, 1)
	muted := Shade(1, 0.45)
	bg := Background
	if d := muted.DistanceRgb(bg); d >= full.DistanceRgb(bg) {
		t.Errorf("lower intensity should sit closer to the background: %f", d)
	}
	r, g, b := Shade(0.3, 0).RGB255()
	br, bgc, bb := bg.RGB255()
	if r != br || g != bgc || b != bb {
		t.Errorf("zero intensity should be the background, got (%d,%d,%d)", r, g, b)
	}
}

func TestGlyph(t *testing.T) {
	if Glyph(0) != "▁" || Glyph(1) != "█" {
		t.Errorf("glyph ends: %q %q", Glyph(0), Glyph(1))
	}
	if Glyph(analysis.HeightFloor) == Glyph(0) {
		t.Error("the height floor should render above the lowest block")
	}
	if Glyph(5) != "█" {
		t.Error("heights above 1 should clamp")
	}
}

func TestFormatCellPlain(t *testing.T) {
	c := analysis.Cell{Stat: model.StatBehindBall, Bars: []analysis.Bar{
		{Role: "Me", Label: "60%", Height: 1, T: 1, Intensity: 1},
		{Role: "Op", Label: "-", Height: analysis.HeightFloor, NoData: true},
	}}
	got := FormatCell(c, Options{})
	if !strings.Contains(got, "Me █60%") || !strings.Contains(got, "Op ") || !strings.HasSuffix(got, "-") {
		t.Errorf("unexpected cell: %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Error("plain rendering must not contain escape codes")
	}
}

func TestFormatCellColor(t *testing.T) {
	c := analysis.Cell{Bars: []analysis.Bar{
		{Role: "Me", Label: "1500", Height: 1, T: 0, Intensity: 0.45},
		{Role: "Op", Label: "-", NoData: true},
	}}
	got := FormatCell(c, Options{Color: true})
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected ANSI colour, got %q", got)
	}
	if !strings.HasSuffix(got, "Op ▁-") {
		t.Errorf("no-data bars stay unpainted, got %q", got)
	}
}

func sampleGames() []model.GameRecord {
	tm := model.RoleStats{PercentBehindBall: 50, AvgSpeed: 1400, AvgDistanceToBall: 2100}
	return []model.GameRecord{
		{ID: "a1", Date: "2025-01-01T10:00:00Z", MyGoals: 3, OppGoals: 0, TeamSize: 2, Playlist: "Ranked Doubles", Duration: 300,
			Me: model.RoleStats{PercentBehindBall: 60, AvgSpeed: 1500, AvgDistanceToBall: 2000}, Teammates: &tm,
			Opponents: model.RoleStats{PercentBehindBall: 40, AvgSpeed: 1300, AvgDistanceToBall: 2200}},
		{ID: "b2", Date: "2025-01-02T10:00:00Z", MyGoals: 1, OppGoals: 2, TeamSize: 2, Playlist: "Ranked Doubles", Duration: 305,
			Me: model.RoleStats{PercentBehindBall: 70, AvgSpeed: 1450}, Teammates: &tm,
			Opponents: model.RoleStats{PercentBehindBall: 45, AvgSpeed: 1350, AvgDistanceToBall: 2000}},
	}
}

func TestPrintTableScoreline(t *testing.T) {
	v, _ := dashboard.Lookup("scoreline")
	tbl := v.Build(sampleGames(), v.Codec.Default(), dashboard.Expanded{"3-0": true})

	var buf bytes.Buffer
	PrintTable(&buf, tbl, Options{})
	out := strings.ToUpper(buf.String())
	for _, want := range []string{"STATS BY SCORELINE", "2 GAMES", "3-0", "1-2", "SCORE ▼", "% BEHIND BALL", "└ 2025-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTableGamesAsc(t *testing.T) {
	v, _ := dashboard.Lookup("games")
	st := v.Codec.Default()
	st.Sort = "spd"
	st.Dir = analysis.Asc
	tbl := v.Build(sampleGames(), st, nil)

	var buf bytes.Buffer
	PrintTable(&buf, tbl, Options{})
	out := buf.String()
	if !strings.Contains(strings.ToUpper(out), "AVG SPEED ▲") {
		t.Errorf("active sort column not marked:\n%s", out)
	}
	if !strings.Contains(out, "sort=spd") {
		t.Errorf("non-default state should print its query:\n%s", out)
	}
	if strings.Index(out, "2025-01-02") > strings.Index(out, "2025-01-01") {
		t.Errorf("ascending speed should list b2 (1450) before a1 (1500):\n%s", out)
	}
}

func TestPrintTableEmpty(t *testing.T) {
	v, _ := dashboard.Lookup("goaldiff")
	var buf bytes.Buffer
	PrintTable(&buf, v.Build(nil, v.Codec.Default(), nil), Options{})
	if !strings.Contains(buf.String(), "No games match") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestPrintGame(t *testing.T) {
	var buf bytes.Buffer
	PrintGame(&buf, sampleGames()[1])
	out := buf.String()
	for _, want := range []string{"b2", "1-2", "5:05", "teammates", "opponents", "70%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintGameList(t *testing.T) {
	var buf bytes.Buffer
	PrintGameList(&buf, sampleGames())
	out := buf.String()
	if !strings.Contains(out, "2v2") || !strings.Contains(out, "a1") || !strings.Contains(out, "5:00") {
		t.Errorf("unexpected list:\n%s", out)
	}
}

func TestPrintAverages(t *testing.T) {
	b, ok := analysis.Overall(sampleGames())
	if !ok {
		t.Fatal("expected a bucket")
	}
	var buf bytes.Buffer
	PrintAverages(&buf, b)
	out := buf.String()
	for _, want := range []string{"2 games", "me", "teammates", "opponents", "65%", "1475", "1000", "2100"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
