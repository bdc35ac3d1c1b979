package model

import (
	"fmt"
	"math"
)

// Stat identifies one of the per-role measurements shown as a bar column.
type Stat string

const (
	StatBehindBall Stat = "pbb"
	StatSpeed      Stat = "spd"
	StatDistance   Stat = "dist"
)

// StatInfo describes the fixed display properties of a stat.
type StatInfo struct {
	Stat  Stat
	Label string
	// Invert marks stats where a lower value is the better outcome.
	Invert bool
	// Intensity is the emphasis (alpha) applied to the shade.
	Intensity float64
	Format    func(v float64) string
}

// Stats lists the bar columns in display order.
var Stats = []StatInfo{
	{Stat: StatBehindBall, Label: "% Behind Ball", Invert: true, Intensity: 1, Format: formatPercent},
	{Stat: StatSpeed, Label: "Avg Speed", Intensity: 0.45, Format: formatInt},
	{Stat: StatDistance, Label: "Avg Distance", Intensity: 0.45, Format: formatInt},
}

// LookupStat returns the catalogue entry for s.
func LookupStat(s Stat) (StatInfo, bool) {
	for _, info := range Stats {
		if info.Stat == s {
			return info, true
		}
	}
	return StatInfo{}, false
}

// NoData is the label shown in place of a sentinel zero.
const NoData = "-"

func formatPercent(v float64) string {
	if v == 0 {
		return NoData
	}
	return fmt.Sprintf("%d%%", int(math.Round(v)))
}

func formatInt(v float64) string {
	if v == 0 {
		return NoData
	}
	return fmt.Sprintf("%d", int(math.Round(v)))
}

// ---- Playlists ----

// Playlist maps a stable short identifier to the data service's playlist name.
type Playlist struct {
	ID    string
	Label string
	Name  string
}

// Playlists is the known playlist catalogue in display order.
var Playlists = []Playlist{
	{ID: "r1", Label: "Ranked 1s", Name: "Ranked Duels"},
	{ID: "r2", Label: "Ranked 2s", Name: "Ranked Doubles"},
	{ID: "r3", Label: "Ranked 3s", Name: "Ranked Standard"},
	{ID: "c1", Label: "Casual 1s", Name: "Unranked Duels"},
	{ID: "c2", Label: "Casual 2s", Name: "Unranked Doubles"},
	{ID: "c3", Label: "Casual 3s", Name: "Unranked Standard"},
}

// DefaultPlaylistIDs is the playlist selection used when none is persisted.
var DefaultPlaylistIDs = []string{"r2", "r3"}

// LookupPlaylist returns the playlist with the given short id.
func LookupPlaylist(id string) (Playlist, bool) {
	for _, p := range Playlists {
		if p.ID == id {
			return p, true
		}
	}
	return Playlist{}, false
}
