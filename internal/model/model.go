// Package model holds the per-game records the analysis pipeline consumes and
// the fixed catalogues (roles, stats, playlists) the views are built from.
package model

import "fmt"

// Role identifies whose stats a RoleStats value describes.
type Role int

const (
	RoleMe Role = iota
	RoleTeammates
	RoleOpponents
)

func (r Role) String() string {
	switch r {
	case RoleMe:
		return "me"
	case RoleTeammates:
		return "teammates"
	case RoleOpponents:
		return "opponents"
	default:
		return "?"
	}
}

// Short returns the two-letter label used under each bar.
func (r Role) Short() string {
	switch r {
	case RoleMe:
		return "Me"
	case RoleTeammates:
		return "Tm"
	case RoleOpponents:
		return "Op"
	default:
		return "?"
	}
}

// ---- Per-game records ----

// RoleStats is the stat bundle for one role in one game (or the mean over a
// group of games). A field value of exactly 0 means "no observation".
type RoleStats struct {
	PercentBehindBall float64 `json:"percent_behind_ball"`
	AvgSpeed          float64 `json:"avg_speed"`
	AvgDistanceToBall float64 `json:"avg_distance_to_ball"`
}

// Get returns the value of the given stat.
func (s RoleStats) Get(stat Stat) float64 {
	switch stat {
	case StatBehindBall:
		return s.PercentBehindBall
	case StatSpeed:
		return s.AvgSpeed
	case StatDistance:
		return s.AvgDistanceToBall
	default:
		return 0
	}
}

// GameRecord is one game as returned by the data service. Teammates is nil
// exactly for 1v1 games.
type GameRecord struct {
	ID        string     `json:"id"`
	Date      string     `json:"date"`
	MyGoals   int        `json:"my_goals"`
	OppGoals  int        `json:"opp_goals"`
	Overtime  bool       `json:"overtime"`
	MapName   string     `json:"map_name,omitempty"`
	Playlist  string     `json:"playlist,omitempty"`
	Duration  int        `json:"duration,omitempty"` // seconds
	TeamSize  int        `json:"team_size,omitempty"`
	Me        RoleStats  `json:"me"`
	Teammates *RoleStats `json:"teammates"`
	Opponents RoleStats  `json:"opponents"`
}

// Diff is the signed goal differential from the player's side.
func (g GameRecord) Diff() int { return g.MyGoals - g.OppGoals }

// Score returns the scoreline as "my-opp".
func (g GameRecord) Score() string { return fmt.Sprintf("%d-%d", g.MyGoals, g.OppGoals) }

// Roles returns the role bundles present in the record, in display order.
func (g GameRecord) Roles() []RoleValue {
	return RolesOf(g.Me, g.Teammates, g.Opponents)
}

// MeStats, ScoreKey, SortDate and GameCount let a GameRecord be ranked and
// sorted alongside aggregate buckets.

func (g GameRecord) MeStats() RoleStats { return g.Me }
func (g GameRecord) ScoreKey() (int, int) { return g.MyGoals, g.OppGoals }
func (g GameRecord) SortDate() string { return g.Date }
func (g GameRecord) GameCount() int { return 1 }

// RoleValue pairs a role with its stat bundle.
type RoleValue struct {
	Role  Role
	Stats RoleStats
}

// RolesOf lists me, teammates (when present) and opponents in display order.
func RolesOf(me RoleStats, tm *RoleStats, opp RoleStats) []RoleValue {
	if tm == nil {
		return []RoleValue{{RoleMe, me}, {RoleOpponents, opp}}
	}
	return []RoleValue{{RoleMe, me}, {RoleTeammates, *tm}, {RoleOpponents, opp}}
}

// Outcome classifies a goal differential.
type Outcome int

const (
	Draw Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "draw"
	}
}

// OutcomeOf returns Win for a positive differential, Loss for a negative one.
func OutcomeOf(diff int) Outcome {
	switch {
	case diff > 0:
		return Win
	case diff < 0:
		return Loss
	default:
		return Draw
	}
}
