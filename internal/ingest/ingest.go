// Package ingest reads game-history exports from the data service. Parsing
// is lenient: null or missing stat values become the sentinel 0, and records
// lacking an id get a fresh one.
package ingest

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/pable/rlstats/internal/model"
)

// ParseFile reads and parses one export file.
func ParseFile(path string) ([]model.GameRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	games, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return games, nil
}

// Parse accepts either a JSON array of games or an object with a "games"
// array.
func Parse(data []byte) ([]model.GameRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = root.Get("games")
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("expected an array of games or an object with a \"games\" array")
	}

	var (
		out []model.GameRecord
		err error
		i   int
	)
	root.ForEach(func(_, v gjson.Result) bool {
		defer func() { i++ }()
		if !v.IsObject() {
			err = fmt.Errorf("game %d: expected an object, got %s", i, v.Type)
			return false
		}
		var g model.GameRecord
		if g, err = parseGame(v); err != nil {
			err = fmt.Errorf("game %d: %w", i, err)
			return false
		}
		out = append(out, g)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseGame(v gjson.Result) (model.GameRecord, error) {
	my, opp := v.Get("my_goals"), v.Get("opp_goals")
	if !my.Exists() || !opp.Exists() {
		return model.GameRecord{}, fmt.Errorf("missing my_goals/opp_goals")
	}

	g := model.GameRecord{
		ID:        v.Get("id").String(),
		Date:      v.Get("date").String(),
		MyGoals:   int(my.Int()),
		OppGoals:  int(opp.Int()),
		Overtime:  v.Get("overtime").Bool(),
		MapName:   v.Get("map_name").String(),
		Playlist:  firstString(v, "playlist", "playlist_name"),
		Duration:  int(v.Get("duration").Int()),
		TeamSize:  int(v.Get("team_size").Int()),
		Me:        parseRole(v.Get("me")),
		Opponents: parseRole(v.Get("opponents")),
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if tm := v.Get("teammates"); tm.IsObject() {
		r := parseRole(tm)
		g.Teammates = &r
	}
	switch {
	case g.TeamSize == 1:
		g.Teammates = nil
	case g.TeamSize == 0 && g.Teammates == nil:
		g.TeamSize = 1
	case g.TeamSize == 0:
		g.TeamSize = 2
	case g.Teammates == nil:
		g.Teammates = &model.RoleStats{}
	}
	return g, nil
}

func parseRole(v gjson.Result) model.RoleStats {
	return model.RoleStats{
		PercentBehindBall: v.Get("percent_behind_ball").Float(),
		AvgSpeed:          v.Get("avg_speed").Float(),
		AvgDistanceToBall: firstFloat(v, "avg_distance_to_ball", "avg_distance"),
	}
}

func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() && r.Type != gjson.Null {
			return r.String()
		}
	}
	return ""
}

func firstFloat(v gjson.Result, paths ...string) float64 {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() && r.Type != gjson.Null {
			return r.Float()
		}
	}
	return 0
}
