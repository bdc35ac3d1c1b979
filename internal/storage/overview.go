package storage

import (
	"database/sql"
	"fmt"
)

// DBOverview summarises the stored game history.
type DBOverview struct {
	TotalGames   int
	EarliestGame string
	LatestGame   string
	Playlists    int
}

// GroupCount is a per-group game tally with win/loss/draw split.
type GroupCount struct {
	Group  string
	Games  int
	Wins   int
	Losses int
	Draws  int
}

// GetDBOverview returns the headline counts for the summary command.
func (db *DB) GetDBOverview() (DBOverview, error) {
	var ov DBOverview
	var earliest, latest sql.NullString
	err := db.conn.QueryRow(`
		SELECT COUNT(1), MIN(date), MAX(date), COUNT(DISTINCT playlist)
		FROM games`).Scan(&ov.TotalGames, &earliest, &latest, &ov.Playlists)
	if err != nil {
		return ov, fmt.Errorf("overview: %w", err)
	}
	ov.EarliestGame = earliest.String
	ov.LatestGame = latest.String
	return ov, nil
}

// GetTeamSizeCounts tallies games per team size ("1v1", "2v2", ...).
func (db *DB) GetTeamSizeCounts() ([]GroupCount, error) {
	return db.groupCounts(`team_size || 'v' || team_size`, "team_size")
}

// GetPlaylistCounts tallies games per playlist name, busiest first.
func (db *DB) GetPlaylistCounts() ([]GroupCount, error) {
	return db.groupCounts("playlist", "COUNT(1) DESC, playlist")
}

func (db *DB) groupCounts(expr, order string) ([]GroupCount, error) {
	rows, err := db.conn.Query(`
		SELECT ` + expr + `, COUNT(1),
		       SUM(CASE WHEN my_goals > opp_goals THEN 1 ELSE 0 END),
		       SUM(CASE WHEN my_goals < opp_goals THEN 1 ELSE 0 END),
		       SUM(CASE WHEN my_goals = opp_goals THEN 1 ELSE 0 END)
		FROM games GROUP BY ` + expr + ` ORDER BY ` + order)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var c GroupCount
		if err := rows.Scan(&c.Group, &c.Games, &c.Wins, &c.Losses, &c.Draws); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary read query and returns every value as text.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
