package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/model"
)

const gameColumns = `id, date, my_goals, opp_goals, overtime, map_name, playlist, duration, team_size,
		me_pbb, me_speed, me_dist,
		has_teammates, tm_pbb, tm_speed, tm_dist,
		opp_pbb, opp_speed, opp_dist`

// GameExists returns true if a game with the given id is already stored.
func (db *DB) GameExists(id string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM games WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertGames bulk-inserts games in a transaction. Uses INSERT OR REPLACE so
// re-importing the same export is idempotent. Returns how many ids were new.
func (db *DB) InsertGames(games []model.GameRecord) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	exists, err := tx.Prepare("SELECT COUNT(1) FROM games WHERE id = ?")
	if err != nil {
		return 0, err
	}
	defer exists.Close()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO games(` + gameColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, g := range games {
		var n int
		if err := exists.QueryRow(g.ID).Scan(&n); err != nil {
			return 0, fmt.Errorf("check game %s: %w", g.ID, err)
		}
		if n == 0 {
			added++
		}
		var tm model.RoleStats
		if g.Teammates != nil {
			tm = *g.Teammates
		}
		_, err = stmt.Exec(
			g.ID, g.Date, g.MyGoals, g.OppGoals, boolInt(g.Overtime),
			g.MapName, g.Playlist, g.Duration, g.TeamSize,
			g.Me.PercentBehindBall, g.Me.AvgSpeed, g.Me.AvgDistanceToBall,
			boolInt(g.Teammates != nil), tm.PercentBehindBall, tm.AvgSpeed, tm.AvgDistanceToBall,
			g.Opponents.PercentBehindBall, g.Opponents.AvgSpeed, g.Opponents.AvgDistanceToBall,
		)
		if err != nil {
			return 0, fmt.Errorf("insert game %s: %w", g.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// Games returns the games matching req, newest first. An empty playlist
// list means no playlist filtering.
func (db *DB) Games(ctx context.Context, req filter.Request) ([]model.GameRecord, error) {
	var (
		where []string
		args  []any
	)
	if req.TeamSize > 0 {
		where = append(where, "team_size = ?")
		args = append(args, req.TeamSize)
	}
	if req.ExcludeTies {
		where = append(where, "my_goals <> opp_goals")
	}
	if req.MinDuration > 0 {
		where = append(where, "duration >= ?")
		args = append(args, req.MinDuration)
	}
	if len(req.Playlists) > 0 {
		where = append(where, "playlist IN (?"+strings.Repeat(",?", len(req.Playlists)-1)+")")
		for _, p := range req.Playlists {
			args = append(args, p)
		}
	}

	q := "SELECT " + gameColumns + " FROM games"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date DESC, id"

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// ListGames returns the most recent games, newest first. limit <= 0 returns all.
func (db *DB) ListGames(limit int) ([]model.GameRecord, error) {
	q := "SELECT " + gameColumns + " FROM games ORDER BY date DESC, id"
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGames(rows)
}

// GetGameByPrefix finds the first game whose id starts with the given prefix.
func (db *DB) GetGameByPrefix(prefix string) (*model.GameRecord, error) {
	rows, err := db.conn.Query("SELECT "+gameColumns+" FROM games WHERE id LIKE ? ORDER BY id LIMIT 1", prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	games, err := scanGames(rows)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("game %q: %w", prefix, ErrNotFound)
	}
	return &games[0], nil
}

// DeleteGame removes a single game by exact id.
func (db *DB) DeleteGame(id string) error {
	res, err := db.conn.Exec("DELETE FROM games WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("game %q: %w", id, ErrNotFound)
	}
	return nil
}

func scanGames(rows *sql.Rows) ([]model.GameRecord, error) {
	var out []model.GameRecord
	for rows.Next() {
		var (
			g              model.GameRecord
			overtime, hasT int
			tm             model.RoleStats
		)
		if err := rows.Scan(
			&g.ID, &g.Date, &g.MyGoals, &g.OppGoals, &overtime, &g.MapName, &g.Playlist, &g.Duration, &g.TeamSize,
			&g.Me.PercentBehindBall, &g.Me.AvgSpeed, &g.Me.AvgDistanceToBall,
			&hasT, &tm.PercentBehindBall, &tm.AvgSpeed, &tm.AvgDistanceToBall,
			&g.Opponents.PercentBehindBall, &g.Opponents.AvgSpeed, &g.Opponents.AvgDistanceToBall,
		); err != nil {
			return nil, err
		}
		g.Overtime = overtime != 0
		if hasT != 0 {
			g.Teammates = &tm
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
