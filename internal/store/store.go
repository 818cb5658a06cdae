// Package store persists quests, completions and visit counts so progress
// outlives a tracking session.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wellquest/questmap/internal/geo"
	"github.com/wellquest/questmap/internal/wellquest"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyCompleted = errors.New("quest already completed")
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) SaveQuest(ctx context.Context, sessionID string, q wellquest.LocationQuest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quests (id, session_id, location_id, title, description, duration_minutes,
			activity, xp_reward, target_lat, target_lon, distance_to_target, completed,
			created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, sessionID, q.LocationID, q.Title, q.Description, q.DurationMinutes,
		q.Activity, q.XPReward, q.Target.Lat, q.Target.Lon, nullFloat(q.DistanceToTarget),
		boolInt(q.Completed), formatTime(q.CreatedAt), nullTime(q.CompletedAt))
	if err != nil {
		return fmt.Errorf("inserting quest %s: %w", q.ID, err)
	}
	return nil
}

const questColumns = `id, location_id, title, description, duration_minutes, activity,
	xp_reward, target_lat, target_lon, distance_to_target, completed, created_at, completed_at`

func (s *SQLiteStore) GetQuest(ctx context.Context, id string) (wellquest.LocationQuest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questColumns+` FROM quests WHERE id = ?`, id)
	q, err := scanQuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return q, ErrNotFound
	}
	return q, err
}

// ListQuests returns the quests of a session, oldest first.
func (s *SQLiteStore) ListQuests(ctx context.Context, sessionID string) ([]wellquest.LocationQuest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+questColumns+`
		FROM quests
		WHERE session_id = ?
		ORDER BY rowid
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quests []wellquest.LocationQuest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}

// RecordCompletion marks the quest completed, stores the completion and bumps
// the location's visit count in one transaction. A quest completes at most
// once; later calls return ErrAlreadyCompleted.
func (s *SQLiteStore) RecordCompletion(ctx context.Context, sessionID string, c wellquest.Completion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	at := formatTime(c.CompletedAt)
	res, err := tx.ExecContext(ctx, `
		UPDATE quests SET completed = 1, completed_at = ?
		WHERE id = ? AND completed = 0
	`, at, c.QuestID)
	if err != nil {
		return fmt.Errorf("marking quest completed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM quests WHERE id = ?`, c.QuestID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyCompleted
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO completions (quest_id, session_id, location_id, magical_name, title,
			description, xp_reward, latitude, longitude, accuracy, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.QuestID, sessionID, c.LocationID, c.MagicalName, c.Title, c.Description,
		c.XPReward, c.Position.Latitude, c.Position.Longitude, c.Position.Accuracy, at)
	if err != nil {
		return fmt.Errorf("inserting completion: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO visits (location_id, visit_count, last_visited_at)
		VALUES (?, 1, ?)
		ON CONFLICT (location_id) DO UPDATE
		SET visit_count = visit_count + 1, last_visited_at = excluded.last_visited_at
	`, c.LocationID, at)
	if err != nil {
		return fmt.Errorf("updating visits: %w", err)
	}

	return tx.Commit()
}

// ListCompletions returns the completions of a session in completion order.
func (s *SQLiteStore) ListCompletions(ctx context.Context, sessionID string) ([]wellquest.Completion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT quest_id, location_id, magical_name, title, description, xp_reward,
			latitude, longitude, accuracy, completed_at
		FROM completions
		WHERE session_id = ?
		ORDER BY rowid
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []wellquest.Completion
	for rows.Next() {
		var c wellquest.Completion
		var at string
		if err := rows.Scan(&c.QuestID, &c.LocationID, &c.MagicalName, &c.Title, &c.Description,
			&c.XPReward, &c.Position.Latitude, &c.Position.Longitude, &c.Position.Accuracy, &at); err != nil {
			return nil, err
		}
		if c.CompletedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		c.Position.Timestamp = c.CompletedAt
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadVisits returns the persisted visit count per location id.
func (s *SQLiteStore) LoadVisits(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT location_id, visit_count FROM visits`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	visits := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		visits[id] = n
	}
	return visits, rows.Err()
}

func (s *SQLiteStore) TotalXP(ctx context.Context, sessionID string) (int, error) {
	var xp int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(xp_reward), 0) FROM completions WHERE session_id = ?
	`, sessionID).Scan(&xp)
	return xp, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuest(sc scanner) (wellquest.LocationQuest, error) {
	var (
		q           wellquest.LocationQuest
		lat, lon    float64
		distance    sql.NullFloat64
		createdAt   string
		completedAt sql.NullString
	)
	err := sc.Scan(&q.ID, &q.LocationID, &q.Title, &q.Description, &q.DurationMinutes, &q.Activity,
		&q.XPReward, &lat, &lon, &distance, &q.Completed, &createdAt, &completedAt)
	if err != nil {
		return q, err
	}

	q.Target = geo.Point{Lat: lat, Lon: lon}
	if distance.Valid {
		q.DistanceToTarget = &distance.Float64
	}
	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return q, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return q, err
		}
		q.CompletedAt = &t
	}
	return q, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
