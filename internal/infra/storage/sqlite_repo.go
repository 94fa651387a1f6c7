package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// GameEvent is the storage-side shape of one audit log entry. The
// adapter in cmd translates domain events into this form.
type GameEvent struct {
	ID        string
	Timestamp time.Time
	EventType string
	ActorID   string
	Payload   map[string]interface{}
}

// SQLiteEventRepository persists game events to the events table.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

// Append inserts a new event into the audit log.
func (r *SQLiteEventRepository) Append(ctx context.Context, event GameEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, timestamp, event_type, actor_id, payload)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.EventType, event.ActorID, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// GetByType returns all stored events of one type, oldest first.
func (r *SQLiteEventRepository) GetByType(ctx context.Context, eventType string) ([]GameEvent, error) {
	query := `SELECT id, timestamp, event_type, actor_id, payload FROM events WHERE event_type = ? ORDER BY timestamp ASC`
	rows, err := r.db.QueryContext(ctx, query, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []GameEvent
	for rows.Next() {
		var e GameEvent
		var payloadStr string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.EventType, &e.ActorID, &payloadStr); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByType returns how many events of one type have been recorded.
func (r *SQLiteEventRepository) CountByType(ctx context.Context, eventType string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE event_type = ?`, eventType).Scan(&n)
	return n, err
}

// ---------------------------------------------------------
// SQLiteAchievementRepository
// ---------------------------------------------------------

// SQLiteAchievementRepository persists achievement unlocks. The save
// record does not carry unlock state, so this ledger is what prevents
// notification banners from re-firing on every session.
type SQLiteAchievementRepository struct {
	db *sql.DB
}

func NewSQLiteAchievementRepository(db *sql.DB) *SQLiteAchievementRepository {
	return &SQLiteAchievementRepository{db: db}
}

// Upsert records an unlock. Re-recording an existing unlock keeps the
// original timestamp.
func (r *SQLiteAchievementRepository) Upsert(ctx context.Context, name string, unlockedAt time.Time) error {
	query := `
		INSERT INTO achievements (name, unlocked_at)
		VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, name, unlockedAt)
	return err
}

// GetUnlocked returns the names of all recorded unlocks.
func (r *SQLiteAchievementRepository) GetUnlocked(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM achievements ORDER BY unlocked_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Clear wipes the unlock ledger. Used by "new game".
func (r *SQLiteAchievementRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM achievements`)
	return err
}
