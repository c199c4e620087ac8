package sqlite

import (
	"fmt"
	"time"

	"camshare/internal/model"
)

// ActivityRepository implements repository.ActivityRepository for SQLite.
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new SQLite activity repository.
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const insertActivity = `
	INSERT OR IGNORE INTO activities (id, kind, camera_id, actor, detail, occurred_at)
	VALUES (?, ?, ?, ?, ?, ?)
`

// Insert adds a single activity. Re-inserting an existing id is a no-op.
func (r *ActivityRepository) Insert(a *model.Activity) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(insertActivity, a.ID, string(a.Kind), a.CameraID, a.Actor, a.Detail, a.OccurredAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// InsertBatch adds multiple activities in a single transaction.
func (r *ActivityRepository) InsertBatch(activities []model.Activity) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertActivity)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range activities {
		if _, err := stmt.Exec(a.ID, string(a.Kind), a.CameraID, a.Actor, a.Detail, a.OccurredAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert activity %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func whereClause(filter *model.ActivityFilter) (string, []interface{}) {
	query := " WHERE 1=1"
	args := []interface{}{}
	if filter == nil {
		return query, args
	}

	if filter.CameraID != "" {
		query += " AND camera_id = ?"
		args = append(args, filter.CameraID)
	}

	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filter.Kind))
	}

	if !filter.Since.IsZero() {
		query += " AND occurred_at >= ?"
		args = append(args, filter.Since.UTC())
	}

	return query, args
}

// List returns matching activities, newest first.
func (r *ActivityRepository) List(filter *model.ActivityFilter) ([]model.Activity, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	query := `SELECT id, kind, camera_id, actor, detail, occurred_at FROM activities` + where +
		" ORDER BY occurred_at DESC, rowid DESC"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		var kind string
		if err := rows.Scan(&a.ID, &kind, &a.CameraID, &a.Actor, &a.Detail, &a.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Kind = model.ActivityKind(kind)
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

// Count returns the number of matching activities, ignoring Limit.
func (r *ActivityRepository) Count(filter *model.ActivityFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM activities`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// DeleteBefore removes activities older than cutoff.
func (r *ActivityRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`DELETE FROM activities WHERE occurred_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete activities: %w", err)
	}
	return result.RowsAffected()
}
