package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/peterje/shelll/internal/models"
)

// InsertSession records a newly created session as running.
func InsertSession(database *sql.DB, rec models.SessionRecord) error {
	_, err := database.Exec(`INSERT INTO sessions (id, pid, shell, cwd, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PID, rec.Shell, rec.Cwd, models.StatusRunning, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", rec.ID, err)
	}
	return nil
}

// EndSession moves a running session to status. The first transition wins,
// so a close followed by the shell's exit stays "closed".
func EndSession(database *sql.DB, id, status string) error {
	_, err := database.Exec(`UPDATE sessions SET status = ?, ended_at = ? WHERE id = ? AND status = ?`,
		status, time.Now(), id, models.StatusRunning)
	if err != nil {
		return fmt.Errorf("end session %s: %w", id, err)
	}
	return nil
}

// ListSessions returns the most recent sessions, newest first.
func ListSessions(database *sql.DB, limit int) ([]models.SessionRecord, error) {
	rows, err := database.Query(`SELECT id, pid, shell, cwd, status, created_at, ended_at
		FROM sessions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.SessionRecord{}
	for rows.Next() {
		var s models.SessionRecord
		var ended sql.NullTime
		if err := rows.Scan(&s.ID, &s.PID, &s.Shell, &s.Cwd, &s.Status, &s.CreatedAt, &ended); err != nil {
			return nil, err
		}
		if ended.Valid {
			t := ended.Time
			s.EndedAt = &t
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CleanupStale marks sessions left running by a previous process as stopped.
func CleanupStale(database *sql.DB) (int64, error) {
	result, err := database.Exec(`UPDATE sessions SET status = ?, ended_at = ? WHERE status = ?`,
		models.StatusStopped, time.Now(), models.StatusRunning)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
