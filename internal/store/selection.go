package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SprintSelection returns the sprint last chosen for groupID. ok is false
// when nothing was stored.
func (d *DB) SprintSelection(groupID int64) (sprintID int64, ok bool, err error) {
	err = d.conn.QueryRow(
		"SELECT sprint_id FROM sprint_selections WHERE group_id = ?", groupID,
	).Scan(&sprintID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying sprint selection: %w", err)
	}
	return sprintID, true, nil
}

func (d *DB) SaveSprintSelection(groupID, sprintID int64) error {
	_, err := d.conn.Exec(`
		INSERT INTO sprint_selections (group_id, sprint_id, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(group_id) DO UPDATE SET sprint_id = excluded.sprint_id, updated_at = excluded.updated_at`,
		groupID, sprintID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving sprint selection: %w", err)
	}
	return nil
}
