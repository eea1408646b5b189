package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/jeryldev/sprintboard/internal/model"
)

var ErrNoSnapshot = errors.New("no saved tasks for this sprint")

// Snapshot is the last task list loaded for a sprint.
type Snapshot struct {
	SprintID  int64
	Tasks     []*model.Task
	FetchedAt time.Time
}

func (d *DB) SaveSnapshot(sprintID int64, tasks []*model.Task) error {
	if tasks == nil {
		tasks = []*model.Task{}
	}
	payload, err := sonic.MarshalString(tasks)
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}

	_, err = d.conn.Exec(`
		INSERT INTO task_snapshots (sprint_id, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(sprint_id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		sprintID, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (d *DB) Snapshot(sprintID int64) (*Snapshot, error) {
	var payload string
	snap := &Snapshot{SprintID: sprintID}
	err := d.conn.QueryRow(
		"SELECT payload, fetched_at FROM task_snapshots WHERE sprint_id = ?", sprintID,
	).Scan(&payload, &snap.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	if err := sonic.UnmarshalString(payload, &snap.Tasks); err != nil {
		return nil, fmt.Errorf("decoding snapshot for sprint %d: %w", sprintID, err)
	}
	return snap, nil
}
