package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeryldev/sprintboard/internal/model"
)

func TestReplacePartitionsByStatus(t *testing.T) {
	c := NewColumns()
	dropped := c.Replace([]*model.Task{
		task(1, model.StatusTodo),
		task(2, model.StatusDone),
		task(3, "review"),
		task(4, model.StatusTodo),
	})

	assert.Equal(t, []int64{1, 4}, ids(c.Tasks(model.StatusTodo)))
	assert.Empty(t, c.Tasks(model.StatusInProgress))
	assert.Equal(t, []int64{2}, ids(c.Tasks(model.StatusDone)))
	assert.Equal(t, []int64{3}, ids(dropped))
	assert.Equal(t, 3, c.Count())
}

func TestInsertClampsIndex(t *testing.T) {
	c := NewColumns()
	c.Append(model.StatusTodo, task(1, model.StatusTodo))
	c.Insert(model.StatusTodo, 99, task(2, model.StatusTodo))
	c.Insert(model.StatusTodo, -3, task(3, model.StatusTodo))

	assert.Equal(t, []int64{3, 1, 2}, ids(c.Tasks(model.StatusTodo)))
}

func TestFindAndRemove(t *testing.T) {
	c := NewColumns()
	c.Replace([]*model.Task{task(1, model.StatusTodo), task(2, model.StatusInProgress)})

	status, idx, found := c.Find(2)
	assert.Equal(t, model.StatusInProgress, status)
	assert.Equal(t, 0, idx)
	assert.NotNil(t, found)

	_, ok := c.Remove(2)
	assert.True(t, ok)
	_, ok = c.Remove(2)
	assert.False(t, ok)
	assert.Empty(t, c.Tasks(model.StatusInProgress))
}

func TestReplaceTaskKeepsPositionOrMovesOnStatusChange(t *testing.T) {
	c := NewColumns()
	c.Replace([]*model.Task{task(1, model.StatusTodo), task(2, model.StatusTodo), task(3, model.StatusDone)})

	same := task(1, model.StatusTodo)
	same.Title = "renamed"
	assert.True(t, c.ReplaceTask(same))
	assert.Equal(t, "renamed", c.Tasks(model.StatusTodo)[0].Title)

	noStatus := task(2, "")
	assert.True(t, c.ReplaceTask(noStatus))
	assert.Equal(t, model.StatusTodo, c.Tasks(model.StatusTodo)[1].Status)

	moved := task(2, model.StatusDone)
	assert.True(t, c.ReplaceTask(moved))
	assert.Equal(t, []int64{1}, ids(c.Tasks(model.StatusTodo)))
	assert.Equal(t, []int64{3, 2}, ids(c.Tasks(model.StatusDone)))

	assert.False(t, c.ReplaceTask(task(42, model.StatusTodo)))
}

func TestUnknownStatusAccessors(t *testing.T) {
	c := NewColumns()
	c.Append("review", task(1, "review"))
	assert.Nil(t, c.Tasks("review"))
	assert.Zero(t, c.Count())
}
