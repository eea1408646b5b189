package board

import "github.com/jeryldev/sprintboard/internal/model"

// Columns holds the ordered tasks of the three fixed board columns. Order
// within a column is render position only.
type Columns struct {
	lists [3][]*model.Task
}

func NewColumns() *Columns {
	return &Columns{}
}

// Tasks returns the column's tasks. The slice must not be modified.
func (c *Columns) Tasks(status model.Status) []*model.Task {
	i := status.Index()
	if i < 0 {
		return nil
	}
	return c.lists[i]
}

func (c *Columns) Len(status model.Status) int {
	return len(c.Tasks(status))
}

func (c *Columns) Count() int {
	n := 0
	for _, l := range c.lists {
		n += len(l)
	}
	return n
}

// All returns every task in column order.
func (c *Columns) All() []*model.Task {
	all := make([]*model.Task, 0, c.Count())
	for _, l := range c.lists {
		all = append(all, l...)
	}
	return all
}

func (c *Columns) Reset() {
	c.lists = [3][]*model.Task{}
}

// Replace partitions tasks into the columns by status, keeping their
// relative order. Tasks with an unknown status are returned and not placed.
func (c *Columns) Replace(tasks []*model.Task) (dropped []*model.Task) {
	var lists [3][]*model.Task
	for _, t := range tasks {
		i := t.Status.Index()
		if i < 0 {
			dropped = append(dropped, t)
			continue
		}
		lists[i] = append(lists[i], t)
	}
	c.lists = lists
	return dropped
}

// Find locates a task by id with a linear scan over all columns.
func (c *Columns) Find(id int64) (model.Status, int, *model.Task) {
	for ci, l := range c.lists {
		for ti, t := range l {
			if t.ID == id {
				return model.Statuses[ci], ti, t
			}
		}
	}
	return "", -1, nil
}

func (c *Columns) Append(status model.Status, t *model.Task) {
	c.Insert(status, c.Len(status), t)
}

// Insert places t at index, clamped to the column bounds.
func (c *Columns) Insert(status model.Status, index int, t *model.Task) {
	i := status.Index()
	if i < 0 {
		return
	}
	l := c.lists[i]
	index = max(0, min(index, len(l)))
	out := make([]*model.Task, 0, len(l)+1)
	out = append(out, l[:index]...)
	out = append(out, t)
	out = append(out, l[index:]...)
	c.lists[i] = out
}

func (c *Columns) Remove(id int64) (*model.Task, bool) {
	status, idx, t := c.Find(id)
	if t == nil {
		return nil, false
	}
	c.removeAt(status, idx)
	return t, true
}

func (c *Columns) removeAt(status model.Status, idx int) *model.Task {
	i := status.Index()
	l := c.lists[i]
	t := l[idx]
	out := make([]*model.Task, 0, len(l)-1)
	out = append(out, l[:idx]...)
	out = append(out, l[idx+1:]...)
	c.lists[i] = out
	return t
}

// ReplaceTask swaps the entry with t.ID for t. If t carries a different
// valid status the entry moves to the end of that column, so column
// membership keeps mirroring status.
func (c *Columns) ReplaceTask(t *model.Task) bool {
	status, idx, old := c.Find(t.ID)
	if old == nil {
		return false
	}
	if !t.Status.Valid() {
		t.Status = status
	}
	if t.Status == status {
		c.lists[status.Index()][idx] = t
		return true
	}
	c.removeAt(status, idx)
	c.Append(t.Status, t)
	return true
}

// move takes the task at src[srcIdx] out, stamps it with the destination
// status and inserts it at dstIdx clamped to the destination length. The
// moved entry is a copy, so views holding the old pointer are unaffected.
func (c *Columns) move(src model.Status, srcIdx int, dst model.Status, dstIdx int) *model.Task {
	moved := c.removeAt(src, srcIdx).Clone()
	moved.Status = dst
	c.Insert(dst, dstIdx, moved)
	return moved
}
