package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/jeryldev/sprintboard/internal/board"
	"github.com/jeryldev/sprintboard/internal/model"
)

func TestBootstrapUsesSavedSprint(t *testing.T) {
	remote := newFakeRemote()
	st := newFakeStore()
	st.selection[5] = 2
	app := NewApp(remote, Options{GroupID: 5, Store: st})
	t.Cleanup(app.cancel)

	resolve(t, app, app.bootstrap())

	if app.sync.SprintID() != 2 {
		t.Errorf("SprintID() = %d, want saved sprint 2", app.sync.SprintID())
	}
	if _, ok := st.snapshots[2]; !ok {
		t.Error("a successful load should save a snapshot")
	}
}

func TestBootstrapIgnoresUnknownSavedSprint(t *testing.T) {
	remote := newFakeRemote()
	st := newFakeStore()
	st.selection[5] = 99
	app := NewApp(remote, Options{GroupID: 5, Store: st})
	t.Cleanup(app.cancel)

	resolve(t, app, app.bootstrap())

	if app.sync.SprintID() != 1 {
		t.Errorf("SprintID() = %d, want first sprint", app.sync.SprintID())
	}
}

func TestBootstrapWithoutSprintsOpensPicker(t *testing.T) {
	remote := newFakeRemote()
	remote.sprints = nil
	app := NewApp(remote, Options{GroupID: 5})
	t.Cleanup(app.cancel)

	resolve(t, app, app.bootstrap())

	if app.mode != modePicker {
		t.Errorf("mode = %d, want modePicker (%d)", app.mode, modePicker)
	}
	if !strings.Contains(app.View(), "no sprints") {
		t.Error("picker should say the group has no sprints")
	}
}

func TestBootstrapSprintFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.sprintsErr = errUnavailable
	app := NewApp(remote, Options{GroupID: 5})
	t.Cleanup(app.cancel)

	resolve(t, app, app.bootstrap())

	if app.mode != modeLoading {
		t.Errorf("mode = %d, want modeLoading", app.mode)
	}
	if app.err == nil {
		t.Fatal("expected bootstrap error")
	}
	if !strings.Contains(app.View(), "r: retry") {
		t.Error("loading view should offer a retry")
	}

	remote.sprintsErr = nil
	press(t, app, "r")
	if app.mode != modeBoard {
		t.Errorf("mode after retry = %d, want modeBoard", app.mode)
	}
}

func TestBootstrapMembersFailureIsNotFatal(t *testing.T) {
	remote := newFakeRemote()
	remote.membersErr = errUnavailable
	app := NewApp(remote, Options{GroupID: 5})
	t.Cleanup(app.cancel)

	resolve(t, app, app.bootstrap())

	if app.mode != modeBoard {
		t.Fatalf("mode = %d, want modeBoard", app.mode)
	}
	names := model.AssigneeNames(app.sync.Columns().Tasks(model.StatusTodo)[0].AssignedTo, app.members)
	if len(names) != 1 || names[0] != model.UnassignedName {
		t.Errorf("names = %v, want [%s]", names, model.UnassignedName)
	}
}

func TestPickerSelectsAndSavesSprint(t *testing.T) {
	remote := newFakeRemote()
	st := newFakeStore()
	app := NewApp(remote, Options{GroupID: 5, Store: st})
	t.Cleanup(app.cancel)
	resolve(t, app, app.bootstrap())

	press(t, app, "s")
	if app.mode != modePicker {
		t.Fatalf("mode = %d, want modePicker", app.mode)
	}
	press(t, app, "j", "enter")

	if app.mode != modeBoard {
		t.Errorf("mode = %d, want modeBoard", app.mode)
	}
	if app.sync.SprintID() != 2 {
		t.Errorf("SprintID() = %d, want 2", app.sync.SprintID())
	}
	if st.selection[5] != 2 {
		t.Errorf("saved selection = %d, want 2", st.selection[5])
	}
	if app.sync.Columns().Count() != 0 {
		t.Errorf("sprint 2 should be empty, got %d tasks", app.sync.Columns().Count())
	}
}

func TestPickerFilter(t *testing.T) {
	app, _ := testApp(t)
	app.openPicker()

	press(t, app, "/", "2", "enter")

	visible := app.filteredSprints()
	if len(visible) != 1 || visible[0].ID != 2 {
		t.Errorf("filteredSprints() = %d sprints, want only sprint 2", len(visible))
	}
}

func TestPickerEscReturnsToBoard(t *testing.T) {
	app, _ := testApp(t)
	app.openPicker()

	press(t, app, "esc")

	if app.mode != modeBoard {
		t.Errorf("mode = %d, want modeBoard", app.mode)
	}
}

func TestToastExpires(t *testing.T) {
	app, _ := testApp(t)
	app.notify(board.Notice{Level: board.LevelInfo, Message: "hello"})
	first := app.toast.id
	app.notify(board.Notice{Level: board.LevelInfo, Message: "again"})

	app.Update(toastExpiredMsg{id: first})
	if app.toast == nil {
		t.Fatal("an older toast expiring should not clear the newer one")
	}

	app.Update(toastExpiredMsg{id: app.toast.id})
	if app.toast != nil {
		t.Error("toast should be cleared")
	}
}

func TestNotifySchedulesExpiry(t *testing.T) {
	app, _ := testApp(t)
	app.toastTTL = time.Millisecond
	app.pending = nil

	_, cmd := app.Update(toastExpiredMsg{})
	if cmd != nil {
		t.Error("no pending toast, no command expected")
	}

	app.board.focusCol = 2
	_, cmd = app.Update(key("e"))
	if cmd == nil {
		t.Fatal("a notice should schedule its expiry")
	}
	if len(app.pending) != 0 {
		t.Error("pending commands should be flushed by Update")
	}
}

func TestUserPolled(t *testing.T) {
	app, _ := testApp(t)
	u := &model.User{ID: 3, Name: "Luis"}

	app.handleUserPolled(userPolledMsg{user: u, changed: true})
	if app.user != u {
		t.Error("changed user should be shown")
	}

	app.handleUserPolled(userPolledMsg{err: errUnavailable})
	if app.user != u {
		t.Error("a failed poll should keep the last user")
	}
}
