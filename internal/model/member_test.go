package model

import "testing"

func TestAssigneeNames(t *testing.T) {
	members := []*TeamMember{
		{ID: 3, Name: "Ana", LastName: "Rojas"},
		{ID: 4, Name: "Luis", LastName: "Vega"},
	}
	refs := []UserRef{{ID: 4}, {ID: 99}, {ID: 3}}

	got := AssigneeNames(refs, members)
	want := []string{"Luis Vega", UnassignedName, "Ana Rojas"}
	if len(got) != len(want) {
		t.Fatalf("AssigneeNames returned %d names, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AssigneeNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFullNameTrims(t *testing.T) {
	m := &TeamMember{Name: "Ana"}
	if m.FullName() != "Ana" {
		t.Errorf("FullName() = %q, want %q", m.FullName(), "Ana")
	}
}

func TestFindSprint(t *testing.T) {
	sprints := []*Sprint{{ID: 1, Title: "Sprint 1"}, {ID: 7, Title: "Sprint 2"}}
	if s := FindSprint(sprints, 7); s == nil || s.Title != "Sprint 2" {
		t.Errorf("FindSprint(7) = %v, want Sprint 2", s)
	}
	if FindSprint(sprints, 8) != nil {
		t.Error("FindSprint(8) should be nil")
	}
}
