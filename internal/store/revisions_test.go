package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/erazemk/taller/internal/db"
	"github.com/erazemk/taller/internal/model"
	"github.com/erazemk/taller/internal/revision"
)

func testRevisionState() revision.State {
	var s revision.State
	s.LoadCategories([]model.Category{{
		Name:  "Frenos",
		Items: []model.Item{{Code: "A1", Name: "Pastillas"}, {Code: "A2", Name: "Discos"}},
	}})
	s.Activate("A1")
	s.Deactivate("A2")
	s.AddImage("A2", "/api/photos/1")
	return s
}

func TestSaveAndGetRevision(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	state := testRevisionState()
	saved, err := SaveRevision(ctx, database, "E1", 42, state)
	if err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}
	if saved.ItemsTotal != 2 || saved.ItemsFailed != 1 || saved.Photos != 1 {
		t.Errorf("unexpected counts %d/%d/%d", saved.ItemsTotal, saved.ItemsFailed, saved.Photos)
	}

	got, err := GetRevision(ctx, database, "E1", saved.ID)
	if err != nil {
		t.Fatalf("GetRevision: %v", err)
	}
	if got == nil {
		t.Fatal("expected revision")
	}
	if got.CitaCode != 42 || got.EmpCode != "E1" {
		t.Errorf("unexpected revision %+v", got)
	}

	var decoded revision.State
	if err := json.Unmarshal(got.State, &decoded); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if diff := cmp.Diff(state, decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestGetRevisionOtherEmployee(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	saved, _ := SaveRevision(ctx, database, "E1", 0, testRevisionState())

	got, err := GetRevision(ctx, database, "E2", saved.ID)
	if err != nil {
		t.Fatalf("GetRevision: %v", err)
	}
	if got != nil {
		t.Error("expected revision to be hidden from another employee")
	}
}

func TestListRevisions(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := SaveRevision(ctx, database, "E1", 1, testRevisionState())
	second, _ := SaveRevision(ctx, database, "E1", 0, revision.State{})
	SaveRevision(ctx, database, "E2", 3, testRevisionState())

	list, err := ListRevisions(ctx, database, "E1")
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("expected newest first, got %s, %s", list[0].ID, list[1].ID)
	}
	if list[0].CitaCode != 0 {
		t.Errorf("expected no cita, got %d", list[0].CitaCode)
	}
	if list[1].State != nil {
		t.Error("expected list entries without state")
	}
}
