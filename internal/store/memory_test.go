package store

import (
	"context"
	"errors"
	"testing"

	"routesolver/internal/model"
)

func TestMemoryRunLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	req := model.SolveRequest{Jobs: []model.JobIn{{ID: "j1"}}, Vehicles: []model.VehicleIn{{ID: "v1"}}}
	id, err := m.CreateRun(ctx, req)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	r, err := m.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r.Status != "pending" || r.ID != id {
		t.Fatalf("unexpected run: %+v", r)
	}

	got, err := m.GetRequest(ctx, id)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if len(got.Jobs) != 1 || got.Jobs[0].ID != "j1" {
		t.Fatalf("request not preserved: %+v", got)
	}

	if err := m.SetRunStatus(ctx, id, "running", ""); err != nil {
		t.Fatalf("SetRunStatus: %v", err)
	}
	sol := model.SolutionOut{Routes: []model.RouteOut{{VehicleID: "v1", JobIDs: []string{"j1"}}}, Cost: 12.5}
	stats := model.RunStats{Generations: 10, BestCost: 12.5}
	if err := m.SaveResult(ctx, id, sol, stats); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	r, err = m.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r.Status != "done" || r.Solution == nil || r.Stats == nil {
		t.Fatalf("terminal run incomplete: %+v", r)
	}
	if r.Solution.Cost != 12.5 || r.Stats.Generations != 10 {
		t.Fatalf("result not preserved: %+v", r)
	}
}

func TestMemoryNotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if _, err := m.GetRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := m.SetRunStatus(ctx, "missing", "running", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := m.SaveResult(ctx, "missing", model.SolutionOut{}, model.RunStats{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestMemoryListRunsPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ids := make([]string, 5)
	for i := range ids {
		id, err := m.CreateRun(ctx, model.SolveRequest{})
		if err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
		ids[i] = id
	}
	page1, next, err := m.ListRuns(ctx, "", "", 3)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(page1) != 3 || next == "" {
		t.Fatalf("page1: %d items, next=%q", len(page1), next)
	}
	// newest first
	if page1[0].ID != ids[4] {
		t.Fatalf("expected newest run first, got %s", page1[0].ID)
	}
	page2, next, err := m.ListRuns(ctx, "", next, 3)
	if err != nil {
		t.Fatalf("ListRuns page2: %v", err)
	}
	if len(page2) != 2 || next != "" {
		t.Fatalf("page2: %d items, next=%q", len(page2), next)
	}

	if err := m.SetRunStatus(ctx, ids[0], "done", ""); err != nil {
		t.Fatalf("SetRunStatus: %v", err)
	}
	done, _, err := m.ListRuns(ctx, "done", "", 10)
	if err != nil {
		t.Fatalf("ListRuns done: %v", err)
	}
	if len(done) != 1 || done[0].ID != ids[0] {
		t.Fatalf("status filter broken: %+v", done)
	}
}
