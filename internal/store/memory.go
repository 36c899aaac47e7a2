package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"routesolver/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu   sync.Mutex
	runs map[string]model.Run          // id -> run
	reqs map[string]model.SolveRequest // id -> original request
	ord  []string                      // ids in creation order
}

func NewMemory() *Memory {
	return &Memory{
		runs: map[string]model.Run{},
		reqs: map[string]model.SolveRequest{},
	}
}

func (m *Memory) CreateRun(ctx context.Context, req model.SolveRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.runs[id] = model.Run{ID: id, Status: "pending", CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	m.reqs[id] = req
	m.ord = append(m.ord, id)
	return id, nil
}

func (m *Memory) GetRun(ctx context.Context, id string) (model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return model.Run{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) GetRequest(ctx context.Context, id string) (model.SolveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.reqs[id]
	if !ok {
		return model.SolveRequest{}, ErrNotFound
	}
	return req, nil
}

func (m *Memory) ListRuns(ctx context.Context, status, cursor string, limit int) ([]model.Run, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	// newest first
	ids := make([]string, 0, len(m.ord))
	for i := len(m.ord) - 1; i >= 0; i-- {
		ids = append(ids, m.ord[i])
	}
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	out := []model.Run{}
	var last, next string
	for _, id := range ids[start:] {
		r := m.runs[id]
		if status != "" && r.Status != status {
			continue
		}
		if len(out) == limit {
			next = last
			break
		}
		out = append(out, r)
		last = id
	}
	return out, next, nil
}

func (m *Memory) SetRunStatus(ctx context.Context, id, status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	r.Error = errMsg
	m.runs[id] = r
	return nil
}

func (m *Memory) SaveResult(ctx context.Context, id string, sol model.SolutionOut, stats model.RunStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = "done"
	r.Error = ""
	r.Solution = &sol
	r.Stats = &stats
	m.runs[id] = r
	return nil
}
