package store

import (
	"context"
	"errors"

	"routesolver/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// CreateRun persists a new pending run and returns its id.
	CreateRun(ctx context.Context, req model.SolveRequest) (string, error)
	GetRun(ctx context.Context, id string) (model.Run, error)
	GetRequest(ctx context.Context, id string) (model.SolveRequest, error)
	ListRuns(ctx context.Context, status, cursor string, limit int) ([]model.Run, string, error)
	SetRunStatus(ctx context.Context, id, status, errMsg string) error
	// SaveResult stores the terminal solution and stats and marks the run done.
	SaveResult(ctx context.Context, id string, sol model.SolutionOut, stats model.RunStats) error
}

var ErrNotFound = errors.New("not found")
