package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"routesolver/internal/model"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Migrate creates the runs table if missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS solve_runs (
    id         uuid PRIMARY KEY,
    status     text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT now(),
    error      text NOT NULL DEFAULT '',
    request    jsonb NOT NULL,
    stats      jsonb,
    solution   jsonb
);
CREATE INDEX IF NOT EXISTS solve_runs_status_idx ON solve_runs (status, created_at DESC);
`)
	return err
}

func (p *Postgres) CreateRun(ctx context.Context, req model.SolveRequest) (string, error) {
	id := uuid.New()
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO solve_runs (id, status, request) VALUES ($1, 'pending', $2)`, id, body)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (p *Postgres) GetRun(ctx context.Context, id string) (model.Run, error) {
	var r model.Run
	var stats, sol []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT id::text, status, to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'), error, stats, solution
         FROM solve_runs WHERE id=$1`, id).
		Scan(&r.ID, &r.Status, &r.CreatedAt, &r.Error, &stats, &sol)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	if err != nil {
		return model.Run{}, err
	}
	if len(stats) > 0 {
		r.Stats = &model.RunStats{}
		if err := json.Unmarshal(stats, r.Stats); err != nil {
			return model.Run{}, err
		}
	}
	if len(sol) > 0 {
		r.Solution = &model.SolutionOut{}
		if err := json.Unmarshal(sol, r.Solution); err != nil {
			return model.Run{}, err
		}
	}
	return r, nil
}

func (p *Postgres) GetRequest(ctx context.Context, id string) (model.SolveRequest, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx, `SELECT request FROM solve_runs WHERE id=$1`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolveRequest{}, ErrNotFound
	}
	if err != nil {
		return model.SolveRequest{}, err
	}
	var req model.SolveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return model.SolveRequest{}, err
	}
	return req, nil
}

func (p *Postgres) ListRuns(ctx context.Context, status, cursor string, limit int) ([]model.Run, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	// Cursor is the last seen id; created_at ordering with id tiebreak keeps
	// pages stable.
	var rows *sql.Rows
	var err error
	switch {
	case status != "" && cursor != "":
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, status, to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'), error
             FROM solve_runs WHERE status=$1 AND (created_at, id) < (SELECT created_at, id FROM solve_runs WHERE id=$2)
             ORDER BY created_at DESC, id DESC LIMIT $3`, status, cursor, limit)
	case status != "":
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, status, to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'), error
             FROM solve_runs WHERE status=$1 ORDER BY created_at DESC, id DESC LIMIT $2`, status, limit)
	case cursor != "":
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, status, to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'), error
             FROM solve_runs WHERE (created_at, id) < (SELECT created_at, id FROM solve_runs WHERE id=$1)
             ORDER BY created_at DESC, id DESC LIMIT $2`, cursor, limit)
	default:
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, status, to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"'), error
             FROM solve_runs ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Run{}
	var last string
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.Status, &r.CreatedAt, &r.Error); err != nil {
			return nil, "", err
		}
		out = append(out, r)
		last = r.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	var next string
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (p *Postgres) SetRunStatus(ctx context.Context, id, status, errMsg string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE solve_runs SET status=$2, error=$3 WHERE id=$1`, id, status, errMsg)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveResult(ctx context.Context, id string, sol model.SolutionOut, stats model.RunStats) error {
	solBody, err := json.Marshal(sol)
	if err != nil {
		return err
	}
	statsBody, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE solve_runs SET status='done', error='', solution=$2, stats=$3 WHERE id=$1`,
		id, solBody, statsBody)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
