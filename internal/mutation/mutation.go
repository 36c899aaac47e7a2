// Package mutation holds the composable search operators: ruin strategies
// remove assigned work from a candidate, recreate strategies reinsert the
// unassigned work, and composite mutations chain the two (or run local
// search) as one generation step.
package mutation

import (
	"errors"
	"fmt"

	"routesolver/internal/core"
)

// Ruin removes a strategy-chosen subset of assigned jobs from a candidate.
// The result keeps the same total job set; removed jobs move to unassigned.
type Ruin interface {
	Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution
}

// Recreate reinserts unassigned jobs. It never fails: jobs with no feasible
// insertion stay unassigned and are penalized in fitness.
type Recreate interface {
	Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution
}

// Mutation is one generation step producing a new candidate from a parent.
// The only error it can return is a job-conservation violation, which is a
// correctness bug and aborts the run.
type Mutation interface {
	Run(ctx *core.RefinementContext, s *core.Solution) (*core.Solution, error)
}

// ErrInvariantViolation reports a ruin/recreate pair that lost or duplicated
// a job.
var ErrInvariantViolation = errors.New("mutation lost or duplicated jobs")

func checkConservation(before, after *core.Solution) error {
	if before.JobCount() != after.JobCount() {
		return fmt.Errorf("%w: %d jobs before, %d after", ErrInvariantViolation, before.JobCount(), after.JobCount())
	}
	seen := map[int]bool{}
	for _, j := range after.AssignedJobs() {
		if seen[j] {
			return fmt.Errorf("%w: job %d assigned twice", ErrInvariantViolation, j)
		}
		seen[j] = true
	}
	for _, j := range after.Unassigned {
		if seen[j] {
			return fmt.Errorf("%w: job %d both assigned and unassigned", ErrInvariantViolation, j)
		}
		seen[j] = true
	}
	return nil
}
