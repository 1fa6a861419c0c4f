package ports

import (
	"context"

	"nemt-route-service/internal/domain"
)

// Solver posts one assembled request to the external routing solver.
// Any error is terminal for the run; callers surface "optimization failed"
// and never retry automatically.
type Solver interface {
	Solve(ctx context.Context, req *domain.SolverRequest) (*domain.Solution, error)
}
