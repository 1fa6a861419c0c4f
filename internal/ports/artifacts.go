package ports

import (
	"context"

	"nemt-route-service/internal/domain"
)

// RunArtifacts are the archival snapshots of one pipeline run. They are
// write-once and never read back by the pipeline.
type RunArtifacts struct {
	Vehicles  []domain.SolverVehicle
	Jobs      []domain.SolverJob
	Shipments []domain.SolverShipment
	Errors    domain.ErrorSet
	Request   *domain.SolverRequest
	Solution  *domain.Solution
}

// ArtifactStore persists run artifacts per session id.
type ArtifactStore interface {
	SaveRun(ctx context.Context, sessionID string, run *RunArtifacts) error
}
