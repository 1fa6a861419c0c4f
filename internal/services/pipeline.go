package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/platform/obs"
	"nemt-route-service/internal/ports"
)

// ErrNoRoutableRecords means preprocessing dropped every vehicle or every
// task, so there is nothing to send to the solver.
var ErrNoRoutableRecords = errors.New("no routable records after preprocessing")

// ErrOptimizationFailed wraps a solver failure. It is terminal for the run;
// the caller re-triggers explicitly.
var ErrOptimizationFailed = errors.New("optimization failed")

// RunInput is one complete route-planning request.
type RunInput struct {
	SessionID     string
	Mode          domain.TaskMode
	OperatingDate string
	Vehicles      []domain.VehicleRow
	Trips         []domain.TripRow
	UseCache      bool
	SaveArtifacts bool
}

// RunOutput is the full result of one run: display output plus the
// per-record errors collected during preprocessing.
type RunOutput struct {
	SessionID  string                      `json:"session_id"`
	Summary    domain.DisplaySummary       `json:"summary"`
	Routes     []domain.RouteGeometry      `json:"routes"`
	Unassigned domain.UnassignedCollection `json:"unassigned"`
	Errors     domain.ErrorSet             `json:"errors"`
}

// Pipeline runs one synchronous planning pass: preprocess, solve, translate,
// archive. There is no cancellation mid-run beyond the context and no
// automatic retry of a failed solve.
type Pipeline struct {
	pre        *Preprocessor
	solver     ports.Solver
	translator *Translator
	store      ports.ArtifactStore
}

func NewPipeline(pre *Preprocessor, solver ports.Solver, translator *Translator, store ports.ArtifactStore) *Pipeline {
	return &Pipeline{pre: pre, solver: solver, translator: translator, store: store}
}

func (p *Pipeline) Run(ctx context.Context, in RunInput) (_ *RunOutput, err error) {
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx = obs.WithSession(ctx, sessionID)
	defer obs.Time(ctx, "pipeline.run")(&err)

	pre, err := p.pre.Run(ctx, PreprocessInput{
		Mode:          in.Mode,
		OperatingDate: in.OperatingDate,
		Vehicles:      in.Vehicles,
		Trips:         in.Trips,
		UseCache:      in.UseCache,
	})
	if err != nil {
		return nil, err
	}

	if len(pre.Vehicles) == 0 || (len(pre.Jobs) == 0 && len(pre.Shipments) == 0) {
		return nil, ErrNoRoutableRecords
	}

	req := &domain.SolverRequest{
		Vehicles:  pre.Vehicles,
		Jobs:      pre.Jobs,
		Shipments: pre.Shipments,
		Options:   domain.SolverOptions{G: true, Geometry: true, Format: "json"},
	}

	solution, solveErr := p.solver.Solve(ctx, req)

	if in.SaveArtifacts {
		p.archive(ctx, sessionID, pre, req, solution)
	}

	if solveErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrOptimizationFailed, solveErr)
	}

	translated := p.translator.Translate(ctx, in.Mode, solution, pre)

	return &RunOutput{
		SessionID:  sessionID,
		Summary:    translated.Summary,
		Routes:     translated.Routes,
		Unassigned: translated.Unassigned,
		Errors:     pre.Errors,
	}, nil
}

// archive is best-effort: a failed write is logged, never fails the run.
func (p *Pipeline) archive(ctx context.Context, sessionID string, pre *PreprocessResult, req *domain.SolverRequest, solution *domain.Solution) {
	if p.store == nil {
		return
	}
	err := p.store.SaveRun(ctx, sessionID, &ports.RunArtifacts{
		Vehicles:  pre.Vehicles,
		Jobs:      pre.Jobs,
		Shipments: pre.Shipments,
		Errors:    pre.Errors,
		Request:   req,
		Solution:  solution,
	})
	if err != nil {
		log.Printf("session=%s archive failed: %v", sessionID, err)
	}
}
