package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"nemt-route-service/internal/domain"
)

func testPipeline(solver *stubSolver, store *stubStore) *Pipeline {
	pre := NewPreprocessor(newStubGeocoder(testCoords()), &stubMatrix{durationSec: 600, distanceM: 8000}, testPlanner())
	return NewPipeline(pre, solver, NewTranslator(&stubShaper{shape: "abc"}), store)
}

func jobsRunInput() RunInput {
	return RunInput{
		Mode:          domain.ModeJobs,
		OperatingDate: "2026-03-10",
		Vehicles: []domain.VehicleRow{
			{VehicleID: "V-1", Address: "10 Depot Way", Capacity: 4},
		},
		Trips: []domain.TripRow{
			{JobID: "T-1", PickupAddress: "100 Main St", EarliestPickup: "2026-03-10 09:00:00"},
		},
		UseCache:      true,
		SaveArtifacts: true,
	}
}

func TestRunProducesOutputAndArchives(t *testing.T) {
	arrival := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	solver := &stubSolver{solution: &domain.Solution{
		Routes: []domain.Route{{
			Vehicle: 0,
			Steps: []domain.Step{
				{Type: "start", Location: []float64{-84.50, 38.00}, Arrival: arrival.Unix()},
				{Type: "job", ID: intPtr(0), Location: []float64{-84.45, 38.05}, Arrival: arrival.Add(10 * time.Minute).Unix()},
				{Type: "end", Location: []float64{-84.50, 38.00}, Arrival: arrival.Add(20 * time.Minute).Unix()},
			},
		}},
	}}
	store := &stubStore{}

	out, err := testPipeline(solver, store).Run(context.Background(), jobsRunInput())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out.SessionID == "" {
		t.Fatal("missing generated session id")
	}
	if len(out.Routes) != 1 || out.Summary.Routes != 1 {
		t.Fatalf("unexpected output: %+v", out.Summary)
	}
	if out.Summary.Assigned != 1 || out.Summary.Unassigned != 0 {
		t.Fatalf("summary counts: %+v", out.Summary)
	}

	if solver.lastReq == nil {
		t.Fatal("solver never called")
	}
	if !solver.lastReq.Options.G || !solver.lastReq.Options.Geometry || solver.lastReq.Options.Format != "json" {
		t.Fatalf("solver options = %+v", solver.lastReq.Options)
	}
	if len(solver.lastReq.Jobs) != 1 || len(solver.lastReq.Shipments) != 0 {
		t.Fatal("jobs-mode request must carry jobs only")
	}

	if store.calls != 1 {
		t.Fatalf("archive calls = %d, want 1", store.calls)
	}
	if store.sessionID != out.SessionID {
		t.Fatalf("archived under %q, run was %q", store.sessionID, out.SessionID)
	}
	if store.run.Solution == nil || store.run.Request == nil {
		t.Fatal("archive missing request or solution")
	}
}

func TestRunSolverFailureIsTerminal(t *testing.T) {
	solver := &stubSolver{err: errors.New("HTTP 500")}
	store := &stubStore{}

	out, err := testPipeline(solver, store).Run(context.Background(), jobsRunInput())
	if !errors.Is(err, ErrOptimizationFailed) {
		t.Fatalf("err = %v, want ErrOptimizationFailed", err)
	}
	if out != nil {
		t.Fatalf("failed run must not produce partial output: %+v", out)
	}

	// The preprocessed half and the request are still archived.
	if store.calls != 1 {
		t.Fatalf("archive calls = %d, want 1", store.calls)
	}
	if store.run.Solution != nil {
		t.Fatal("failed run must not archive a solution")
	}
	if store.run.Request == nil {
		t.Fatal("failed run should still archive the request")
	}
}

func TestRunFailsWhenNothingSurvivesPreprocessing(t *testing.T) {
	in := jobsRunInput()
	in.Trips[0].PickupAddress = "1 Nowhere Ln"

	_, err := testPipeline(&stubSolver{}, &stubStore{}).Run(context.Background(), in)
	if !errors.Is(err, ErrNoRoutableRecords) {
		t.Fatalf("err = %v, want ErrNoRoutableRecords", err)
	}
}

func TestRunKeepsCallerSessionID(t *testing.T) {
	in := jobsRunInput()
	in.SessionID = "run-7"
	in.SaveArtifacts = false

	solver := &stubSolver{solution: &domain.Solution{}}
	store := &stubStore{}

	out, err := testPipeline(solver, store).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.SessionID != "run-7" {
		t.Fatalf("session id = %q", out.SessionID)
	}
	if store.calls != 0 {
		t.Fatal("artifacts saved despite SaveArtifacts=false")
	}
}
