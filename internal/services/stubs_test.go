package services

import (
	"context"
	"errors"
	"strings"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/ports"
)

// stubGeocoder resolves from a fixed table; unknown addresses are absent.
// A blank address is a hard error, matching the real adapter.
type stubGeocoder struct {
	coords map[string]domain.Coordinates
	calls  map[string]int
}

func newStubGeocoder(coords map[string]domain.Coordinates) *stubGeocoder {
	return &stubGeocoder{coords: coords, calls: map[string]int{}}
}

func (s *stubGeocoder) Resolve(_ context.Context, address string, _ bool) (*domain.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errors.New("resolve geocode: address must be non-empty")
	}
	s.calls[address]++
	if geo, ok := s.coords[address]; ok {
		return &geo, nil
	}
	return nil, nil
}

// stubMatrix returns uniform off-diagonal tables sized to the input.
type stubMatrix struct {
	durationSec float64
	distanceM   float64
	calls       int
}

func (s *stubMatrix) FetchMatrix(_ context.Context, locations []domain.Coordinates) (*ports.MatrixResult, error) {
	s.calls++
	n := len(locations)
	res := &ports.MatrixResult{
		DistanceMeters:  make([][]*float64, n),
		DurationSeconds: make([][]*float64, n),
	}
	for i := 0; i < n; i++ {
		res.DistanceMeters[i] = make([]*float64, n)
		res.DurationSeconds[i] = make([]*float64, n)
		for j := 0; j < n; j++ {
			var dist, dur float64
			if i != j {
				dist, dur = s.distanceM, s.durationSec
			}
			d, t := dist, dur
			res.DistanceMeters[i][j] = &d
			res.DurationSeconds[i][j] = &t
		}
	}
	return res, nil
}

type stubSolver struct {
	solution *domain.Solution
	err      error
	lastReq  *domain.SolverRequest
}

func (s *stubSolver) Solve(_ context.Context, req *domain.SolverRequest) (*domain.Solution, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.solution, nil
}

type stubShaper struct {
	shape string
	fail  bool
	calls int
}

func (s *stubShaper) FetchShape(_ context.Context, _ [][]float64) (string, error) {
	s.calls++
	if s.fail {
		return "", errors.New("shape unavailable")
	}
	return s.shape, nil
}

type stubStore struct {
	sessionID string
	run       *ports.RunArtifacts
	calls     int
}

func (s *stubStore) SaveRun(_ context.Context, sessionID string, run *ports.RunArtifacts) error {
	s.calls++
	s.sessionID = sessionID
	s.run = run
	return nil
}
