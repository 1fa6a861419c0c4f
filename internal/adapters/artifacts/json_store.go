package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"nemt-route-service/internal/ports"
)

// JSONStore archives each run's intermediate and final artifacts as
// pretty-printed JSON files under two directories, keyed by session id.
// Preprocessing output goes to preprocessedDir, the solver exchange and
// the raw solution to solutionDir.
type JSONStore struct {
	preprocessedDir string
	solutionDir     string
}

func NewJSONStore(preprocessedDir, solutionDir string) (*JSONStore, error) {
	for _, dir := range []string{preprocessedDir, solutionDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("artifact store: create %s: %w", dir, err)
		}
	}
	return &JSONStore{preprocessedDir: preprocessedDir, solutionDir: solutionDir}, nil
}

// SaveRun writes every non-nil artifact. A failed write does not stop the
// others; all failures come back aggregated so the caller can log them
// without losing the run itself.
func (s *JSONStore) SaveRun(ctx context.Context, sessionID string, run *ports.RunArtifacts) error {
	var result *multierror.Error

	write := func(dir, suffix string, v any) {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			return
		}
		if err := s.writeFile(filepath.Join(dir, sessionID+suffix), v); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if run.Vehicles != nil {
		write(s.preprocessedDir, "_vehicles.json", run.Vehicles)
	}
	if run.Jobs != nil {
		write(s.preprocessedDir, "_jobs.json", run.Jobs)
	}
	if run.Shipments != nil {
		write(s.preprocessedDir, "_shipments.json", run.Shipments)
	}
	if run.Errors != nil {
		write(s.preprocessedDir, "_errors.json", run.Errors)
	}
	if run.Request != nil {
		write(s.solutionDir, "_request.json", run.Request)
	}
	if run.Solution != nil {
		write(s.solutionDir, "_solution.json", run.Solution)
	}

	return result.ErrorOrNil()
}

func (s *JSONStore) writeFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact store: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("artifact store: write %s: %w", filepath.Base(path), err)
	}
	return nil
}
