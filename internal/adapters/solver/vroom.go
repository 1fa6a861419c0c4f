package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/metrics"
	"nemt-route-service/internal/platform/obs"
)

// VroomClient posts one batched optimization request per run to a
// VROOM-compatible solver. A failed call is terminal for the run: the
// caller surfaces "optimization failed" and waits for an explicit
// re-trigger; there is no automatic retry.
type VroomClient struct {
	session *http.Client
	baseURL string
}

func NewVroomClient(baseURL string) (*VroomClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("solver URL is empty")
	}

	return &VroomClient{
		// Cold-cache solves over large batches are slow; give the solver room.
		session: &http.Client{Timeout: 120 * time.Second},
		baseURL: baseURL,
	}, nil
}

func (c *VroomClient) Solve(ctx context.Context, req *domain.SolverRequest) (_ *domain.Solution, err error) {
	defer obs.Time(ctx, "solver.solve")(&err)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("solve: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("solve: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(httpReq)
	if err != nil {
		metrics.SolverRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("solve: post request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("solver rejected request status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
		metrics.SolverRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("solve: solver returned status %d", resp.StatusCode)
	}

	var solution domain.Solution
	if err := json.NewDecoder(resp.Body).Decode(&solution); err != nil {
		metrics.SolverRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("solve: decode solution: %w", err)
	}

	metrics.SolverRequests.WithLabelValues("ok").Inc()
	return &solution, nil
}
