package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/platform/obs"
	"nemt-route-service/internal/ports"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// ORSMatrix fetches pairwise distance/duration tables from the
// OpenRouteService matrix endpoint in one batched call per preprocessing
// batch. Entries for unreachable pairs arrive as null and are passed
// through; accessors upstream treat them as absent.
type ORSMatrix struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
}

func NewORSMatrix(baseURL, apiKey string) (*ORSMatrix, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSMatrix{
		session: &http.Client{Timeout: 30 * time.Second},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving-car",
	}, nil
}

// FetchMatrix implements ports.MatrixAPI. Both tables are N×N, 0-indexed
// in the same order as the input coordinate list.
func (o *ORSMatrix) FetchMatrix(ctx context.Context, locations []domain.Coordinates) (_ *ports.MatrixResult, err error) {
	defer obs.Time(ctx, "matrix.fetch")(&err)

	if len(locations) == 0 {
		return nil, errors.New("fetch matrix: locations must be non-empty")
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	coords := make([][]float64, 0, len(locations))
	for _, c := range locations {
		coords = append(coords, c.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: coords,
		Metrics:   []string{"distance", "duration"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	n := len(locations)
	if len(mr.Distances) != n || len(mr.Durations) != n {
		return nil, fmt.Errorf(
			"expected %d rows; got distances=%d durations=%d",
			n, len(mr.Distances), len(mr.Durations),
		)
	}
	for i := 0; i < n; i++ {
		if len(mr.Distances[i]) != n || len(mr.Durations[i]) != n {
			return nil, fmt.Errorf(
				"row %d length mismatch: distances=%d durations=%d want %d",
				i, len(mr.Distances[i]), len(mr.Durations[i]), n,
			)
		}
	}

	return &ports.MatrixResult{
		DistanceMeters:  mr.Distances,
		DurationSeconds: mr.Durations,
	}, nil
}
