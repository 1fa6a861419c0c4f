package shape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nemt-route-service/internal/metrics"
)

type routeResponse struct {
	Routes []struct {
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// OSRMShaper fetches a road-following shape for ordered waypoints from an
// OSRM route endpoint, returned as an encoded polyline. Callers fall back
// to straight segments when this fails.
type OSRMShaper struct {
	session *http.Client
	baseURL string
}

func NewOSRMShaper(baseURL string) *OSRMShaper {
	return &OSRMShaper{
		session: &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchShape implements ports.RouteShaper. Waypoints are [lon, lat] pairs
// in stop order; the first route candidate's geometry wins.
func (o *OSRMShaper) FetchShape(ctx context.Context, waypoints [][]float64) (string, error) {
	if len(waypoints) < 2 {
		return "", errors.New("fetch shape: need at least two waypoints")
	}

	parts := make([]string, 0, len(waypoints))
	for _, wp := range waypoints {
		if len(wp) != 2 {
			return "", fmt.Errorf("fetch shape: malformed waypoint %v", wp)
		}
		parts = append(parts,
			strconv.FormatFloat(wp[0], 'f', -1, 64)+","+strconv.FormatFloat(wp[1], 'f', -1, 64))
	}

	url := fmt.Sprintf(
		"%s/route/v1/driving/%s?overview=full&geometries=polyline",
		o.baseURL, strings.Join(parts, ";"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch shape: create request: %w", err)
	}

	resp, err := o.session.Do(req)
	if err != nil {
		metrics.ShapeRequests.WithLabelValues("fallback").Inc()
		return "", fmt.Errorf("fetch shape: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ShapeRequests.WithLabelValues("fallback").Inc()
		return "", fmt.Errorf("fetch shape: unexpected status %d", resp.StatusCode)
	}

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.ShapeRequests.WithLabelValues("fallback").Inc()
		return "", fmt.Errorf("fetch shape: decode response: %w", err)
	}

	if len(decoded.Routes) == 0 {
		metrics.ShapeRequests.WithLabelValues("fallback").Inc()
		return "", errors.New("fetch shape: no route candidates")
	}

	metrics.ShapeRequests.WithLabelValues("ok").Inc()
	return decoded.Routes[0].Geometry, nil
}
