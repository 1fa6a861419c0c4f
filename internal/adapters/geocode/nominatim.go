package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/metrics"
	"nemt-route-service/internal/platform/obs"
	"nemt-route-service/internal/ports"
)

const userAgent = "NEMTRouteService/1.0"

// candidate is one geocoder result; the API encodes coordinates as strings.
type candidate struct {
	Lon string `json:"lon"`
	Lat string `json:"lat"`
}

// Nominatim resolves addresses against a Nominatim-compatible search
// endpoint, consulting and populating the injected address cache. A cached
// negative is returned without retrying; zero candidates and HTTP failures
// both cache a negative to bound call volume toward the public API.
type Nominatim struct {
	session *http.Client
	baseURL string
	cache   ports.AddressCache
	limiter *rate.Limiter
}

// NewNominatim builds the geocoder. rps caps outbound lookups; the public
// endpoint tolerates at most one request per second.
func NewNominatim(baseURL string, cache ports.AddressCache, rps float64) *Nominatim {
	if rps <= 0 {
		rps = 1
	}
	return &Nominatim{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (n *Nominatim) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Resolve implements ports.Geocoder. The first candidate wins. A nil result
// with nil error means the address is unresolvable for this run.
func (n *Nominatim) Resolve(ctx context.Context, address string, useCache bool) (_ *domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.resolve")(&err)

	norm := n.normalize(address)
	if norm == "" {
		return nil, fmt.Errorf("resolve geocode: address must be non-empty")
	}

	if useCache && n.cache != nil {
		geo, present, err := n.cache.Get(ctx, norm)
		if err != nil {
			return nil, fmt.Errorf("resolve geocode: cache get %q: %w", norm, err)
		}
		if present {
			if geo == nil {
				metrics.GeocodeLookups.WithLabelValues("negative_hit").Inc()
			} else {
				metrics.GeocodeLookups.WithLabelValues("hit").Inc()
			}
			return geo, nil
		}
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("resolve geocode: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search", nil)
	if err != nil {
		return nil, fmt.Errorf("resolve geocode: create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("format", "json")
	q.Set("q", norm)
	req.URL.RawQuery = q.Encode()

	resp, err := n.session.Do(req)
	if err != nil {
		log.Printf("geocode lookup failed addr=%q err=%v", norm, err)
		n.cacheNegative(ctx, norm, useCache)
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("geocode lookup failed addr=%q status=%d body=%s", norm, resp.StatusCode, strings.TrimSpace(string(body)))
		n.cacheNegative(ctx, norm, useCache)
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, nil
	}

	var candidates []candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		log.Printf("geocode decode failed addr=%q err=%v", norm, err)
		n.cacheNegative(ctx, norm, useCache)
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, nil
	}

	if len(candidates) == 0 {
		n.cacheNegative(ctx, norm, useCache)
		metrics.GeocodeLookups.WithLabelValues("not_found").Inc()
		return nil, nil
	}

	coords, err := domain.ParseLonLat(candidates[0].Lon, candidates[0].Lat)
	if err != nil {
		log.Printf("geocode candidate malformed addr=%q err=%v", norm, err)
		n.cacheNegative(ctx, norm, useCache)
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, nil
	}

	if useCache && n.cache != nil {
		if err := n.cache.Update(ctx, norm, &coords, ports.CacheHard); err != nil {
			log.Printf("geocode cache write failed addr=%q err=%v", norm, err)
		}
	}
	metrics.GeocodeLookups.WithLabelValues("resolved").Inc()

	return &coords, nil
}

func (n *Nominatim) cacheNegative(ctx context.Context, address string, useCache bool) {
	if !useCache || n.cache == nil {
		return
	}
	if err := n.cache.Update(ctx, address, nil, ports.CacheHard); err != nil {
		log.Printf("geocode cache write failed addr=%q err=%v", address, err)
	}
}
