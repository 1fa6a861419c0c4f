package services

import (
	"context"
	"log"
	"math"
	"time"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/platform/obs"
	"nemt-route-service/internal/ports"
)

// NoAddress is the placeholder shown when a solution step references an id
// the run never assigned. Such steps are flagged, never fatal.
const NoAddress = "No Address Provided"

const milesPerMeter = 0.000621371

// TranslationResult is the display-ready half of a run.
type TranslationResult struct {
	Summary    domain.DisplaySummary       `json:"summary"`
	Routes     []domain.RouteGeometry      `json:"routes"`
	Unassigned domain.UnassignedCollection `json:"unassigned"`
}

// Translator walks the solver's routes and unassigned list, re-attaches
// domain ids and addresses, converts units for display, and fetches a
// road-following shape per route.
type Translator struct {
	shaper ports.RouteShaper
}

func NewTranslator(shaper ports.RouteShaper) *Translator {
	return &Translator{shaper: shaper}
}

// Translate builds the display output for one solved run. It only reads the
// solution and the preprocessing result.
func (t *Translator) Translate(ctx context.Context, mode domain.TaskMode, sol *domain.Solution, pre *PreprocessResult) *TranslationResult {
	defer obs.Time(ctx, "translate.run")(nil)

	inconsistencies := 0
	routes := make([]domain.RouteGeometry, 0, len(sol.Routes))
	for _, route := range sol.Routes {
		geom, flagged := t.translateRoute(ctx, route, pre)
		inconsistencies += flagged
		routes = append(routes, geom)
	}

	taskKind := domain.KindJob
	if mode == domain.ModeShipments {
		taskKind = domain.KindShipment
	}

	// Shipment-mode solvers report two task points per logical job.
	unassignedJobs := len(sol.Unassigned)
	if mode == domain.ModeShipments {
		unassignedJobs /= 2
	}

	summary := domain.DisplaySummary{
		Routes:           len(sol.Routes),
		Assigned:         pre.Mapper.Count(taskKind) - unassignedJobs,
		Unassigned:       unassignedJobs,
		TotalDistance:    ceilMiles(sol.Summary.Distance),
		TotalDuration:    ceilMinutes(sol.Summary.Duration),
		TotalService:     ceilMinutes(sol.Summary.Service),
		TotalWaitingTime: ceilMinutes(sol.Summary.WaitingTime),
		Inconsistencies:  inconsistencies,
	}

	return &TranslationResult{
		Summary:    summary,
		Routes:     routes,
		Unassigned: t.translateUnassigned(mode, sol.Unassigned, pre),
	}
}

func (t *Translator) translateRoute(ctx context.Context, route domain.Route, pre *PreprocessResult) (domain.RouteGeometry, int) {
	inconsistencies := 0

	vehicleID, vehicleKnown := pre.Mapper.DomainID(domain.KindVehicle, route.Vehicle)
	if !vehicleKnown {
		log.Printf("translate: solution references unknown vehicle %d", route.Vehicle)
		vehicleID = NoAddress
		inconsistencies++
	}

	points := make([]domain.PointFeature, 0, len(route.Steps))
	waypoints := make([][]float64, 0, len(route.Steps))
	for i, step := range route.Steps {
		address, flagged := t.stepAddress(step, vehicleID, vehicleKnown, pre)
		if flagged {
			inconsistencies++
		}

		load := 0
		if len(step.Load) > 0 {
			load = step.Load[0]
		}

		points = append(points, domain.PointFeature{
			Type:     "Feature",
			Geometry: domain.PointGeometry{Type: "Point", Coordinates: step.Location},
			Properties: domain.StepProperties{
				Step:        i,
				Type:        step.Type,
				Address:     address,
				Arrival:     time.Unix(step.Arrival, 0).Format(TimestampLayout),
				Duration:    ceilMinutes(step.Duration),
				Distance:    ceilMiles(step.Distance),
				WaitingTime: ceilMinutes(step.WaitingTime),
				Service:     ceilMinutes(step.Service),
				Load:        load,
			},
		})
		waypoints = append(waypoints, step.Location)
	}

	line := domain.LineFeature{
		Type:     "Feature",
		Geometry: domain.LineGeometry{Type: "LineString", Coordinates: waypoints},
		Properties: domain.LineProperties{
			VehicleID:        vehicleID,
			TotalDistance:    ceilMiles(route.Distance),
			TotalDuration:    ceilMinutes(route.Duration),
			TotalWaitingTime: ceilMinutes(route.WaitingTime),
		},
	}

	if len(waypoints) >= 2 {
		shape, err := t.shaper.FetchShape(ctx, waypoints)
		if err != nil {
			// Straight segments between stops remain the display fallback.
			log.Printf("translate: road shape for vehicle %s unavailable: %v", vehicleID, err)
		} else {
			line.Route = shape
		}
	}

	return domain.RouteGeometry{
		Type:      "FeatureCollection",
		VehicleID: vehicleID,
		Features:  points,
		Line:      line,
	}, inconsistencies
}

// stepAddress resolves the display address for one step. The second return
// flags an internal inconsistency.
func (t *Translator) stepAddress(step domain.Step, vehicleID string, vehicleKnown bool, pre *PreprocessResult) (string, bool) {
	switch step.Type {
	case "start", "end":
		if addr, ok := pre.VehicleAddress[vehicleID]; ok {
			return addr, false
		}
		// An unknown vehicle is already counted once at the route level.
		return NoAddress, vehicleKnown

	case "job":
		if step.ID == nil {
			return NoAddress, true
		}
		if jobID, ok := pre.Mapper.DomainID(domain.KindJob, *step.ID); ok {
			if addr, ok := pre.PickupAddress[jobID]; ok {
				return addr, false
			}
		}
		return NoAddress, true

	case "pickup", "delivery":
		if step.ID == nil {
			return NoAddress, true
		}
		jobID, ok := pre.Mapper.DomainID(domain.KindShipment, *step.ID)
		if !ok {
			return NoAddress, true
		}
		addresses := pre.PickupAddress
		if step.Type == "delivery" {
			addresses = pre.DeliveryAddress
		}
		if addr, ok := addresses[jobID]; ok {
			return addr, false
		}
		return NoAddress, true
	}

	return NoAddress, true
}

func (t *Translator) translateUnassigned(mode domain.TaskMode, tasks []domain.UnassignedTask, pre *PreprocessResult) domain.UnassignedCollection {
	kind := domain.KindJob
	if mode == domain.ModeShipments {
		kind = domain.KindShipment
	}

	features := make([]domain.PointFeature, 0, len(tasks))
	for _, task := range tasks {
		jobID, ok := pre.Mapper.DomainID(kind, task.ID)
		if !ok {
			log.Printf("translate: unassigned task references unknown id %d", task.ID)
			jobID = NoAddress
		}

		legType := task.Type
		if legType == "" {
			legType = "job"
		}

		address := NoAddress
		switch legType {
		case "delivery":
			if addr, ok := pre.DeliveryAddress[jobID]; ok {
				address = addr
			}
		default:
			if addr, ok := pre.PickupAddress[jobID]; ok {
				address = addr
			}
		}

		features = append(features, domain.PointFeature{
			Type:     "Feature",
			Geometry: domain.PointGeometry{Type: "Point", Coordinates: task.Location},
			Properties: domain.UnassignedProperties{
				Type:    legType,
				JobID:   jobID,
				Address: address,
				Load:    pre.Demand[jobID],
			},
		})
	}

	return domain.UnassignedCollection{Type: "FeatureCollection", Features: features}
}

func ceilMiles(meters int) int {
	return int(math.Ceil(float64(meters) * milesPerMeter))
}

func ceilMinutes(seconds int) int {
	return int(math.Ceil(float64(seconds) / 60))
}
