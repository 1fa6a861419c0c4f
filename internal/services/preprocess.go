package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"nemt-route-service/internal/config"
	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/platform/obs"
	"nemt-route-service/internal/ports"
)

// PreprocessInput is one run's raw tables plus the mode selection.
type PreprocessInput struct {
	Mode          domain.TaskMode
	OperatingDate string
	Vehicles      []domain.VehicleRow
	Trips         []domain.TripRow
	UseCache      bool
}

// PreprocessResult is the solver-ready half of a run: records for every row
// that survived, one error per row that did not, and the id mapper plus
// address/demand indexes the translator needs afterward.
type PreprocessResult struct {
	Vehicles  []domain.SolverVehicle
	Jobs      []domain.SolverJob
	Shipments []domain.SolverShipment
	Errors    domain.ErrorSet
	Mapper    *IDMapper

	VehicleAddress  map[string]string
	PickupAddress   map[string]string
	DeliveryAddress map[string]string
	Demand          map[string]int
}

// Preprocessor turns raw vehicle and trip rows into solver records. Each row
// is independent: a bad address drops that row and the batch continues.
// Malformed dates or an invalid mode fail the whole batch before any
// external call.
type Preprocessor struct {
	geocoder ports.Geocoder
	matrix   ports.MatrixAPI
	planner  config.Planner
}

func NewPreprocessor(geocoder ports.Geocoder, matrix ports.MatrixAPI, planner config.Planner) *Preprocessor {
	return &Preprocessor{geocoder: geocoder, matrix: matrix, planner: planner}
}

// Run executes the full preprocessing pass: validation, then the vehicle
// sub-pass and the task sub-pass for the selected mode.
func (p *Preprocessor) Run(ctx context.Context, in PreprocessInput) (_ *PreprocessResult, err error) {
	defer obs.Time(ctx, "preprocess.run")(&err)

	if err := p.validate(in); err != nil {
		return nil, err
	}

	res := &PreprocessResult{
		Errors:          domain.NewErrorSet(),
		Mapper:          NewIDMapper(),
		VehicleAddress:  map[string]string{},
		PickupAddress:   map[string]string{},
		DeliveryAddress: map[string]string{},
		Demand:          map[string]int{},
	}

	if err := p.processVehicles(ctx, in, res); err != nil {
		return nil, err
	}

	switch in.Mode {
	case domain.ModeJobs:
		err = p.processJobs(ctx, in, res)
	case domain.ModeShipments:
		err = p.processShipments(ctx, in, res)
	}
	if err != nil {
		return nil, err
	}

	return res, nil
}

// validate fails the whole batch on structural problems before any
// external call is made.
func (p *Preprocessor) validate(in PreprocessInput) error {
	if !in.Mode.Valid() {
		return fmt.Errorf("preprocess: invalid task mode %q", in.Mode)
	}
	if _, err := IntervalWindow(in.OperatingDate, "00:00-23:59"); err != nil {
		return fmt.Errorf("preprocess: invalid operating date %q", in.OperatingDate)
	}

	for _, row := range in.Vehicles {
		if row.VehicleID == "" {
			return fmt.Errorf("preprocess: vehicle row missing vehicle_id")
		}
		if row.WorkingHours != "" {
			if _, err := IntervalWindow(in.OperatingDate, row.WorkingHours); err != nil {
				return fmt.Errorf("preprocess: vehicle %s: %w", row.VehicleID, err)
			}
		}
	}

	for _, row := range in.Trips {
		if row.JobID == "" {
			return fmt.Errorf("preprocess: trip row missing job_id")
		}
		if _, err := ParseTimestamp(row.EarliestPickup); err != nil {
			return fmt.Errorf("preprocess: trip %s: %w", row.JobID, err)
		}
		if in.Mode == domain.ModeShipments {
			if _, err := ParseTimestamp(row.LatestDelivery); err != nil {
				return fmt.Errorf("preprocess: trip %s: %w", row.JobID, err)
			}
		}
	}

	return nil
}

func (p *Preprocessor) processVehicles(ctx context.Context, in PreprocessInput, res *PreprocessResult) error {
	for _, row := range in.Vehicles {
		hours := row.WorkingHours
		if hours == "" {
			hours = p.planner.DayStart + "-" + p.planner.DayEnd
		}
		window, err := IntervalWindow(in.OperatingDate, hours)
		if err != nil {
			return fmt.Errorf("preprocess: vehicle %s: %w", row.VehicleID, err)
		}

		skills, err := ParseSkills(row.Skills)
		if err != nil {
			res.Errors.Add(domain.KindVehicle, row.VehicleID, err.Error())
			continue
		}
		if skills == nil {
			skills = p.planner.DefaultSkills
		}

		capacity := row.Capacity
		if capacity <= 0 {
			res.Errors.Add(domain.KindVehicle, row.VehicleID, fmt.Sprintf("invalid capacity %d", row.Capacity))
			continue
		}

		if strings.TrimSpace(row.Address) == "" {
			res.Errors.Add(domain.KindVehicle, row.VehicleID, "missing address")
			continue
		}

		geo, err := p.geocoder.Resolve(ctx, row.Address, in.UseCache)
		if err != nil {
			return fmt.Errorf("preprocess: vehicle %s: %w", row.VehicleID, err)
		}
		if geo == nil {
			res.Errors.Add(domain.KindVehicle, row.VehicleID, fmt.Sprintf("address not found: %s", row.Address))
			continue
		}

		id := res.Mapper.Assign(domain.KindVehicle, row.VehicleID)
		res.VehicleAddress[row.VehicleID] = row.Address
		res.Vehicles = append(res.Vehicles, domain.SolverVehicle{
			ID:         id,
			Start:      geo.CoordsToList(),
			End:        geo.CoordsToList(),
			Capacity:   []int{capacity},
			Skills:     skills,
			TimeWindow: window,
		})
	}

	return nil
}

func (p *Preprocessor) processJobs(ctx context.Context, in PreprocessInput, res *PreprocessResult) error {
	for _, row := range in.Trips {
		earliest, err := ParseTimestamp(row.EarliestPickup)
		if err != nil {
			return fmt.Errorf("preprocess: trip %s: %w", row.JobID, err)
		}

		skills, passengers, service, recErr := p.tripDefaults(row)
		if recErr != "" {
			res.Errors.Add(domain.KindJob, row.JobID, recErr)
			continue
		}

		if strings.TrimSpace(row.PickupAddress) == "" {
			res.Errors.Add(domain.KindJob, row.JobID, "missing pickup address")
			continue
		}

		geo, err := p.geocoder.Resolve(ctx, row.PickupAddress, in.UseCache)
		if err != nil {
			return fmt.Errorf("preprocess: trip %s: %w", row.JobID, err)
		}
		if geo == nil {
			res.Errors.Add(domain.KindJob, row.JobID, fmt.Sprintf("address not found: %s", row.PickupAddress))
			continue
		}

		id := res.Mapper.Assign(domain.KindJob, row.JobID)
		res.PickupAddress[row.JobID] = row.PickupAddress
		res.Demand[row.JobID] = passengers
		res.Jobs = append(res.Jobs, domain.SolverJob{
			ID:       id,
			Service:  service,
			Delivery: []int{passengers},
			Location: geo.CoordsToList(),
			Skills:   skills,
			TimeWindows: [][]int64{{
				earliest.Unix() - int64(p.planner.MaxWaitSeconds),
				earliest.Unix(),
			}},
		})
	}

	return nil
}

func (p *Preprocessor) processShipments(ctx context.Context, in PreprocessInput, res *PreprocessResult) error {
	// One matrix over the batch's unique addresses bounds external calls.
	addresses := make([]string, 0, 2*len(in.Trips))
	for _, row := range in.Trips {
		addresses = append(addresses, row.PickupAddress, row.DeliveryAddress)
	}
	matrix, err := BuildLocationsMatrix(ctx, p.geocoder, p.matrix, addresses, in.UseCache)
	if err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}

	for _, row := range in.Trips {
		earliest, err := ParseTimestamp(row.EarliestPickup)
		if err != nil {
			return fmt.Errorf("preprocess: trip %s: %w", row.JobID, err)
		}
		latest, err := ParseTimestamp(row.LatestDelivery)
		if err != nil {
			return fmt.Errorf("preprocess: trip %s: %w", row.JobID, err)
		}

		skills, passengers, service, recErr := p.tripDefaults(row)
		if recErr != "" {
			res.Errors.Add(domain.KindShipment, row.JobID, recErr)
			continue
		}

		if strings.TrimSpace(row.PickupAddress) == "" || strings.TrimSpace(row.DeliveryAddress) == "" {
			res.Errors.Add(domain.KindShipment, row.JobID, "missing pickup or delivery address")
			continue
		}

		pickupGeo, err := p.geocoder.Resolve(ctx, row.PickupAddress, in.UseCache)
		if err != nil {
			return fmt.Errorf("preprocess: trip %s: %w", row.JobID, err)
		}
		deliveryGeo, err := p.geocoder.Resolve(ctx, row.DeliveryAddress, in.UseCache)
		if err != nil {
			return fmt.Errorf("preprocess: trip %s: %w", row.JobID, err)
		}
		if pickupGeo == nil || deliveryGeo == nil {
			addr := row.PickupAddress
			if pickupGeo != nil {
				addr = row.DeliveryAddress
			}
			res.Errors.Add(domain.KindShipment, row.JobID, fmt.Sprintf("address not found: %s", addr))
			continue
		}

		// Estimate when the pickup must happen for the delivery deadline to
		// hold, then keep the later of that and the requested earliest.
		effectiveEarliest := earliest.Unix()
		if travel, ok := matrix.Duration(row.PickupAddress, row.DeliveryAddress); ok {
			estimated := latest.Unix() - int64(travel)
			if estimated > effectiveEarliest {
				effectiveEarliest = estimated
			}
		} else {
			log.Printf("preprocess: trip %s: no travel estimate, using requested earliest pickup", row.JobID)
		}
		if effectiveEarliest > latest.Unix() {
			effectiveEarliest = latest.Unix()
		}

		maxWait := int64(p.planner.MaxWaitSeconds)
		id := res.Mapper.Assign(domain.KindShipment, row.JobID)
		res.PickupAddress[row.JobID] = row.PickupAddress
		res.DeliveryAddress[row.JobID] = row.DeliveryAddress
		res.Demand[row.JobID] = passengers
		res.Shipments = append(res.Shipments, domain.SolverShipment{
			Amount: []int{passengers},
			Skills: skills,
			Pickup: domain.ShipmentStop{
				ID:          id,
				Service:     service,
				Location:    pickupGeo.CoordsToList(),
				TimeWindows: [][]int64{{effectiveEarliest - maxWait, effectiveEarliest}},
			},
			Delivery: domain.ShipmentStop{
				ID:          id,
				Service:     service,
				Location:    deliveryGeo.CoordsToList(),
				TimeWindows: [][]int64{{latest.Unix() - maxWait, latest.Unix()}},
			},
		})
	}

	return nil
}

// tripDefaults applies the configured per-row defaults. A non-empty third
// return is a record-level error reason.
func (p *Preprocessor) tripDefaults(row domain.TripRow) (skills []int, passengers, service int, recErr string) {
	skills, err := ParseSkills(row.Skills)
	if err != nil {
		return nil, 0, 0, err.Error()
	}
	if skills == nil {
		skills = p.planner.DefaultSkills
	}

	passengers = row.Passengers
	if passengers <= 0 {
		passengers = 1
	}

	service = row.ServiceTime
	if service <= 0 {
		service = p.planner.ServiceSeconds
	}

	return skills, passengers, service, ""
}
