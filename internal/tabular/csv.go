package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"nemt-route-service/internal/domain"
)

// Header-driven CSV intake for the raw fleet and trip tables. Column order
// is free; unknown columns are ignored; a missing required column fails the
// whole file before any row is read.

var vehicleRequired = []string{"vehicle_id", "address", "capacity"}
var tripRequired = []string{"job_id", "pickup_address", "earliest_pickup"}

// header maps column name to position, lower-cased and trimmed.
type header map[string]int

func readHeader(r *csv.Reader, required []string) (header, error) {
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	h := header{}
	for i, name := range record {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return h, nil
}

func (h header) text(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (h header) number(record []string, name string) (int, error) {
	raw := h.text(record, name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return n, nil
}

// ReadVehicles parses the fleet table.
func ReadVehicles(src io.Reader) ([]domain.VehicleRow, error) {
	r := csv.NewReader(src)
	r.TrimLeadingSpace = true

	h, err := readHeader(r, vehicleRequired)
	if err != nil {
		return nil, fmt.Errorf("vehicles csv: %w", err)
	}

	var rows []domain.VehicleRow
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("vehicles csv: line %d: %w", line, err)
		}

		capacity, err := h.number(record, "capacity")
		if err != nil {
			return nil, fmt.Errorf("vehicles csv: line %d: %w", line, err)
		}

		rows = append(rows, domain.VehicleRow{
			VehicleID:    h.text(record, "vehicle_id"),
			Address:      h.text(record, "address"),
			Capacity:     capacity,
			Skills:       h.text(record, "skills"),
			WorkingHours: h.text(record, "working_hours"),
		})
	}
	return rows, nil
}

// ReadTrips parses the trip table. Delivery columns may be absent for
// job-mode inputs; mode-specific validation happens in preprocessing.
func ReadTrips(src io.Reader) ([]domain.TripRow, error) {
	r := csv.NewReader(src)
	r.TrimLeadingSpace = true

	h, err := readHeader(r, tripRequired)
	if err != nil {
		return nil, fmt.Errorf("trips csv: %w", err)
	}

	var rows []domain.TripRow
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trips csv: line %d: %w", line, err)
		}

		passengers, err := h.number(record, "nb_passengers")
		if err != nil {
			return nil, fmt.Errorf("trips csv: line %d: %w", line, err)
		}
		service, err := h.number(record, "service_time")
		if err != nil {
			return nil, fmt.Errorf("trips csv: line %d: %w", line, err)
		}

		rows = append(rows, domain.TripRow{
			JobID:           h.text(record, "job_id"),
			PickupAddress:   h.text(record, "pickup_address"),
			DeliveryAddress: h.text(record, "delivery_address"),
			Passengers:      passengers,
			EarliestPickup:  h.text(record, "earliest_pickup"),
			LatestDelivery:  h.text(record, "latest_delivery"),
			ServiceTime:     service,
			Skills:          h.text(record, "skills"),
		})
	}
	return rows, nil
}
