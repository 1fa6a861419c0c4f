package tabular

import (
	"strings"
	"testing"
)

func TestReadVehicles(t *testing.T) {
	src := strings.NewReader(
		"working_hours,vehicle_id,address,capacity,skills\n" +
			"08:00-16:00,V-1,10 Depot Way,4,\"1,2\"\n" +
			",V-2,20 Yard Rd,6,\n")

	rows, err := ReadVehicles(src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}

	if rows[0].VehicleID != "V-1" || rows[0].Capacity != 4 || rows[0].Skills != "1,2" {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[0].WorkingHours != "08:00-16:00" {
		t.Fatalf("working hours = %q", rows[0].WorkingHours)
	}
	if rows[1].WorkingHours != "" || rows[1].Skills != "" {
		t.Fatalf("row 1 optional fields: %+v", rows[1])
	}
}

func TestReadVehiclesMissingColumn(t *testing.T) {
	src := strings.NewReader("vehicle_id,capacity\nV-1,4\n")
	if _, err := ReadVehicles(src); err == nil {
		t.Fatal("expected error for missing address column")
	}
}

func TestReadTrips(t *testing.T) {
	src := strings.NewReader(
		"job_id,pickup_address,delivery_address,nb_passengers,earliest_pickup,latest_delivery,service_time\n" +
			"T-1,100 Main St,200 Oak Ave,2,2026-03-10 09:00:00,2026-03-10 11:00:00,600\n" +
			"T-2,300 Pine Rd,,,2026-03-10 10:00:00,,\n")

	rows, err := ReadTrips(src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}

	if rows[0].JobID != "T-1" || rows[0].Passengers != 2 || rows[0].ServiceTime != 600 {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[0].LatestDelivery != "2026-03-10 11:00:00" {
		t.Fatalf("latest delivery = %q", rows[0].LatestDelivery)
	}

	// Blank numerics stay zero so preprocessing applies the defaults.
	if rows[1].Passengers != 0 || rows[1].ServiceTime != 0 || rows[1].DeliveryAddress != "" {
		t.Fatalf("row 1 = %+v", rows[1])
	}
}

func TestReadTripsRejectsBadNumber(t *testing.T) {
	src := strings.NewReader(
		"job_id,pickup_address,earliest_pickup,nb_passengers\n" +
			"T-1,100 Main St,2026-03-10 09:00:00,two\n")
	if _, err := ReadTrips(src); err == nil {
		t.Fatal("expected error for non-numeric passenger count")
	}
}
