package services

import (
	"testing"

	"nemt-route-service/internal/domain"
)

func TestAssignIsDensePerKind(t *testing.T) {
	m := NewIDMapper()

	if id := m.Assign(domain.KindVehicle, "V-1"); id != 0 {
		t.Fatalf("first vehicle id = %d, want 0", id)
	}
	if id := m.Assign(domain.KindVehicle, "V-2"); id != 1 {
		t.Fatalf("second vehicle id = %d, want 1", id)
	}
	if id := m.Assign(domain.KindJob, "T-1"); id != 0 {
		t.Fatalf("first job id = %d, want 0: kinds must not share a sequence", id)
	}

	if id := m.Assign(domain.KindVehicle, "V-1"); id != 0 {
		t.Fatalf("re-assigning V-1 gave %d, want the original 0", id)
	}
	if n := m.Count(domain.KindVehicle); n != 2 {
		t.Fatalf("vehicle count = %d, want 2", n)
	}
}

func TestRoundTrip(t *testing.T) {
	m := NewIDMapper()
	solverID := m.Assign(domain.KindShipment, "T-42")

	domainID, ok := m.DomainID(domain.KindShipment, solverID)
	if !ok || domainID != "T-42" {
		t.Fatalf("DomainID(%d) = %q, %v", solverID, domainID, ok)
	}

	back, ok := m.SolverID(domain.KindShipment, "T-42")
	if !ok || back != solverID {
		t.Fatalf("SolverID(T-42) = %d, %v", back, ok)
	}
}

func TestLookupAbsence(t *testing.T) {
	m := NewIDMapper()
	m.Assign(domain.KindJob, "T-1")

	if _, ok := m.DomainID(domain.KindJob, 99); ok {
		t.Fatal("unknown solver id must report absence")
	}
	if _, ok := m.SolverID(domain.KindVehicle, "T-1"); ok {
		t.Fatal("lookup must not cross entity kinds")
	}
}
