package domain

// TaskMode selects which task representation a run sends to the solver.
// The two kinds are mutually exclusive per run.
type TaskMode string

const (
	// ModeShipments pairs each trip's pickup and delivery (primary mode).
	ModeShipments TaskMode = "shipments"
	// ModeJobs treats each trip as a single pickup-location task (legacy mode).
	ModeJobs TaskMode = "jobs"
)

func (m TaskMode) Valid() bool { return m == ModeShipments || m == ModeJobs }

// Kind tags which entity family an identifier belongs to.
type Kind string

const (
	KindVehicle  Kind = "vehicle"
	KindJob      Kind = "job"
	KindShipment Kind = "shipment"
)

// VehicleRow is one raw fleet table row. Vehicles start and end their day
// at the same address.
type VehicleRow struct {
	VehicleID string `json:"vehicle_id"`
	Address   string `json:"address"`
	Capacity  int    `json:"capacity"`
	// Skills is a comma-separated list of small integers, e.g. "1,2,3".
	Skills string `json:"skills"`
	// WorkingHours is an "HH:MM-HH:MM" interval on the operating date.
	// Empty means the configured default day.
	WorkingHours string `json:"working_hours"`
}

// TripRow is one raw trip table row: a passenger pickup and delivery.
type TripRow struct {
	JobID           string `json:"job_id"`
	PickupAddress   string `json:"pickup_address"`
	DeliveryAddress string `json:"delivery_address"`
	// Passengers defaults to 1 when zero.
	Passengers int `json:"nb_passengers"`
	// EarliestPickup and LatestDelivery are "2006-01-02 15:04:05" local timestamps.
	EarliestPickup string `json:"earliest_pickup"`
	LatestDelivery string `json:"latest_delivery"`
	// ServiceTime in seconds; defaults to the configured service time when zero.
	ServiceTime int `json:"service_time"`
	// Skills requested for this trip; empty means the configured default set.
	Skills string `json:"skills"`
}

// RecordError captures one dropped input row. SolverID is -1: a row that
// failed preprocessing never receives a solver id.
type RecordError struct {
	DomainID string `json:"domain_id"`
	SolverID int    `json:"solver_id"`
	Reason   string `json:"reason"`
}

// ErrorSet groups record errors per entity kind, keyed by domain id.
type ErrorSet map[Kind]map[string]RecordError

func NewErrorSet() ErrorSet {
	return ErrorSet{
		KindVehicle:  map[string]RecordError{},
		KindJob:      map[string]RecordError{},
		KindShipment: map[string]RecordError{},
	}
}

// Add records one dropped row under its entity kind.
func (e ErrorSet) Add(kind Kind, domainID, reason string) {
	if e[kind] == nil {
		e[kind] = map[string]RecordError{}
	}
	e[kind][domainID] = RecordError{DomainID: domainID, SolverID: -1, Reason: reason}
}

// Total counts dropped rows across all kinds.
func (e ErrorSet) Total() int {
	n := 0
	for _, m := range e {
		n += len(m)
	}
	return n
}
