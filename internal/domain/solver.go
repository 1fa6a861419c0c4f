package domain

// Wire types for the external VROOM-compatible solver. Field layout follows
// the solver's JSON schema; do not reorder or rename tags.

type SolverOptions struct {
	G        bool   `json:"g"`
	Geometry bool   `json:"geometry"`
	Format   string `json:"format"`
}

type SolverVehicle struct {
	ID         int       `json:"id"`
	Start      []float64 `json:"start"`
	End        []float64 `json:"end"`
	Capacity   []int     `json:"capacity"`
	Skills     []int     `json:"skills"`
	TimeWindow []int64   `json:"time_window"`
}

type SolverJob struct {
	ID          int       `json:"id"`
	Service     int       `json:"service"`
	Delivery    []int     `json:"delivery"`
	Location    []float64 `json:"location"`
	Skills      []int     `json:"skills"`
	TimeWindows [][]int64 `json:"time_windows"`
}

// ShipmentStop is one leg (pickup or delivery) of a shipment. Pickup and
// delivery legs share the shipment's solver id.
type ShipmentStop struct {
	ID          int       `json:"id"`
	Service     int       `json:"service"`
	Location    []float64 `json:"location"`
	TimeWindows [][]int64 `json:"time_windows,omitempty"`
}

type SolverShipment struct {
	Amount   []int        `json:"amount"`
	Skills   []int        `json:"skills"`
	Pickup   ShipmentStop `json:"pickup"`
	Delivery ShipmentStop `json:"delivery"`
}

// SolverRequest is the single batched request body for one run. Exactly one
// of Jobs or Shipments is populated.
type SolverRequest struct {
	Vehicles  []SolverVehicle  `json:"vehicles"`
	Jobs      []SolverJob      `json:"jobs,omitempty"`
	Shipments []SolverShipment `json:"shipments,omitempty"`
	Options   SolverOptions    `json:"options"`
}

// Step is one positional entry in a route. Step order is route order.
type Step struct {
	Type        string    `json:"type"`
	ID          *int      `json:"id,omitempty"`
	Location    []float64 `json:"location"`
	Arrival     int64     `json:"arrival"`
	Duration    int       `json:"duration"`
	Distance    int       `json:"distance"`
	WaitingTime int       `json:"waiting_time"`
	Service     int       `json:"service"`
	Load        []int     `json:"load"`
}

type Route struct {
	Vehicle     int    `json:"vehicle"`
	Steps       []Step `json:"steps"`
	Cost        int    `json:"cost"`
	Service     int    `json:"service"`
	Duration    int    `json:"duration"`
	WaitingTime int    `json:"waiting_time"`
	Distance    int    `json:"distance"`
}

// UnassignedTask is one task point the solver could not place. In shipment
// mode the solver reports two entries (pickup and delivery legs) per
// logical job, sharing one id.
type UnassignedTask struct {
	ID       int       `json:"id"`
	Type     string    `json:"type,omitempty"`
	Location []float64 `json:"location,omitempty"`
}

type SolverSummary struct {
	Cost        int `json:"cost"`
	Unassigned  int `json:"unassigned"`
	Service     int `json:"service"`
	Duration    int `json:"duration"`
	WaitingTime int `json:"waiting_time"`
	Distance    int `json:"distance"`
}

// Solution is the solver response. It is immutable once received;
// downstream code only reads it.
type Solution struct {
	Code       int              `json:"code"`
	Routes     []Route          `json:"routes"`
	Unassigned []UnassignedTask `json:"unassigned"`
	Summary    SolverSummary    `json:"summary"`
}
