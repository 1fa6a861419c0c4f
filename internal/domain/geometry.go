package domain

// GeoJSON-shaped output consumed by the map renderer. Built fresh per
// optimization run; not persisted.

type PointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type LineGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// StepProperties annotate one route stop. Distances are cumulative miles,
// durations cumulative minutes, both rounded up.
type StepProperties struct {
	Step        int    `json:"step"`
	Type        string `json:"type"`
	Address     string `json:"address"`
	Arrival     string `json:"arrival"`
	Duration    int    `json:"duration"`
	Distance    int    `json:"distance"`
	WaitingTime int    `json:"waiting_time"`
	Service     int    `json:"service"`
	Load        int    `json:"load"`
}

type LineProperties struct {
	VehicleID        string `json:"vehicle_id"`
	TotalDistance    int    `json:"total_distance"`
	TotalDuration    int    `json:"total_duration"`
	TotalWaitingTime int    `json:"total_waiting_time"`
}

// UnassignedProperties annotate one leg of a job the solver could not place.
type UnassignedProperties struct {
	Type    string `json:"type"`
	JobID   string `json:"job_id"`
	Address string `json:"address"`
	Load    int    `json:"load"`
}

type PointFeature struct {
	Type       string        `json:"type"`
	Geometry   PointGeometry `json:"geometry"`
	Properties any           `json:"properties"`
}

// LineFeature carries the stop-to-stop line plus the road-following shape.
// Route is the externally fetched encoded polyline; empty means the shape
// call failed and Geometry's straight segments are the fallback.
type LineFeature struct {
	Type       string         `json:"type"`
	Geometry   LineGeometry   `json:"geometry"`
	Properties LineProperties `json:"properties"`
	Route      string         `json:"route,omitempty"`
}

// RouteGeometry is the display-ready geometry for one vehicle's route:
// ordered point features (one per step) plus one line feature.
type RouteGeometry struct {
	Type      string         `json:"type"`
	VehicleID string         `json:"vehicle_id"`
	Features  []PointFeature `json:"features"`
	Line      LineFeature    `json:"line"`
}

// UnassignedCollection lists point features for jobs left out of every route.
type UnassignedCollection struct {
	Type     string         `json:"type"`
	Features []PointFeature `json:"features"`
}

// DisplaySummary is the run-level rollup shown to the user. Unassigned
// counts logical jobs, not solver task points.
type DisplaySummary struct {
	Routes           int `json:"routes"`
	Assigned         int `json:"assigned"`
	Unassigned       int `json:"unassigned"`
	TotalDistance    int `json:"total_distance"`
	TotalDuration    int `json:"total_duration"`
	TotalService     int `json:"total_service"`
	TotalWaitingTime int `json:"total_waiting_time"`
	Inconsistencies  int `json:"inconsistencies,omitempty"`
}
