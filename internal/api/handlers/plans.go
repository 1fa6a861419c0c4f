package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/services"
	"nemt-route-service/internal/tabular"
)

// errorPreviewLimit bounds how many failing records each kind reports back;
// the full set is still archived with the run.
const errorPreviewLimit = 10

// maxUploadBytes caps multipart CSV uploads.
const maxUploadBytes = 10 << 20

// Planner runs one route-planning pass. Satisfied by services.Pipeline.
type Planner interface {
	Run(ctx context.Context, in services.RunInput) (*services.RunOutput, error)
}

// PlanHandler triggers planning runs from JSON or CSV input.
type PlanHandler struct {
	Pipeline Planner
}

type planRequest struct {
	Mode          string              `json:"mode"`
	OperatingDate string              `json:"operating_date"`
	Vehicles      []domain.VehicleRow `json:"vehicles"`
	Trips         []domain.TripRow    `json:"trips"`
	SessionID     string              `json:"session_id"`
	UseCache      *bool               `json:"use_cache"`
	SaveArtifacts bool                `json:"save_artifacts"`
}

type planResponse struct {
	SessionID  string                          `json:"session_id"`
	Summary    domain.DisplaySummary           `json:"summary"`
	Routes     []domain.RouteGeometry          `json:"routes"`
	Unassigned domain.UnassignedCollection     `json:"unassigned"`
	Errors     map[string][]domain.RecordError `json:"errors"`
	ErrorTotal int                             `json:"error_total"`
}

// Plan handles POST /v1/plans with a JSON body.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	h.run(w, r, req)
}

// PlanCSV handles POST /v1/plans/csv with multipart vehicles/trips files.
func (h *PlanHandler) PlanCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	vehiclesFile, _, err := r.FormFile("vehicles")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing vehicles file")
		return
	}
	defer vehiclesFile.Close()

	tripsFile, _, err := r.FormFile("trips")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing trips file")
		return
	}
	defer tripsFile.Close()

	vehicles, err := tabular.ReadVehicles(vehiclesFile)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	trips, err := tabular.ReadTrips(tripsFile)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	useCache := true
	if v := r.FormValue("use_cache"); v != "" {
		useCache, _ = strconv.ParseBool(v)
	}
	saveArtifacts, _ := strconv.ParseBool(r.FormValue("save_artifacts"))

	h.run(w, r, planRequest{
		Mode:          r.FormValue("mode"),
		OperatingDate: r.FormValue("operating_date"),
		Vehicles:      vehicles,
		Trips:         trips,
		SessionID:     r.FormValue("session_id"),
		UseCache:      &useCache,
		SaveArtifacts: saveArtifacts,
	})
}

func (h *PlanHandler) run(w http.ResponseWriter, r *http.Request, req planRequest) {
	mode := domain.TaskMode(req.Mode)
	if mode == "" {
		mode = domain.ModeShipments
	}
	if !mode.Valid() {
		writeError(w, r, http.StatusBadRequest, "mode must be \"jobs\" or \"shipments\"")
		return
	}
	if len(req.Vehicles) == 0 || len(req.Trips) == 0 {
		writeError(w, r, http.StatusBadRequest, "vehicles and trips are required")
		return
	}

	useCache := true
	if req.UseCache != nil {
		useCache = *req.UseCache
	}

	out, err := h.Pipeline.Run(r.Context(), services.RunInput{
		SessionID:     req.SessionID,
		Mode:          mode,
		OperatingDate: req.OperatingDate,
		Vehicles:      req.Vehicles,
		Trips:         req.Trips,
		UseCache:      useCache,
		SaveArtifacts: req.SaveArtifacts,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOptimizationFailed):
			writeError(w, r, http.StatusBadGateway, "optimization failed")
		case errors.Is(err, services.ErrNoRoutableRecords):
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, r, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, r, http.StatusOK, planResponse{
		SessionID:  out.SessionID,
		Summary:    out.Summary,
		Routes:     out.Routes,
		Unassigned: out.Unassigned,
		Errors:     errorPreview(out.Errors),
		ErrorTotal: out.Errors.Total(),
	})
}

// errorPreview returns up to errorPreviewLimit failing records per kind,
// ordered by domain id for stable output.
func errorPreview(set domain.ErrorSet) map[string][]domain.RecordError {
	preview := map[string][]domain.RecordError{}
	for kind, records := range set {
		if len(records) == 0 {
			continue
		}

		list := make([]domain.RecordError, 0, len(records))
		for _, rec := range records {
			list = append(list, rec)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].DomainID < list[j].DomainID })

		if len(list) > errorPreviewLimit {
			list = list[:errorPreviewLimit]
		}
		preview[string(kind)] = list
	}
	return preview
}
