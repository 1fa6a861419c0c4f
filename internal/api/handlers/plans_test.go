package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nemt-route-service/internal/domain"
	"nemt-route-service/internal/services"
)

type stubPlanner struct {
	out    *services.RunOutput
	err    error
	lastIn services.RunInput
}

func (s *stubPlanner) Run(_ context.Context, in services.RunInput) (*services.RunOutput, error) {
	s.lastIn = in
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func okOutput() *services.RunOutput {
	errs := domain.NewErrorSet()
	errs.Add(domain.KindJob, "T-9", "address not found: 1 Nowhere Ln")
	return &services.RunOutput{
		SessionID: "sess-1",
		Summary:   domain.DisplaySummary{Routes: 1, Assigned: 2, Unassigned: 0},
		Errors:    errs,
	}
}

func TestPlanRunsPipeline(t *testing.T) {
	planner := &stubPlanner{out: okOutput()}
	h := &PlanHandler{Pipeline: planner}

	body := `{
		"mode": "jobs",
		"operating_date": "2026-03-10",
		"vehicles": [{"vehicle_id": "V-1", "address": "10 Depot Way", "capacity": 4}],
		"trips": [{"job_id": "T-1", "pickup_address": "100 Main St", "earliest_pickup": "2026-03-10 09:00:00"}],
		"use_cache": false
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Plan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if planner.lastIn.Mode != domain.ModeJobs || planner.lastIn.UseCache {
		t.Fatalf("pipeline input = %+v", planner.lastIn)
	}

	var resp struct {
		SessionID  string                          `json:"session_id"`
		Errors     map[string][]domain.RecordError `json:"errors"`
		ErrorTotal int                             `json:"error_total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != "sess-1" || resp.ErrorTotal != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Errors["job"]) != 1 || resp.Errors["job"][0].DomainID != "T-9" {
		t.Fatalf("error preview = %+v", resp.Errors)
	}
}

func TestPlanDefaultsToShipmentMode(t *testing.T) {
	planner := &stubPlanner{out: okOutput()}
	h := &PlanHandler{Pipeline: planner}

	body := `{
		"operating_date": "2026-03-10",
		"vehicles": [{"vehicle_id": "V-1", "address": "10 Depot Way", "capacity": 4}],
		"trips": [{"job_id": "T-1", "pickup_address": "100 Main St", "delivery_address": "200 Oak Ave",
			"earliest_pickup": "2026-03-10 09:00:00", "latest_delivery": "2026-03-10 11:00:00"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Plan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if planner.lastIn.Mode != domain.ModeShipments {
		t.Fatalf("default mode = %q", planner.lastIn.Mode)
	}
	if !planner.lastIn.UseCache {
		t.Fatal("use_cache must default to true")
	}
}

func TestPlanRejectsBadRequests(t *testing.T) {
	h := &PlanHandler{Pipeline: &stubPlanner{out: okOutput()}}

	cases := []struct {
		name string
		body string
	}{
		{"bad mode", `{"mode": "both", "vehicles": [{}], "trips": [{}]}`},
		{"no rows", `{"mode": "jobs"}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		h.Plan(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", tc.name, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/plans", nil)
	rec := httptest.NewRecorder()
	h.Plan(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d", rec.Code)
	}
}

func TestPlanMapsPipelineFailures(t *testing.T) {
	body := `{
		"mode": "jobs",
		"vehicles": [{"vehicle_id": "V-1", "address": "10 Depot Way", "capacity": 4}],
		"trips": [{"job_id": "T-1", "pickup_address": "100 Main St", "earliest_pickup": "2026-03-10 09:00:00"}]
	}`

	h := &PlanHandler{Pipeline: &stubPlanner{err: services.ErrOptimizationFailed}}
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Plan(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("solver failure status = %d", rec.Code)
	}

	h = &PlanHandler{Pipeline: &stubPlanner{err: services.ErrNoRoutableRecords}}
	req = httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.Plan(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty batch status = %d", rec.Code)
	}
}

func TestPlanCSV(t *testing.T) {
	planner := &stubPlanner{out: okOutput()}
	h := &PlanHandler{Pipeline: planner}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	vf, _ := mw.CreateFormFile("vehicles", "vehicles.csv")
	vf.Write([]byte("vehicle_id,address,capacity\nV-1,10 Depot Way,4\n"))
	tf, _ := mw.CreateFormFile("trips", "trips.csv")
	tf.Write([]byte("job_id,pickup_address,delivery_address,earliest_pickup,latest_delivery\n" +
		"T-1,100 Main St,200 Oak Ave,2026-03-10 09:00:00,2026-03-10 11:00:00\n"))
	mw.WriteField("mode", "shipments")
	mw.WriteField("operating_date", "2026-03-10")
	mw.WriteField("save_artifacts", "true")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/plans/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.PlanCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(planner.lastIn.Vehicles) != 1 || len(planner.lastIn.Trips) != 1 {
		t.Fatalf("parsed rows: %+v", planner.lastIn)
	}
	if planner.lastIn.Trips[0].DeliveryAddress != "200 Oak Ave" {
		t.Fatalf("trip row = %+v", planner.lastIn.Trips[0])
	}
	if !planner.lastIn.SaveArtifacts {
		t.Fatal("save_artifacts flag lost")
	}
}

func TestPlanCSVMissingFile(t *testing.T) {
	h := &PlanHandler{Pipeline: &stubPlanner{out: okOutput()}}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	vf, _ := mw.CreateFormFile("vehicles", "vehicles.csv")
	vf.Write([]byte("vehicle_id,address,capacity\nV-1,10 Depot Way,4\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/plans/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.PlanCSV(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
