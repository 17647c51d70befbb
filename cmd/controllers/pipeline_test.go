package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scraping050/proyecto-garantias-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type stubPipelineService struct {
	refreshCalled bool
	years         []int
	workers       int
	maxBatches    int
	err           error

	downloadOutcomes []services.DownloadOutcome
	loadOutcomes     []services.LoadOutcome
	summary          services.EnrichSummary
}

func (s *stubPipelineService) Refresh(ctx context.Context) error {
	s.refreshCalled = true
	return s.err
}

func (s *stubPipelineService) RunDownload(ctx context.Context, years []int, workers int) ([]services.DownloadOutcome, error) {
	s.years = years
	s.workers = workers
	if s.err != nil {
		return nil, s.err
	}
	return s.downloadOutcomes, nil
}

func (s *stubPipelineService) RunLoad(ctx context.Context) ([]services.LoadOutcome, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.loadOutcomes, nil
}

func (s *stubPipelineService) RunEnrich(ctx context.Context, maxBatches int) (services.EnrichSummary, error) {
	s.maxBatches = maxBatches
	if s.err != nil {
		return services.EnrichSummary{}, s.err
	}
	return s.summary, nil
}

func newPipelineRouter(t *testing.T, service PipelineRunner) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	controller, err := NewPipelineController(service)
	if err != nil {
		t.Fatalf("NewPipelineController: %v", err)
	}

	router := gin.New()
	if err := controller.RegisterRoutes(router); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return router
}

func TestPipelineControllerRefresh(t *testing.T) {
	service := &stubPipelineService{}
	router := newPipelineRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/refresh", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if !service.refreshCalled {
		t.Fatalf("expected refresh to be called")
	}

	var resp RefreshResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q, want %q", resp.Status, "ok")
	}
}

func TestPipelineControllerRefreshError(t *testing.T) {
	service := &stubPipelineService{err: errors.New("boom")}
	router := newPipelineRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/refresh", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusInternalServerError)
	}
}

func TestPipelineControllerDownload(t *testing.T) {
	service := &stubPipelineService{
		downloadOutcomes: []services.DownloadOutcome{{Year: 2024, Month: 1, Status: services.DownloadStatusFetched}},
	}
	router := newPipelineRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/download?years=2023,2024&workers=2", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if len(service.years) != 2 || service.years[0] != 2023 || service.years[1] != 2024 {
		t.Fatalf("years = %v, want [2023 2024]", service.years)
	}
	if service.workers != 2 {
		t.Fatalf("workers = %d, want 2", service.workers)
	}

	var resp DownloadResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Outcomes) != 1 || resp.Outcomes[0].Status != services.DownloadStatusFetched {
		t.Fatalf("outcomes = %+v", resp.Outcomes)
	}
}

func TestPipelineControllerDownloadInvalidYears(t *testing.T) {
	router := newPipelineRouter(t, &stubPipelineService{})

	req := httptest.NewRequest(http.MethodGet, "/download?years=abc", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestPipelineControllerLoad(t *testing.T) {
	service := &stubPipelineService{
		loadOutcomes: []services.LoadOutcome{{FileName: "2024-01_seace.json", Status: services.LoadStatusLoaded, Records: 12}},
	}
	router := newPipelineRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/load", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}

	var resp LoadResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Outcomes) != 1 || resp.Outcomes[0].Records != 12 {
		t.Fatalf("outcomes = %+v", resp.Outcomes)
	}
}

func TestPipelineControllerEnrich(t *testing.T) {
	service := &stubPipelineService{summary: services.EnrichSummary{Processed: 7, Sentinels: 2}}
	router := newPipelineRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/enrich?maxBatches=3", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if service.maxBatches != 3 {
		t.Fatalf("maxBatches = %d, want 3", service.maxBatches)
	}

	var resp services.EnrichSummary
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Processed != 7 || resp.Sentinels != 2 {
		t.Fatalf("summary = %+v", resp)
	}
}

func TestNewPipelineControllerNilService(t *testing.T) {
	if _, err := NewPipelineController(nil); err == nil {
		t.Fatalf("expected error for nil service")
	}
}
