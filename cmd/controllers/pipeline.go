package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/scraping050/proyecto-garantias-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type PipelineRunner interface {
	Refresh(ctx context.Context) error
	RunDownload(ctx context.Context, years []int, workers int) ([]services.DownloadOutcome, error)
	RunLoad(ctx context.Context) ([]services.LoadOutcome, error)
	RunEnrich(ctx context.Context, maxBatches int) (services.EnrichSummary, error)
}

// PipelineController triggers the full refresh or a single phase on demand.
// Individual unit failures are reported through the logs endpoint, not here.
type PipelineController struct {
	service PipelineRunner
}

type RefreshResponse struct {
	Status string `json:"status"`
}

type DownloadResponse struct {
	Outcomes []services.DownloadOutcome `json:"outcomes"`
}

type LoadResponse struct {
	Outcomes []services.LoadOutcome `json:"outcomes"`
}

func NewPipelineController(service PipelineRunner) (*PipelineController, error) {
	if service == nil {
		return nil, errors.New("pipeline service is nil")
	}

	return &PipelineController{service: service}, nil
}

func (c *PipelineController) RegisterRoutes(router *gin.Engine) error {
	if c == nil {
		return errors.New("pipeline controller is nil")
	}
	if router == nil {
		return errors.New("router is nil")
	}

	router.GET("/refresh", c.refresh)
	router.GET("/download", c.download)
	router.GET("/load", c.load)
	router.GET("/enrich", c.enrich)
	return nil
}

func (c *PipelineController) refresh(ctx *gin.Context) {
	if err := c.service.Refresh(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to refresh pipeline"})
		return
	}

	ctx.JSON(http.StatusOK, RefreshResponse{Status: "ok"})
}

func (c *PipelineController) download(ctx *gin.Context) {
	years, err := parseYears(ctx.Query("years"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid years"})
		return
	}

	workers, err := parseOptionalInt(ctx.Query("workers"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid workers"})
		return
	}

	outcomes, err := c.service.RunDownload(ctx.Request.Context(), years, workers)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "download phase failed"})
		return
	}

	ctx.JSON(http.StatusOK, DownloadResponse{Outcomes: outcomes})
}

func (c *PipelineController) load(ctx *gin.Context) {
	outcomes, err := c.service.RunLoad(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "load phase failed"})
		return
	}

	ctx.JSON(http.StatusOK, LoadResponse{Outcomes: outcomes})
}

func (c *PipelineController) enrich(ctx *gin.Context) {
	maxBatches, err := parseOptionalInt(ctx.Query("maxBatches"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid maxBatches"})
		return
	}

	summary, err := c.service.RunEnrich(ctx.Request.Context(), maxBatches)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "enrich phase failed"})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func parseYears(value string) ([]int, error) {
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		years = append(years, year)
	}

	return years, nil
}

func parseOptionalInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
