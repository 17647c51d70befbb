package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/scraping050/proyecto-garantias-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

type SourceProvider interface {
	GetSources(ctx context.Context) ([]models.Source, error)
	CreateSource(ctx context.Context, url string, comment string) (models.Source, error)
}

type SourcesController struct {
	service SourceProvider
}

type SourcesResponse struct {
	Sources []models.Source `json:"sources"`
}

type CreateSourceRequest struct {
	URL     string `json:"url"`
	Comment string `json:"comment"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewSourcesController(service SourceProvider) (*SourcesController, error) {
	if service == nil {
		return nil, errors.New("source service is nil")
	}

	return &SourcesController{service: service}, nil
}

func (c *SourcesController) RegisterRoutes(router *gin.Engine) error {
	if c == nil {
		return errors.New("sources controller is nil")
	}
	if router == nil {
		return errors.New("router is nil")
	}

	router.GET("/sources", c.getSources)
	router.POST("/sources", c.createSource)
	return nil
}

func (c *SourcesController) getSources(ctx *gin.Context) {
	sources, err := c.service.GetSources(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load sources"})
		return
	}

	ctx.JSON(http.StatusOK, SourcesResponse{Sources: sources})
}

func (c *SourcesController) createSource(ctx *gin.Context) {
	var req CreateSourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.URL == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "url is required"})
		return
	}

	source, err := c.service.CreateSource(ctx.Request.Context(), req.URL, req.Comment)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create source"})
		return
	}

	ctx.JSON(http.StatusCreated, source)
}
