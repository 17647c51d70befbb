package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/scraping050/proyecto-garantias-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

type LoadControlProvider interface {
	GetAll(ctx context.Context) ([]models.LoadControl, error)
}

// FilesController exposes the control ledger so operators can see which
// source files loaded, when, and with how many records.
type FilesController struct {
	service LoadControlProvider
}

type FilesResponse struct {
	Files []models.LoadControl `json:"files"`
}

func NewFilesController(service LoadControlProvider) (*FilesController, error) {
	if service == nil {
		return nil, errors.New("load control service is nil")
	}

	return &FilesController{service: service}, nil
}

func (c *FilesController) RegisterRoutes(router *gin.Engine) error {
	if c == nil {
		return errors.New("files controller is nil")
	}
	if router == nil {
		return errors.New("router is nil")
	}

	router.GET("/files", c.getFiles)
	return nil
}

func (c *FilesController) getFiles(ctx *gin.Context) {
	files, err := c.service.GetAll(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load control ledger"})
		return
	}

	ctx.JSON(http.StatusOK, FilesResponse{Files: files})
}
