package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/scraping050/proyecto-garantias-sub000/internal/models"

	"gorm.io/gorm"
)

// SourceService serves the portal listing pages that period discovery scans.
type SourceService struct {
	db *gorm.DB
}

func NewSourceService(db *gorm.DB) (*SourceService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}

	return &SourceService{db: db}, nil
}

func (s *SourceService) GetSources(ctx context.Context) ([]models.Source, error) {
	if s == nil {
		return nil, errors.New("source service is nil")
	}
	if s.db == nil {
		return nil, errors.New("db is nil")
	}

	var sources []models.Source
	if err := s.db.WithContext(ctx).Find(&sources).Error; err != nil {
		return nil, fmt.Errorf("get sources: %w", err)
	}

	return sources, nil
}

// CreateSource registers an additional portal listing page for discovery.
func (s *SourceService) CreateSource(ctx context.Context, url string, comment string) (models.Source, error) {
	if s == nil {
		return models.Source{}, errors.New("source service is nil")
	}
	if s.db == nil {
		return models.Source{}, errors.New("db is nil")
	}
	if url == "" {
		return models.Source{}, errors.New("url is empty")
	}

	source := models.Source{URL: url}
	if comment != "" {
		source.Comment = &comment
	}

	if err := s.db.WithContext(ctx).Create(&source).Error; err != nil {
		return models.Source{}, fmt.Errorf("create source: %w", err)
	}

	return source, nil
}
