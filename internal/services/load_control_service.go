package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scraping050/proyecto-garantias-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoadControlService struct {
	db *gorm.DB
}

func NewLoadControlService(db *gorm.DB) (*LoadControlService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}

	return &LoadControlService{db: db}, nil
}

// IsLoaded reports whether the file already completed a full load.
func (s *LoadControlService) IsLoaded(ctx context.Context, fileName string) (bool, error) {
	if s == nil {
		return false, errors.New("load control service is nil")
	}
	if s.db == nil {
		return false, errors.New("db is nil")
	}
	if fileName == "" {
		return false, errors.New("file name is empty")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.LoadControl{}).
		Where("file_name = ? AND status = ?", fileName, models.LoadStatusSucceeded).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check load control: %w", err)
	}

	return count > 0, nil
}

// MarkLoaded advances the ledger to succeeded with the produced record count.
// Safe to repeat for the same file.
func (s *LoadControlService) MarkLoaded(ctx context.Context, fileName string, recordCount int) error {
	if s == nil {
		return errors.New("load control service is nil")
	}
	if s.db == nil {
		return errors.New("db is nil")
	}
	if fileName == "" {
		return errors.New("file name is empty")
	}

	now := time.Now().UTC()
	entry := models.LoadControl{
		FileName:    fileName,
		Status:      models.LoadStatusSucceeded,
		CompletedAt: &now,
		RecordCount: recordCount,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "completed_at", "record_count"}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("mark load control: %w", err)
	}

	return nil
}

// GetAll returns the ledger ordered by file name for the control surface.
func (s *LoadControlService) GetAll(ctx context.Context) ([]models.LoadControl, error) {
	if s == nil {
		return nil, errors.New("load control service is nil")
	}
	if s.db == nil {
		return nil, errors.New("db is nil")
	}

	var entries []models.LoadControl
	if err := s.db.WithContext(ctx).Order("file_name").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("get load controls: %w", err)
	}

	return entries, nil
}
