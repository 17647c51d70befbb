package services

import (
	"context"
	"sync"
	"testing"

	"github.com/scraping050/proyecto-garantias-sub000/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}

	return db
}

func migratePipelineTables(t *testing.T, db *gorm.DB) {
	t.Helper()

	if err := db.AutoMigrate(
		&models.LoadControl{},
		&models.Tender{},
		&models.Award{},
		&models.ConsortiumMember{},
	); err != nil {
		t.Fatalf("migrate pipeline tables: %v", err)
	}
}

type loggedEntry struct {
	action  string
	outcome string
	message *string
}

// stubLogWriter is shared by concurrent workers in enrichment tests.
type stubLogWriter struct {
	mu      sync.Mutex
	entries []loggedEntry
}

func (s *stubLogWriter) CreateLog(ctx context.Context, eventID *string, action string, outcome string, message *string) error {
	var copied *string
	if message != nil {
		value := *message
		copied = &value
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, loggedEntry{
		action:  action,
		outcome: outcome,
		message: copied,
	})
	return nil
}

func (s *stubLogWriter) count(action string, outcome string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := 0
	for _, entry := range s.entries {
		if entry.action == action && entry.outcome == outcome {
			matched++
		}
	}
	return matched
}
