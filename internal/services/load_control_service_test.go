package services

import (
	"context"
	"testing"

	"github.com/scraping050/proyecto-garantias-sub000/internal/models"
)

func TestNewLoadControlServiceNilDB(t *testing.T) {
	if _, err := NewLoadControlService(nil); err == nil {
		t.Fatalf("NewLoadControlService nil db: expected error")
	}
}

func TestLoadControlMarkAndCheck(t *testing.T) {
	db := openTestDB(t)
	migratePipelineTables(t, db)

	service, err := NewLoadControlService(db)
	if err != nil {
		t.Fatalf("NewLoadControlService: %v", err)
	}

	loaded, err := service.IsLoaded(context.Background(), "2024-01_seace.json")
	if err != nil {
		t.Fatalf("IsLoaded: %v", err)
	}
	if loaded {
		t.Fatalf("expected file not loaded")
	}

	if err := service.MarkLoaded(context.Background(), "2024-01_seace.json", 42); err != nil {
		t.Fatalf("MarkLoaded: %v", err)
	}

	loaded, err = service.IsLoaded(context.Background(), "2024-01_seace.json")
	if err != nil {
		t.Fatalf("IsLoaded: %v", err)
	}
	if !loaded {
		t.Fatalf("expected file loaded")
	}

	var entry models.LoadControl
	if err := db.First(&entry, "file_name = ?", "2024-01_seace.json").Error; err != nil {
		t.Fatalf("select load control: %v", err)
	}
	if entry.Status != models.LoadStatusSucceeded {
		t.Fatalf("Status = %q, want %q", entry.Status, models.LoadStatusSucceeded)
	}
	if entry.RecordCount != 42 {
		t.Fatalf("RecordCount = %d, want 42", entry.RecordCount)
	}
	if entry.CompletedAt == nil {
		t.Fatalf("CompletedAt is nil")
	}
}

func TestLoadControlMarkLoadedRepeatable(t *testing.T) {
	db := openTestDB(t)
	migratePipelineTables(t, db)

	service, err := NewLoadControlService(db)
	if err != nil {
		t.Fatalf("NewLoadControlService: %v", err)
	}

	if err := service.MarkLoaded(context.Background(), "2024-02_seace.json", 10); err != nil {
		t.Fatalf("MarkLoaded: %v", err)
	}
	if err := service.MarkLoaded(context.Background(), "2024-02_seace.json", 12); err != nil {
		t.Fatalf("MarkLoaded second: %v", err)
	}

	var count int64
	if err := db.Model(&models.LoadControl{}).Where("file_name = ?", "2024-02_seace.json").Count(&count).Error; err != nil {
		t.Fatalf("count load controls: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	var entry models.LoadControl
	if err := db.First(&entry, "file_name = ?", "2024-02_seace.json").Error; err != nil {
		t.Fatalf("select load control: %v", err)
	}
	if entry.RecordCount != 12 {
		t.Fatalf("RecordCount = %d, want 12", entry.RecordCount)
	}
}

func TestLoadControlGetAllSorted(t *testing.T) {
	db := openTestDB(t)
	migratePipelineTables(t, db)

	service, err := NewLoadControlService(db)
	if err != nil {
		t.Fatalf("NewLoadControlService: %v", err)
	}

	for _, name := range []string{"2024-02_seace.json", "2024-01_seace.json"} {
		if err := service.MarkLoaded(context.Background(), name, 1); err != nil {
			t.Fatalf("MarkLoaded %s: %v", name, err)
		}
	}

	entries, err := service.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries length = %d, want 2", len(entries))
	}
	if entries[0].FileName != "2024-01_seace.json" {
		t.Fatalf("first entry = %q, want 2024-01_seace.json", entries[0].FileName)
	}
}
