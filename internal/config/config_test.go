package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "secrets.json", `{
		"db_dsn":"dsn",
		"file_store_dir":"/data/files",
		"contract_api_base_url":"https://api.example.com/contrato",
		"years":[2023,2024],
		"enrich_batch_size":25
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDSN != "dsn" {
		t.Fatalf("DBDSN = %q, want %q", cfg.DBDSN, "dsn")
	}
	if cfg.FileStoreDir != "/data/files" {
		t.Fatalf("FileStoreDir = %q, want %q", cfg.FileStoreDir, "/data/files")
	}
	if len(cfg.Years) != 2 || cfg.Years[0] != 2023 {
		t.Fatalf("Years = %v, want [2023 2024]", cfg.Years)
	}
	if cfg.EnrichBatchSize != 25 {
		t.Fatalf("EnrichBatchSize = %d, want 25", cfg.EnrichBatchSize)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "secrets.json", `{
		"db_dsn":"dsn",
		"file_store_dir":"/data/files",
		"contract_api_base_url":"https://api.example.com/contrato"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourceTag != "seace" {
		t.Fatalf("SourceTag = %q, want %q", cfg.SourceTag, "seace")
	}
	if cfg.DownloadWorkers != 4 {
		t.Fatalf("DownloadWorkers = %d, want 4", cfg.DownloadWorkers)
	}
	if cfg.EnrichWorkers != 5 {
		t.Fatalf("EnrichWorkers = %d, want 5", cfg.EnrichWorkers)
	}
	if cfg.LoadBatchSize != 2000 {
		t.Fatalf("LoadBatchSize = %d, want 2000", cfg.LoadBatchSize)
	}
	if cfg.EnrichBatchSize != 50 {
		t.Fatalf("EnrichBatchSize = %d, want 50", cfg.EnrichBatchSize)
	}
	if cfg.ArtifactDir != cfg.FileStoreDir {
		t.Fatalf("ArtifactDir = %q, want %q", cfg.ArtifactDir, cfg.FileStoreDir)
	}
	if cfg.DownloadTimeout() != 5*time.Minute {
		t.Fatalf("DownloadTimeout = %v, want 5m", cfg.DownloadTimeout())
	}
	if cfg.APITimeout() != 20*time.Second {
		t.Fatalf("APITimeout = %v, want 20s", cfg.APITimeout())
	}
	if cfg.UpdateStatusOnReload {
		t.Fatalf("UpdateStatusOnReload default should be false")
	}
	if cfg.EnrichRetryTransient {
		t.Fatalf("EnrichRetryTransient default should be false")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("Load empty path: expected error")
	}

	dir := t.TempDir()
	missingDB := writeTempFile(t, dir, "missing_db.json", `{"file_store_dir":"/data","contract_api_base_url":"u"}`)
	if _, err := Load(missingDB); err == nil {
		t.Fatalf("Load missing db_dsn: expected error")
	}

	missingStore := writeTempFile(t, dir, "missing_store.json", `{"db_dsn":"dsn","contract_api_base_url":"u"}`)
	if _, err := Load(missingStore); err == nil {
		t.Fatalf("Load missing file_store_dir: expected error")
	}

	invalid := writeTempFile(t, dir, "invalid.json", "{")
	if _, err := Load(invalid); err == nil {
		t.Fatalf("Load invalid json: expected error")
	}
}

func TestLoadSourceConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "config.json", `{"source":{"url":"https://example.com","comment":"Default source"}}`)

	cfg, err := LoadSourceConfig(path)
	if err != nil {
		t.Fatalf("LoadSourceConfig: %v", err)
	}
	if cfg.Source.URL != "https://example.com" {
		t.Fatalf("URL = %q, want %q", cfg.Source.URL, "https://example.com")
	}
	if cfg.Source.Comment != "Default source" {
		t.Fatalf("Comment = %q, want %q", cfg.Source.Comment, "Default source")
	}
}

func TestLoadSourceConfigErrors(t *testing.T) {
	if _, err := LoadSourceConfig(""); err == nil {
		t.Fatalf("LoadSourceConfig empty path: expected error")
	}

	dir := t.TempDir()
	missingURL := writeTempFile(t, dir, "missing_url.json", `{"source":{"comment":"Default source"}}`)
	if _, err := LoadSourceConfig(missingURL); err == nil {
		t.Fatalf("LoadSourceConfig missing url: expected error")
	}

	missingComment := writeTempFile(t, dir, "missing_comment.json", `{"source":{"url":"https://example.com"}}`)
	if _, err := LoadSourceConfig(missingComment); err == nil {
		t.Fatalf("LoadSourceConfig missing comment: expected error")
	}
}
