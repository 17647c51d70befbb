package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	defaultSourceTag        = "seace"
	defaultDownloadWorkers  = 4
	defaultEnrichWorkers    = 5
	defaultLoadBatchSize    = 2000
	defaultEnrichBatchSize  = 50
	defaultEnrichMaxBatches = 100
	defaultDownloadTimeout  = 5 * time.Minute
	defaultAPITimeout       = 20 * time.Second
	defaultCronSpec         = "@monthly"
)

type Config struct {
	DBDSN              string `json:"db_dsn"`
	FileStoreDir       string `json:"file_store_dir"`
	ArtifactDir        string `json:"artifact_dir"`
	ContractAPIBaseURL string `json:"contract_api_base_url"`
	DocumentAPIBaseURL string `json:"document_api_base_url"`

	SourceTag        string `json:"source_tag"`
	Years            []int  `json:"years"`
	DownloadWorkers  int    `json:"download_workers"`
	EnrichWorkers    int    `json:"enrich_workers"`
	LoadBatchSize    int    `json:"load_batch_size"`
	EnrichBatchSize  int    `json:"enrich_batch_size"`
	EnrichMaxBatches int    `json:"enrich_max_batches"`
	CronSpec         string `json:"cron_spec"`

	DownloadTimeoutSeconds int `json:"download_timeout_seconds"`
	APITimeoutSeconds      int `json:"api_timeout_seconds"`

	// UpdateStatusOnReload controls whether re-loading a tender overwrites the
	// status recorded at first load.
	UpdateStatusOnReload bool `json:"update_status_on_reload"`
	// EnrichRetryTransient makes the crawler reselect awards left with a
	// transient sentinel (connection error, ERROR-5xx) instead of treating
	// every sentinel as terminal.
	EnrichRetryTransient bool `json:"enrich_retry_transient"`
}

func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("db_dsn is required")
	}
	if cfg.FileStoreDir == "" {
		return Config{}, fmt.Errorf("file_store_dir is required")
	}
	if cfg.ContractAPIBaseURL == "" {
		return Config{}, fmt.Errorf("contract_api_base_url is required")
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ArtifactDir == "" {
		c.ArtifactDir = c.FileStoreDir
	}
	if c.SourceTag == "" {
		c.SourceTag = defaultSourceTag
	}
	if c.DownloadWorkers <= 0 {
		c.DownloadWorkers = defaultDownloadWorkers
	}
	if c.EnrichWorkers <= 0 {
		c.EnrichWorkers = defaultEnrichWorkers
	}
	if c.LoadBatchSize <= 0 {
		c.LoadBatchSize = defaultLoadBatchSize
	}
	if c.EnrichBatchSize <= 0 {
		c.EnrichBatchSize = defaultEnrichBatchSize
	}
	if c.EnrichMaxBatches <= 0 {
		c.EnrichMaxBatches = defaultEnrichMaxBatches
	}
	if c.CronSpec == "" {
		c.CronSpec = defaultCronSpec
	}
}

func (c Config) DownloadTimeout() time.Duration {
	if c.DownloadTimeoutSeconds > 0 {
		return time.Duration(c.DownloadTimeoutSeconds) * time.Second
	}
	return defaultDownloadTimeout
}

func (c Config) APITimeout() time.Duration {
	if c.APITimeoutSeconds > 0 {
		return time.Duration(c.APITimeoutSeconds) * time.Second
	}
	return defaultAPITimeout
}
