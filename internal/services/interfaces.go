package services

import (
	"context"

	"github.com/scraping050/proyecto-garantias-sub000/internal/models"
)

type SourceProvider interface {
	GetSources(ctx context.Context) ([]models.Source, error)
}

type LogWriter interface {
	CreateLog(ctx context.Context, eventID *string, action string, outcome string, message *string) error
}

type PeriodDiscoverer interface {
	Discover(ctx context.Context, listingURL string, years []int) ([]PeriodLink, error)
}

type PeriodDownloader interface {
	DownloadAll(ctx context.Context, links []PeriodLink, workers int, eventID *string) ([]DownloadOutcome, error)
}

type FileLoader interface {
	LoadAll(ctx context.Context, eventID *string) ([]LoadOutcome, error)
}

type AwardEnricher interface {
	Enrich(ctx context.Context, maxBatches int, eventID *string) (EnrichSummary, error)
}

type ContractFetcher interface {
	GetContract(ctx context.Context, contractID string) (ContractResponse, error)
	DownloadDocument(ctx context.Context, documentID string, destPath string) error
}
