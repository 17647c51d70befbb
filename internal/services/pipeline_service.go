package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PipelineService drives one full refresh: discover and download the
// configured years from every portal source, load the file store, then run
// enrichment. Later phases still run when an earlier one failed.
type PipelineService struct {
	sourceService SourceProvider
	listing       PeriodDiscoverer
	downloader    PeriodDownloader
	loader        FileLoader
	enricher      AwardEnricher
	logService    LogWriter

	years            []int
	downloadWorkers  int
	enrichMaxBatches int
}

func NewPipelineService(sourceService SourceProvider, listing PeriodDiscoverer, downloader PeriodDownloader, loader FileLoader, enricher AwardEnricher, logService LogWriter, years []int, downloadWorkers int, enrichMaxBatches int) (*PipelineService, error) {
	if sourceService == nil {
		return nil, errors.New("source service is nil")
	}
	if listing == nil {
		return nil, errors.New("listing service is nil")
	}
	if downloader == nil {
		return nil, errors.New("download service is nil")
	}
	if loader == nil {
		return nil, errors.New("loader service is nil")
	}
	if enricher == nil {
		return nil, errors.New("enrich service is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}

	return &PipelineService{
		sourceService:    sourceService,
		listing:          listing,
		downloader:       downloader,
		loader:           loader,
		enricher:         enricher,
		logService:       logService,
		years:            years,
		downloadWorkers:  downloadWorkers,
		enrichMaxBatches: enrichMaxBatches,
	}, nil
}

func (s *PipelineService) Refresh(ctx context.Context) error {
	if s == nil {
		return errors.New("pipeline service is nil")
	}

	runID := uuid.NewString()
	eventID := &runID

	startMsg := "pipeline refresh started"
	if err := s.logService.CreateLog(ctx, eventID, LogActionPipeline, LogOutcomeSuccess, &startMsg); err != nil {
		return err
	}

	var refreshErr error

	if _, err := s.downloadPhase(ctx, eventID, s.years, s.downloadWorkers); err != nil && refreshErr == nil {
		refreshErr = err
	}

	loadOutcomes, err := s.loader.LoadAll(ctx, eventID)
	if err != nil {
		failMsg := fmt.Sprintf("load phase: %v", err)
		_ = s.logService.CreateLog(ctx, eventID, LogActionPipeline, LogOutcomeFail, &failMsg)
		if refreshErr == nil {
			refreshErr = fmt.Errorf("load phase: %w", err)
		}
	}

	summary, err := s.enricher.Enrich(ctx, s.enrichMaxBatches, eventID)
	if err != nil {
		failMsg := fmt.Sprintf("enrich phase: %v", err)
		_ = s.logService.CreateLog(ctx, eventID, LogActionPipeline, LogOutcomeFail, &failMsg)
		if refreshErr == nil {
			refreshErr = fmt.Errorf("enrich phase: %w", err)
		}
	}

	doneMsg := fmt.Sprintf(
		"pipeline refresh done files=%d enriched=%d sentinels=%d consortiums=%d documents=%d",
		len(loadOutcomes), summary.Processed, summary.Sentinels, summary.Consortiums, summary.Documents,
	)
	_ = s.logService.CreateLog(ctx, eventID, LogActionPipeline, LogOutcomeSuccess, &doneMsg)

	return refreshErr
}

// RunDownload runs only the discovery and download phase, as its own run.
// Empty years or non-positive workers fall back to the configured values.
func (s *PipelineService) RunDownload(ctx context.Context, years []int, workers int) ([]DownloadOutcome, error) {
	if s == nil {
		return nil, errors.New("pipeline service is nil")
	}
	if len(years) == 0 {
		years = s.years
	}
	if workers <= 0 {
		workers = s.downloadWorkers
	}

	runID := uuid.NewString()
	return s.downloadPhase(ctx, &runID, years, workers)
}

// RunLoad runs only the load phase, as its own run.
func (s *PipelineService) RunLoad(ctx context.Context) ([]LoadOutcome, error) {
	if s == nil {
		return nil, errors.New("pipeline service is nil")
	}

	runID := uuid.NewString()
	return s.loader.LoadAll(ctx, &runID)
}

// RunEnrich runs only the enrichment phase, as its own run. A non-positive
// maxBatches falls back to the configured ceiling.
func (s *PipelineService) RunEnrich(ctx context.Context, maxBatches int) (EnrichSummary, error) {
	if s == nil {
		return EnrichSummary{}, errors.New("pipeline service is nil")
	}
	if maxBatches <= 0 {
		maxBatches = s.enrichMaxBatches
	}

	runID := uuid.NewString()
	return s.enricher.Enrich(ctx, maxBatches, &runID)
}

func (s *PipelineService) downloadPhase(ctx context.Context, eventID *string, years []int, workers int) ([]DownloadOutcome, error) {
	sources, err := s.sourceService.GetSources(ctx)
	if err != nil {
		failMsg := fmt.Sprintf("get sources: %v", err)
		_ = s.logService.CreateLog(ctx, eventID, LogActionListingScan, LogOutcomeFail, &failMsg)
		return nil, fmt.Errorf("get sources: %w", err)
	}

	var all []DownloadOutcome
	var phaseErr error
	for _, source := range sources {
		if source.URL == "" {
			failMsg := "source url is empty"
			_ = s.logService.CreateLog(ctx, eventID, LogActionListingScan, LogOutcomeFail, &failMsg)
			if phaseErr == nil {
				phaseErr = errors.New("source url is empty")
			}
			continue
		}

		links, err := s.listing.Discover(ctx, source.URL, years)
		if err != nil {
			failMsg := fmt.Sprintf("discover url=%s: %v", source.URL, err)
			_ = s.logService.CreateLog(ctx, eventID, LogActionListingScan, LogOutcomeFail, &failMsg)
			if phaseErr == nil {
				phaseErr = fmt.Errorf("discover url=%s: %w", source.URL, err)
			}
			continue
		}

		scanMsg := fmt.Sprintf("url=%s periods=%d", source.URL, len(links))
		_ = s.logService.CreateLog(ctx, eventID, LogActionListingScan, LogOutcomeSuccess, &scanMsg)

		outcomes, err := s.downloader.DownloadAll(ctx, links, workers, eventID)
		if err != nil {
			if phaseErr == nil {
				phaseErr = fmt.Errorf("download url=%s: %w", source.URL, err)
			}
			continue
		}
		all = append(all, outcomes...)

		failed := 0
		for _, outcome := range outcomes {
			if outcome.Status == DownloadStatusFailed {
				failed++
			}
		}
		if failed > 0 && phaseErr == nil {
			phaseErr = fmt.Errorf("%d download units failed for %s", failed, source.URL)
		}
	}

	return all, phaseErr
}
