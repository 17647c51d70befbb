package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/scraping050/proyecto-garantias-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	LoadStatusSkipped = "SKIPPED"
	LoadStatusLoaded  = "LOADED"
	LoadStatusFailed  = "FAILED"
)

// LoadOutcome reports how one source file ended. Records counts rows actually
// stored (headers plus awards) after fallback recovery.
type LoadOutcome struct {
	FileName string `json:"file_name"`
	Status   string `json:"status"`
	Records  int    `json:"records"`
	Message  string `json:"message,omitempty"`
}

type LoaderService struct {
	db             *gorm.DB
	controlService *LoadControlService
	logService     LogWriter
	storeDir       string
	batchSize      int
	updateStatus   bool
}

func NewLoaderService(db *gorm.DB, controlService *LoadControlService, logService LogWriter, storeDir string, batchSize int, updateStatus bool) (*LoaderService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if controlService == nil {
		return nil, errors.New("load control service is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}
	if storeDir == "" {
		return nil, errors.New("store dir is empty")
	}
	if batchSize <= 0 {
		batchSize = 2000
	}

	return &LoaderService{
		db:             db,
		controlService: controlService,
		logService:     logService,
		storeDir:       storeDir,
		batchSize:      batchSize,
		updateStatus:   updateStatus,
	}, nil
}

// LoadAll processes every not-yet-loaded payload file in filename order. A
// failure in one file never stops the loop.
func (s *LoaderService) LoadAll(ctx context.Context, eventID *string) ([]LoadOutcome, error) {
	if s == nil {
		return nil, errors.New("loader service is nil")
	}
	if s.db == nil {
		return nil, errors.New("db is nil")
	}

	entries, err := os.ReadDir(s.storeDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var fileNames []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		fileNames = append(fileNames, entry.Name())
	}
	sort.Strings(fileNames)

	outcomes := make([]LoadOutcome, 0, len(fileNames))
	for _, fileName := range fileNames {
		loaded, err := s.controlService.IsLoaded(ctx, fileName)
		if err != nil {
			return outcomes, fmt.Errorf("check control ledger: %w", err)
		}
		if loaded {
			outcomes = append(outcomes, LoadOutcome{FileName: fileName, Status: LoadStatusSkipped})
			continue
		}

		records, err := s.loadFile(ctx, fileName, eventID)
		if err != nil {
			failMsg := fmt.Sprintf("load %s: %v", fileName, err)
			_ = s.logService.CreateLog(ctx, eventID, LogActionFileLoad, LogOutcomeFail, &failMsg)
			outcomes = append(outcomes, LoadOutcome{FileName: fileName, Status: LoadStatusFailed, Message: err.Error()})
			continue
		}

		successMsg := fmt.Sprintf("loaded %s records=%d", fileName, records)
		_ = s.logService.CreateLog(ctx, eventID, LogActionFileLoad, LogOutcomeSuccess, &successMsg)
		outcomes = append(outcomes, LoadOutcome{FileName: fileName, Status: LoadStatusLoaded, Records: records})
	}

	return outcomes, nil
}

func (s *LoaderService) loadFile(ctx context.Context, fileName string, eventID *string) (int, error) {
	file, err := os.Open(filepath.Join(s.storeDir, fileName))
	if err != nil {
		return 0, fmt.Errorf("open payload: %w", err)
	}
	defer file.Close()

	reader, err := NewReleaseReader(file)
	if err != nil {
		return 0, fmt.Errorf("open release stream: %w", err)
	}

	var headers []models.Tender
	var awards []models.Award
	stored := 0

	for {
		release, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrSkipRelease) {
			continue
		}
		if err != nil {
			return stored, err
		}

		header, releaseAwards := s.transformRelease(release, fileName)
		if header == nil {
			continue
		}

		headers = append(headers, *header)
		awards = append(awards, releaseAwards...)

		if len(headers) >= s.batchSize {
			count, err := s.flush(ctx, headers, awards, eventID)
			stored += count
			if err != nil {
				return stored, err
			}
			headers = headers[:0]
			awards = awards[:0]
		}
	}

	count, err := s.flush(ctx, headers, awards, eventID)
	stored += count
	if err != nil {
		return stored, err
	}

	if err := s.controlService.MarkLoaded(ctx, fileName, stored); err != nil {
		return stored, err
	}

	return stored, nil
}

// transformRelease turns one release into a header plus its award rows, or
// nil when the release is not a tracked procurement or has no tender id.
func (s *LoaderService) transformRelease(release Release, fileName string) (*models.Tender, []models.Award) {
	comp := release.CompiledRelease
	if comp == nil || comp.Tender == nil {
		return nil, nil
	}
	if comp.Tender.ProcurementMethodDetails != TrackedProcedureType {
		return nil, nil
	}

	tenderID := strings.TrimSpace(comp.Tender.ID)
	if tenderID == "" {
		return nil, nil
	}

	releaseID := strings.TrimSpace(comp.ID)
	if releaseID == "" {
		releaseID = strings.TrimSpace(release.OCID)
	}
	if releaseID == "" {
		releaseID = tenderID
	}

	contractByAward := make(map[string]string, len(comp.Contracts))
	for _, contract := range comp.Contracts {
		if contract.AwardID == "" || contract.ID == "" {
			continue
		}
		contractByAward[contract.AwardID] = contract.ID
	}

	buyerName := ""
	if comp.Buyer != nil {
		buyerName = comp.Buyer.Name
	}

	currency := ""
	if comp.Tender.Value != nil {
		currency = comp.Tender.Value.Currency
	}

	// The compiled date is authoritative; the envelope date is often empty.
	locationFull, department, province, district := DeriveLocation(comp.Buyer, comp.Parties)
	now := time.Now().UTC()

	header := models.Tender{
		TenderID:      tenderID,
		ReleaseID:     releaseID,
		Title:         Truncate(comp.Tender.Title, maxTitleLen),
		Description:   Truncate(comp.Tender.Description, maxDescriptionLen),
		BuyerName:     Truncate(buyerName, maxNameLen),
		Category:      TranslateCategory(comp.Tender.MainProcurementCategory),
		ProcedureType: comp.Tender.ProcurementMethodDetails,
		Amount:        ParseAmount(comp.Tender.Value),
		Currency:      currency,
		PubDate:       NormalizeDate(comp.Date),
		Status:        DeriveStatus(comp.Tender.Status, comp.Awards),
		LocationFull:  locationFull,
		Department:    department,
		Province:      province,
		District:      district,
		SourceFile:    fileName,
		LoadedAt:      now,
		UpdatedAt:     now,
	}

	var awards []models.Award
	for _, awardDoc := range comp.Awards {
		awardID := strings.TrimSpace(awardDoc.ID)
		if awardID == "" {
			continue
		}

		winnerName := WinnerNameUnknown
		winnerTaxID := WinnerTaxIDNone
		if len(awardDoc.Suppliers) > 0 {
			if name := strings.TrimSpace(awardDoc.Suppliers[0].Name); name != "" {
				winnerName = name
			}
			if taxID := strings.TrimSpace(awardDoc.Suppliers[0].ID); taxID != "" {
				winnerTaxID = taxID
			}
		}

		awards = append(awards, models.Award{
			AwardID:     awardID,
			ContractID:  contractByAward[awardID],
			TenderID:    tenderID,
			WinnerName:  Truncate(winnerName, maxNameLen),
			WinnerTaxID: winnerTaxID,
			Amount:      ParseAmount(awardDoc.Value),
			AwardDate:   NormalizeDate(awardDoc.Date),
			ItemStatus:  ItemStatusPending,
		})
	}

	return &header, awards
}

// flush writes one accumulated batch inside a single transaction. Each row
// set is attempted as one statement first and degrades to row-by-row with
// per-row failure tolerance.
func (s *LoaderService) flush(ctx context.Context, headers []models.Tender, awards []models.Award, eventID *string) (int, error) {
	if len(headers) == 0 && len(awards) == 0 {
		return 0, nil
	}

	stored := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		headerCount, headerErrs := upsertWithFallback(tx, s.tenderConflict(), headers)
		awardCount, awardErrs := upsertWithFallback(tx, s.awardConflict(), awards)
		stored = headerCount + awardCount

		for _, rowErr := range append(headerErrs, awardErrs...) {
			failMsg := fmt.Sprintf("store row: %v", rowErr)
			_ = s.logService.CreateLog(ctx, eventID, LogActionDataStore, LogOutcomeFail, &failMsg)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("flush batch: %w", err)
	}

	successMsg := fmt.Sprintf("stored headers=%d awards=%d", len(headers), len(awards))
	_ = s.logService.CreateLog(ctx, eventID, LogActionDataStore, LogOutcomeSuccess, &successMsg)

	return stored, nil
}

// tenderConflict lists the header fields a later file may legitimately
// refresh. Status joins the set only when configured; enrichment fields and
// first-load metadata are never touched.
func (s *LoaderService) tenderConflict() clause.OnConflict {
	assignments := []string{
		"category", "procedure_type", "pub_date",
		"location_full", "department", "province", "district",
		"updated_at",
	}
	if s.updateStatus {
		assignments = append(assignments, "status")
	}

	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "tender_id"}},
		DoUpdates: clause.AssignmentColumns(assignments),
	}
}

func (s *LoaderService) awardConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "award_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"contract_id", "award_date", "winner_name"}),
	}
}

// upsertWithFallback tries the whole batch as one statement; on any failure
// it rolls back to the batch savepoint and replays the rows one by one,
// keeping the survivors and collecting the per-row errors.
func upsertWithFallback[T any](tx *gorm.DB, onConflict clause.OnConflict, rows []T) (int, []error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx.SavePoint("batch")
	if err := tx.Clauses(onConflict).Create(&rows).Error; err == nil {
		return len(rows), nil
	}
	tx.RollbackTo("batch")

	stored := 0
	var rowErrs []error
	for i := range rows {
		tx.SavePoint("row")
		if err := tx.Clauses(onConflict).Create(&rows[i]).Error; err != nil {
			tx.RollbackTo("row")
			rowErrs = append(rowErrs, err)
			continue
		}
		stored++
	}

	return stored, rowErrs
}
