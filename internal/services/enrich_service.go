package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/scraping050/proyecto-garantias-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrichSummary aggregates the outer enrichment loop for the run report.
type EnrichSummary struct {
	Batches     int `json:"batches"`
	Processed   int `json:"processed"`
	Sentinels   int `json:"sentinels"`
	Consortiums int `json:"consortiums"`
	Documents   int `json:"documents"`
}

// enrichOutcome is one worker's result: the financing-entity value to write
// plus any consortium facts gathered along the way. Database writes happen
// after the concurrent phase, never inside it.
type enrichOutcome struct {
	awardID  string
	entity   string
	sentinel bool
	members  []models.ConsortiumMember
	document bool
}

type EnrichService struct {
	db          *gorm.DB
	contracts   ContractFetcher
	logService  LogWriter
	artifactDir string
	batchSize   int
	workers     int
	// retryTransient reselects awards whose sentinel marks a transient
	// failure instead of treating every sentinel as terminal.
	retryTransient bool
}

func NewEnrichService(db *gorm.DB, contracts ContractFetcher, logService LogWriter, artifactDir string, batchSize int, workers int, retryTransient bool) (*EnrichService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if contracts == nil {
		return nil, errors.New("contract fetcher is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}
	if artifactDir == "" {
		return nil, errors.New("artifact dir is empty")
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if workers <= 0 {
		workers = 5
	}

	return &EnrichService{
		db:             db,
		contracts:      contracts,
		logService:     logService,
		artifactDir:    artifactDir,
		batchSize:      batchSize,
		workers:        workers,
		retryTransient: retryTransient,
	}, nil
}

// Enrich runs bounded batches until no candidates remain or maxBatches is
// reached. A write-back failure is fatal for the run; everything narrower is
// converted into a sentinel.
func (s *EnrichService) Enrich(ctx context.Context, maxBatches int, eventID *string) (EnrichSummary, error) {
	if s == nil {
		return EnrichSummary{}, errors.New("enrich service is nil")
	}
	if s.db == nil {
		return EnrichSummary{}, errors.New("db is nil")
	}
	if maxBatches <= 0 {
		maxBatches = 1
	}

	var summary EnrichSummary
	for batch := 0; batch < maxBatches; batch++ {
		candidates, err := s.selectCandidates(ctx)
		if err != nil {
			return summary, err
		}
		if len(candidates) == 0 {
			break
		}

		summary.Batches++

		outcomes := RunPool(ctx, s.workers, candidates, func(ctx context.Context, award models.Award) enrichOutcome {
			return s.enrichAward(ctx, award, eventID)
		})

		if err := s.storeOutcomes(ctx, outcomes, eventID); err != nil {
			return summary, err
		}

		for _, outcome := range outcomes {
			summary.Processed++
			if outcome.sentinel {
				summary.Sentinels++
			}
			if len(outcome.members) > 0 {
				summary.Consortiums++
			}
			if outcome.document {
				summary.Documents++
			}
		}
	}

	return summary, nil
}

func (s *EnrichService) selectCandidates(ctx context.Context) ([]models.Award, error) {
	query := s.db.WithContext(ctx).
		Where("contract_id IS NOT NULL AND contract_id <> ''")

	if s.retryTransient {
		query = query.Where(
			"financing_entity IS NULL OR financing_entity = ? OR financing_entity LIKE 'ERROR-5%'",
			models.FinancingConnectionError,
		)
	} else {
		query = query.Where("financing_entity IS NULL")
	}

	var candidates []models.Award
	if err := query.Order("award_id").Limit(s.batchSize).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("select enrichment candidates: %w", err)
	}

	return candidates, nil
}

func (s *EnrichService) enrichAward(ctx context.Context, award models.Award, eventID *string) enrichOutcome {
	outcome := enrichOutcome{awardID: award.AwardID}

	resp, err := s.contracts.GetContract(ctx, award.ContractID)
	if err != nil {
		failMsg := fmt.Sprintf("contract %s: %v", award.ContractID, err)
		_ = s.logService.CreateLog(ctx, eventID, LogActionEnrichAPI, LogOutcomeFail, &failMsg)
		outcome.entity = models.FinancingConnectionError
		outcome.sentinel = true
		return outcome
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		outcome.entity = models.FinancingNotFound
		outcome.sentinel = true
		return outcome
	case resp.StatusCode != http.StatusOK:
		outcome.entity = fmt.Sprintf("ERROR-%d", resp.StatusCode)
		outcome.sentinel = true
		failMsg := fmt.Sprintf("contract %s: status %d", award.ContractID, resp.StatusCode)
		_ = s.logService.CreateLog(ctx, eventID, LogActionEnrichAPI, LogOutcomeFail, &failMsg)
		return outcome
	}

	outcome.entity = joinIssuers(resp.Guarantees)
	if outcome.entity == models.FinancingNoGuarantee {
		outcome.sentinel = true
	}

	// The consortium sub-step never changes the primary outcome.
	if strings.Contains(strings.ToUpper(award.WinnerName), ConsortiumMarker) {
		s.resolveConsortium(ctx, award, resp, &outcome, eventID)
	}

	return outcome
}

func joinIssuers(guarantees []ContractGuarantee) string {
	seen := map[string]bool{}
	issuers := make([]string, 0, len(guarantees))
	for _, guarantee := range guarantees {
		issuer := NormalizeIssuer(guarantee.EntidadFinanciera)
		if issuer == "" || seen[issuer] {
			continue
		}
		seen[issuer] = true
		issuers = append(issuers, issuer)
	}

	if len(issuers) == 0 {
		return models.FinancingNoGuarantee
	}

	return strings.Join(issuers, " / ")
}

func (s *EnrichService) resolveConsortium(ctx context.Context, award models.Award, resp ContractResponse, outcome *enrichOutcome, eventID *string) {
	members := resp.Members()
	if len(members) > 0 {
		for _, member := range members {
			taxID := strings.TrimSpace(string(member.TaxID))
			if taxID == "" {
				taxID = WinnerTaxIDNone
			}
			name := strings.TrimSpace(member.Name)
			if name == "" {
				name = MemberNameUnknown
			}

			outcome.members = append(outcome.members, models.ConsortiumMember{
				ContractID:       award.ContractID,
				MemberTaxID:      taxID,
				MemberName:       name,
				ParticipationPct: parseRawFloat(member.Pct),
			})
		}
		return
	}

	documentID := resp.DocumentID()
	if documentID == "" {
		return
	}

	destPath := filepath.Join(s.artifactDir, artifactFileName(award.ContractID))
	if err := s.contracts.DownloadDocument(ctx, documentID, destPath); err != nil {
		failMsg := fmt.Sprintf("document %s contract %s: %v", documentID, award.ContractID, err)
		_ = s.logService.CreateLog(ctx, eventID, LogActionDocDownload, LogOutcomeFail, &failMsg)
		return
	}

	outcome.document = true
	successMsg := fmt.Sprintf("document %s saved for contract %s", documentID, award.ContractID)
	_ = s.logService.CreateLog(ctx, eventID, LogActionDocDownload, LogOutcomeSuccess, &successMsg)
}

func artifactFileName(contractID string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, contractID)

	return "contrato_" + sanitized + ".pdf"
}

// storeOutcomes persists one batch: consortium member upserts plus a single
// CASE update writing every financing-entity outcome keyed by award id.
func (s *EnrichService) storeOutcomes(ctx context.Context, outcomes []enrichOutcome, eventID *string) error {
	var members []models.ConsortiumMember
	for _, outcome := range outcomes {
		members = append(members, outcome.members...)
	}

	if len(members) > 0 {
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contract_id"}, {Name: "member_tax_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"member_name", "participation_pct"}),
		}).Create(&members).Error; err != nil {
			failMsg := fmt.Sprintf("store consortium members: %v", err)
			_ = s.logService.CreateLog(ctx, eventID, LogActionEnrichStore, LogOutcomeFail, &failMsg)
			return fmt.Errorf("store consortium members: %w", err)
		}
	}

	if len(outcomes) == 0 {
		return nil
	}

	var builder strings.Builder
	args := make([]interface{}, 0, len(outcomes)*3)
	builder.WriteString("UPDATE awards SET financing_entity = CASE award_id")
	for _, outcome := range outcomes {
		builder.WriteString(" WHEN ? THEN ?")
		args = append(args, outcome.awardID, outcome.entity)
	}
	builder.WriteString(" END WHERE award_id IN (")
	for i, outcome := range outcomes {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
		args = append(args, outcome.awardID)
	}
	builder.WriteString(")")

	if err := s.db.WithContext(ctx).Exec(builder.String(), args...).Error; err != nil {
		failMsg := fmt.Sprintf("store enrichment batch: %v", err)
		_ = s.logService.CreateLog(ctx, eventID, LogActionEnrichStore, LogOutcomeFail, &failMsg)
		return fmt.Errorf("store enrichment batch: %w", err)
	}

	successMsg := fmt.Sprintf("stored enrichment outcomes=%d members=%d", len(outcomes), len(members))
	_ = s.logService.CreateLog(ctx, eventID, LogActionEnrichStore, LogOutcomeSuccess, &successMsg)

	return nil
}
