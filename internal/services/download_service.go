package services

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DownloadStatusPresent = "PRESENT"
	DownloadStatusFetched = "FETCHED"
	DownloadStatusFailed  = "FAILED"
)

var zipSignature = []byte{'P', 'K', 0x03, 0x04}
var gzipSignature = []byte{0x1f, 0x8b}

// DownloadOutcome reports how a single (year, month) unit ended. Failures are
// carried in Message and never abort sibling units.
type DownloadOutcome struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type DownloadService struct {
	client     *http.Client
	logService LogWriter
	storeDir   string
	sourceTag  string
}

func NewDownloadService(logService LogWriter, client *http.Client, storeDir string, sourceTag string) (*DownloadService, error) {
	if logService == nil {
		return nil, errors.New("log service is nil")
	}
	if storeDir == "" {
		return nil, errors.New("store dir is empty")
	}
	if sourceTag == "" {
		return nil, errors.New("source tag is empty")
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	return &DownloadService{
		client:     client,
		logService: logService,
		storeDir:   storeDir,
		sourceTag:  sourceTag,
	}, nil
}

// PayloadFileName is the deterministic local name for one reporting period.
func (s *DownloadService) PayloadFileName(year int, month int) string {
	return fmt.Sprintf("%d-%02d_%s.json", year, month, s.sourceTag)
}

func (s *DownloadService) DownloadAll(ctx context.Context, links []PeriodLink, workers int, eventID *string) ([]DownloadOutcome, error) {
	if s == nil {
		return nil, errors.New("download service is nil")
	}
	if s.client == nil {
		return nil, errors.New("http client is nil")
	}
	if s.logService == nil {
		return nil, errors.New("log service is nil")
	}

	if err := os.MkdirAll(s.storeDir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	outcomes := RunPool(ctx, workers, links, func(ctx context.Context, link PeriodLink) DownloadOutcome {
		return s.downloadPeriod(ctx, link, eventID)
	})

	return outcomes, nil
}

func (s *DownloadService) downloadPeriod(ctx context.Context, link PeriodLink, eventID *string) DownloadOutcome {
	outcome := DownloadOutcome{Year: link.Year, Month: link.Month}

	payloadPath := filepath.Join(s.storeDir, s.PayloadFileName(link.Year, link.Month))
	digestPath := strings.TrimSuffix(payloadPath, ".json") + ".sha"

	fresh := false
	if info, err := os.Stat(payloadPath); err == nil && info.Size() > 0 {
		outcome.Status = DownloadStatusPresent
	} else {
		if err := s.fetchPayload(ctx, link.PayloadURL, payloadPath); err != nil {
			failMsg := fmt.Sprintf("download %d-%02d: %v", link.Year, link.Month, err)
			_ = s.logService.CreateLog(ctx, eventID, LogActionFileDownload, LogOutcomeFail, &failMsg)
			outcome.Status = DownloadStatusFailed
			outcome.Message = err.Error()
			return outcome
		}

		fresh = true
		outcome.Status = DownloadStatusFetched
		successMsg := fmt.Sprintf("downloaded %s", filepath.Base(payloadPath))
		_ = s.logService.CreateLog(ctx, eventID, LogActionFileDownload, LogOutcomeSuccess, &successMsg)
	}

	// Digest fetch is always soft: it never changes the payload outcome.
	if link.DigestURL != "" {
		_, digestErr := os.Stat(digestPath)
		if fresh || digestErr != nil {
			if err := s.fetchDigest(ctx, link.DigestURL, digestPath); err != nil {
				failMsg := fmt.Sprintf("digest %d-%02d: %v", link.Year, link.Month, err)
				_ = s.logService.CreateLog(ctx, eventID, LogActionDigestDownload, LogOutcomeFail, &failMsg)
			}
		}
	}

	return outcome
}

func (s *DownloadService) fetchPayload(ctx context.Context, payloadURL string, destPath string) error {
	if payloadURL == "" {
		return errors.New("payload url is empty")
	}

	tmpPath := destPath + ".tmp"
	defer os.Remove(tmpPath)

	if err := s.fetchToFile(ctx, payloadURL, tmpPath); err != nil {
		return err
	}

	return normalizePayload(tmpPath, destPath)
}

func (s *DownloadService) fetchDigest(ctx context.Context, digestURL string, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, digestURL, nil)
	if err != nil {
		return fmt.Errorf("build digest request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download digest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("digest download status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read digest: %w", err)
	}

	if err := os.WriteFile(destPath, bytes.TrimSpace(body), 0644); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}

	return nil
}

func (s *DownloadService) fetchToFile(ctx context.Context, rawURL string, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download payload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payload download status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return nil
}

// normalizePayload inspects the fetched bytes by signature, not by extension,
// and materializes plain JSON at destPath.
func normalizePayload(tmpPath string, destPath string) error {
	header := make([]byte, 4)
	in, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	n, err := io.ReadFull(in, header)
	_ = in.Close()
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read signature: %w", err)
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, zipSignature):
		return extractZipPayload(tmpPath, destPath)
	case bytes.HasPrefix(header, gzipSignature):
		return extractGzipPayload(tmpPath, destPath)
	default:
		return os.Rename(tmpPath, destPath)
	}
}

func extractZipPayload(tmpPath string, destPath string) error {
	reader, err := zip.OpenReader(tmpPath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(file.Name), ".json") {
			continue
		}

		member, err := file.Open()
		if err != nil {
			return fmt.Errorf("open zip member: %w", err)
		}
		err = writeStream(destPath, member)
		_ = member.Close()
		if err != nil {
			return err
		}
		return nil
	}

	return errors.New("no json member found in zip")
}

func extractGzipPayload(tmpPath string, destPath string) error {
	in, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("read gzip header: %w", err)
	}
	defer gz.Close()

	return writeStream(destPath, gz)
}

func writeStream(destPath string, r io.Reader) error {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create payload file: %w", err)
	}

	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("write payload file: %w", err)
	}

	return out.Close()
}
