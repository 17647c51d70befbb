package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// flexString tolerates identifiers the API emits as either strings or
// numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	value := strings.TrimSpace(string(data))
	if value == "null" {
		*f = ""
		return nil
	}
	*f = flexString(strings.Trim(value, `"`))
	return nil
}

type ContractGuarantee struct {
	EntidadFinanciera string `json:"entidadFinanciera"`
}

type ContractMemberDoc struct {
	TaxID flexString      `json:"numeroRuc"`
	Name  string          `json:"nombreRazonSocial"`
	Pct   json.RawMessage `json:"porcentajeParticipacion"`
}

// ContractResponse is the decoded contract-detail body. Membership may arrive
// under either of two field names; the document id under any of three.
type ContractResponse struct {
	StatusCode int `json:"-"`

	Guarantees    []ContractGuarantee `json:"listaGarantiaContrato"`
	Consortium    []ContractMemberDoc `json:"listaConsorcio"`
	ConsortiumAlt []ContractMemberDoc `json:"miembrosConsorcio"`

	DocContractID flexString `json:"idContratoDocumento"`
	DocSignedID   flexString `json:"idDocumentoFirmado"`
	DocID         flexString `json:"idDocumento"`
}

// Members returns the membership list under whichever field the API used.
func (r ContractResponse) Members() []ContractMemberDoc {
	if len(r.Consortium) > 0 {
		return r.Consortium
	}
	return r.ConsortiumAlt
}

// DocumentID resolves the downloadable document id in priority order.
func (r ContractResponse) DocumentID() string {
	for _, id := range []flexString{r.DocContractID, r.DocSignedID, r.DocID} {
		if id != "" {
			return string(id)
		}
	}
	return ""
}

type ContractAPIService struct {
	client      *http.Client
	contractURL string
	documentURL string
}

func NewContractAPIService(client *http.Client, contractBaseURL string, documentBaseURL string, timeout time.Duration) (*ContractAPIService, error) {
	if contractBaseURL == "" {
		return nil, errors.New("contract base url is empty")
	}
	if documentBaseURL == "" {
		documentBaseURL = contractBaseURL
	}
	if client == nil {
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &ContractAPIService{
		client:      client,
		contractURL: strings.TrimRight(contractBaseURL, "/"),
		documentURL: strings.TrimRight(documentBaseURL, "/"),
	}, nil
}

// GetContract fetches the contract detail. Non-200 responses come back with
// only StatusCode set and no error; errors mean the call or decode failed.
func (s *ContractAPIService) GetContract(ctx context.Context, contractID string) (ContractResponse, error) {
	if s == nil {
		return ContractResponse{}, errors.New("contract api service is nil")
	}
	if s.client == nil {
		return ContractResponse{}, errors.New("http client is nil")
	}
	if contractID == "" {
		return ContractResponse{}, errors.New("contract id is empty")
	}

	endpoint := s.contractURL + "/" + url.PathEscape(contractID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("build contract request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return ContractResponse{}, fmt.Errorf("fetch contract: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ContractResponse{StatusCode: resp.StatusCode}, nil
	}

	var decoded ContractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ContractResponse{}, fmt.Errorf("decode contract: %w", err)
	}
	decoded.StatusCode = resp.StatusCode

	return decoded, nil
}

// DownloadDocument streams a contract document to destPath.
func (s *ContractAPIService) DownloadDocument(ctx context.Context, documentID string, destPath string) error {
	if s == nil {
		return errors.New("contract api service is nil")
	}
	if documentID == "" {
		return errors.New("document id is empty")
	}
	if destPath == "" {
		return errors.New("dest path is empty")
	}

	endpoint := s.documentURL + "/" + url.PathEscape(documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build document request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("document download status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create document file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("write document file: %w", err)
	}

	return out.Close()
}
