package services

import "encoding/json"

// Release documents are partial-data tolerant: every nested field may be
// absent and every consumer supplies a default instead of failing.

type Release struct {
	OCID            string           `json:"ocid"`
	Date            string           `json:"date"`
	CompiledRelease *CompiledRelease `json:"compiledRelease"`
}

type CompiledRelease struct {
	OCID      string        `json:"ocid"`
	ID        string        `json:"id"`
	Date      string        `json:"date"`
	Tender    *TenderDoc    `json:"tender"`
	Buyer     *PartyRef     `json:"buyer"`
	Parties   []Party       `json:"parties"`
	Contracts []ContractDoc `json:"contracts"`
	Awards    []AwardDoc    `json:"awards"`
}

type TenderDoc struct {
	ID                       string    `json:"id"`
	Title                    string    `json:"title"`
	Description              string    `json:"description"`
	ProcurementMethodDetails string    `json:"procurementMethodDetails"`
	MainProcurementCategory  string    `json:"mainProcurementCategory"`
	Status                   string    `json:"status"`
	Value                    *ValueDoc `json:"value"`
	Items                    []ItemDoc `json:"items"`
}

// Amount stays raw: portals emit it as a number, a quoted number, or null,
// and an odd value must degrade to zero instead of poisoning the release.
type ValueDoc struct {
	Amount   json.RawMessage `json:"amount"`
	Currency string          `json:"currency"`
}

type ItemDoc struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	Classification *struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	} `json:"classification"`
}

type PartyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Party struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Address *AddressDoc `json:"address"`
}

type AddressDoc struct {
	Department  string `json:"department"`
	Region      string `json:"region"`
	Locality    string `json:"locality"`
	CountryName string `json:"countryName"`
}

type ContractDoc struct {
	ID      string `json:"id"`
	AwardID string `json:"awardID"`
}

type AwardDoc struct {
	ID            string        `json:"id"`
	Date          string        `json:"date"`
	Status        string        `json:"status"`
	StatusDetails string        `json:"statusDetails"`
	Value         *ValueDoc     `json:"value"`
	Suppliers     []SupplierDoc `json:"suppliers"`
}

type SupplierDoc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
