package services

import (
	"strconv"
	"strings"
	"time"
)

const (
	// TrackedProcedureType is the only procedure loaded; everything else in
	// the payload is dropped before any transformation runs.
	TrackedProcedureType = "Licitación Pública"

	StatusUnknown     = "DESCONOCIDO"
	ItemStatusPending = "PENDIENTE"
	WinnerNameUnknown = "SIN GANADOR"
	WinnerTaxIDNone   = "SIN RUC"
	MemberNameUnknown = "SIN NOMBRE"
	LocationDefault   = "PERU"
	CategoryDefault   = "OTROS"

	ConsortiumMarker = "CONSORCIO"

	maxTitleLen       = 300
	maxDescriptionLen = 1000
	maxNameLen        = 255
	maxLocationLen    = 255
)

var categoryLookup = map[string]string{
	"goods":              "BIENES",
	"works":              "OBRAS",
	"services":           "SERVICIOS",
	"consultingservices": "CONSULTORIA DE OBRAS",
}

var statusLookup = map[string]string{
	"active":       "CONVOCADO",
	"planned":      "PROGRAMADO",
	"complete":     "CONCLUIDO",
	"cancelled":    "CANCELADO",
	"unsuccessful": "DESIERTO",
	"awarded":      "ADJUDICADO",
}

// NormalizeDate takes the first 10 characters of a timestamp-ish string and
// returns the calendar date, or nil for anything that does not parse. It
// never fails.
func NormalizeDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if len(raw) < 10 {
		return nil
	}

	parsed, err := time.Parse("2006-01-02", raw[:10])
	if err != nil {
		return nil
	}

	return &parsed
}

// ParseAmount reads a monetary amount defensively: unparsable means zero.
func ParseAmount(value *ValueDoc) float64 {
	if value == nil {
		return 0
	}
	return parseRawFloat(value.Amount)
}

func parseRawFloat(raw []byte) float64 {
	trimmed := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if trimmed == "" || trimmed == "null" {
		return 0
	}

	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}

	return parsed
}

func Truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

// TranslateCategory maps the OCDS procurement category to the local
// vocabulary, passing unmapped values through uppercased.
func TranslateCategory(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CategoryDefault
	}
	if mapped, ok := categoryLookup[strings.ToLower(raw)]; ok {
		return mapped
	}
	return strings.ToUpper(raw)
}

// DeriveStatus prefers the first non-empty award statusDetails, then maps the
// tender's own status through the lookup table with an uppercase-passthrough
// default, then falls back to the unknown sentinel.
func DeriveStatus(tenderStatus string, awards []AwardDoc) string {
	for _, award := range awards {
		detail := strings.TrimSpace(award.StatusDetails)
		if detail != "" {
			return strings.ToUpper(detail)
		}
	}

	tenderStatus = strings.TrimSpace(tenderStatus)
	if tenderStatus == "" {
		return StatusUnknown
	}
	if mapped, ok := statusLookup[strings.ToLower(tenderStatus)]; ok {
		return mapped
	}
	return strings.ToUpper(tenderStatus)
}

// DeriveLocation finds the party matching the buyer id and assembles the
// composite plus decomposed location fields, defaulting to the country-level
// sentinel when no match or no sub-fields exist.
func DeriveLocation(buyer *PartyRef, parties []Party) (full string, department string, province string, district string) {
	if buyer == nil || buyer.ID == "" {
		return LocationDefault, "", "", ""
	}

	for _, party := range parties {
		if party.ID != buyer.ID || party.Address == nil {
			continue
		}

		department = strings.TrimSpace(party.Address.Department)
		province = strings.TrimSpace(party.Address.Region)
		district = strings.TrimSpace(party.Address.Locality)

		parts := make([]string, 0, 3)
		for _, part := range []string{department, province, district} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) == 0 {
			return LocationDefault, "", "", ""
		}

		return Truncate(strings.Join(parts, " - "), maxLocationLen), department, province, district
	}

	return LocationDefault, "", "", ""
}

// NormalizeIssuer uppercases a guarantee issuer name and strips the leading
// bank prefix so the same entity spelled both ways collapses to one value.
func NormalizeIssuer(raw string) string {
	issuer := strings.ToUpper(strings.TrimSpace(raw))
	issuer = strings.TrimSpace(strings.TrimPrefix(issuer, "BANCO "))
	return issuer
}
