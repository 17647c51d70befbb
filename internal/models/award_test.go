package models

import "testing"

func TestAwardFinancingType(t *testing.T) {
	issuer := "DE CRÉDITO / INTERBANK"
	noGuarantee := FinancingNoGuarantee
	notFound := FinancingNotFound
	connError := FinancingConnectionError
	statusError := "ERROR-503"
	empty := ""

	cases := []struct {
		name   string
		entity *string
		want   string
	}{
		{"unenriched", nil, ""},
		{"real issuer", &issuer, FinancingTypeGuarantee},
		{"no guarantee", &noGuarantee, FinancingTypeRetention},
		{"not found", &notFound, ""},
		{"connection error", &connError, ""},
		{"status error", &statusError, ""},
		{"empty", &empty, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			award := Award{FinancingEntity: tc.entity}
			if got := award.FinancingType(); got != tc.want {
				t.Fatalf("FinancingType = %q, want %q", got, tc.want)
			}
		})
	}
}
