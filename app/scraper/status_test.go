package scraper

import "testing"

func TestNormalizeStatus_Codes(t *testing.T) {
	tests := map[string]string{
		"SOLVED":      StatusSolved,
		"ANSWERED":    StatusAnswered,
		"REPLIED":     StatusAnswered,
		"NOT_SOLVED":  StatusUnsolved,
		"NOT_REPLIED": StatusSubmitted,
		"PENDING":     StatusSubmitted,
		"IN_REPLICA":  StatusInRebuttal,
		"EVALUATED":   StatusEvaluated,
	}
	for raw, expected := range tests {
		if got := normalizeStatus(raw); got != expected {
			t.Errorf("normalizeStatus(%q) = %q, expected %q", raw, got, expected)
		}
	}
}

func TestNormalizeStatus_Labels(t *testing.T) {
	tests := map[string]string{
		"Resolvido":      StatusSolved,
		"Respondida":     StatusAnswered,
		"Não respondida": StatusSubmitted,
		"Não resolvido":  StatusUnsolved,
		"Em réplica":     StatusInRebuttal,
		"Avaliada":       StatusEvaluated,
	}
	for raw, expected := range tests {
		if got := normalizeStatus(raw); got != expected {
			t.Errorf("normalizeStatus(%q) = %q, expected %q", raw, got, expected)
		}
	}
}

func TestNormalizeStatus_EmptyMeansSubmitted(t *testing.T) {
	if got := normalizeStatus(""); got != StatusSubmitted {
		t.Errorf("Expected %q for empty status, got %q", StatusSubmitted, got)
	}
}

func TestNormalizeStatus_UnknownPassesThroughFolded(t *testing.T) {
	if got := normalizeStatus("Situação Nova"); got != "situacao nova" {
		t.Errorf("Expected folded passthrough, got %q", got)
	}
}
