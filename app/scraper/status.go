package scraper

// Normalized complaint lifecycle states. Raw values from the target come in
// two vocabularies, API-style codes inside embedded JSON and human pt-BR
// labels in markup, and both map onto this set.
const (
	StatusSubmitted  = "submitted"
	StatusAnswered   = "answered"
	StatusSolved     = "solved"
	StatusUnsolved   = "unsolved"
	StatusInRebuttal = "in-rebuttal"
	StatusEvaluated  = "evaluated"
)

var statusByCode = map[string]string{
	"pending":     StatusSubmitted,
	"not_replied": StatusSubmitted,
	"replied":     StatusAnswered,
	"answered":    StatusAnswered,
	"solved":      StatusSolved,
	"not_solved":  StatusUnsolved,
	"in_replica":  StatusInRebuttal,
	"evaluated":   StatusEvaluated,
}

var statusByLabel = map[string]string{
	"nao respondida": StatusSubmitted,
	"em analise":     StatusSubmitted,
	"respondida":     StatusAnswered,
	"resolvido":      StatusSolved,
	"resolvida":      StatusSolved,
	"nao resolvido":  StatusUnsolved,
	"nao resolvida":  StatusUnsolved,
	"em replica":     StatusInRebuttal,
	"avaliada":       StatusEvaluated,
	"avaliado":       StatusEvaluated,
}

// normalizeStatus maps a raw status string to the normalized vocabulary.
// Unknown values pass through folded so nothing is silently lost; empty
// input means the complaint is still awaiting a response.
func normalizeStatus(raw string) string {
	folded := foldText(raw)
	if folded == "" {
		return StatusSubmitted
	}
	if s, ok := statusByCode[folded]; ok {
		return s
	}
	if s, ok := statusByLabel[folded]; ok {
		return s
	}
	return folded
}
