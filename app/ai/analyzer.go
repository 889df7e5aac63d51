package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Analysis is the model's structured verdict on one complaint. Field names
// stay in pt-BR on the wire because the prompt asks for them that way.
type Analysis struct {
	Sentiment      string   `json:"sentimento"`
	SentimentScore float64  `json:"nota"`
	Categories     []string `json:"categorias"`
	Themes         []string `json:"temas"`
	Urgency        float64  `json:"urgencia"`
}

const (
	SentimentPositive = "Positivo"
	SentimentNeutral  = "Neutro"
	SentimentNegative = "Negativo"
)

// Analyzer runs sentiment, classification and urgency scoring in a single
// model call.
type Analyzer struct {
	client Client
}

func NewAnalyzer(client Client) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze returns the model's verdict on a complaint. A model failure is an
// error; a malformed model answer degrades to neutral defaults, since one
// bad answer must not stall the analysis queue.
func (a *Analyzer) Analyze(ctx context.Context, title, text string) (*Analysis, error) {
	prompt := fmt.Sprintf(analysisPromptTemplate, title, text)
	raw, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis generation failed: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &analysis); err != nil {
		slog.Warn("Malformed analysis answer, using defaults", "error", err)
		return defaultAnalysis(), nil
	}
	return sanitizeAnalysis(&analysis), nil
}

func defaultAnalysis() *Analysis {
	return &Analysis{
		Sentiment:      SentimentNeutral,
		SentimentScore: 5.0,
		Categories:     []string{"outros"},
		Urgency:        5.0,
	}
}

// sanitizeAnalysis clamps scores and fills missing fields so downstream
// code never sees out-of-range values.
func sanitizeAnalysis(a *Analysis) *Analysis {
	switch a.Sentiment {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
	default:
		a.Sentiment = SentimentNeutral
	}
	a.SentimentScore = clampScore(a.SentimentScore)
	a.Urgency = clampScore(a.Urgency)
	if len(a.Categories) == 0 {
		a.Categories = []string{"outros"}
	}
	return a
}

// MarshalClassification encodes the category and theme lists as the JSON
// blob stored alongside the complaint.
func MarshalClassification(a *Analysis) string {
	blob, err := json.Marshal(map[string][]string{
		"categorias": a.Categories,
		"temas":      a.Themes,
	})
	if err != nil {
		return `{"categorias":["outros"],"temas":[]}`
	}
	return string(blob)
}

// PrimaryCategory reads the first category back out of a stored
// classification blob.
func PrimaryCategory(classification string) string {
	var decoded struct {
		Categories []string `json:"categorias"`
	}
	if err := json.Unmarshal([]byte(classification), &decoded); err != nil || len(decoded.Categories) == 0 {
		return "outros"
	}
	return decoded.Categories[0]
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
