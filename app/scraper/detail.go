package scraper

import (
	"fmt"
	"strings"

	"codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
)

// Per-field markup selectors for detail pages, each a fallback chain. Every
// field is extracted independently: one selector chain coming up empty never
// voids the others, and missing values stay empty rather than failing the
// record.
var (
	detailTitleSelectors = []string{
		`h1[data-testid="complaint-title"]`,
		`[data-testid="complaint-title"]`,
		`h1.sc-lzlu7c-3`,
	}
	detailTextSelectors = []string{
		`p[data-testid="complaint-description"]`,
		`[data-testid="complaint-description"]`,
		`div.complaint-body p`,
	}
	detailDateSelectors = []string{
		`span[data-testid="complaint-creation-date"]`,
		`[data-testid="complaint-creation-date"]`,
	}
	detailStatusSelectors = []string{
		`span[data-testid="complaint-status"]`,
		`[data-testid="complaint-status"]`,
	}
	detailLocationSelectors = []string{
		`span[data-testid="complaint-location"]`,
		`[data-testid="complaint-location"]`,
	}
	detailResponseSelectors = []string{
		`div[data-testid="complaint-interaction"] p`,
		`[data-testid="complaint-interaction"]`,
	}
	detailEvaluationSelectors = []string{
		`div[data-testid="complaint-evaluation-interaction"] p`,
		`[data-testid="complaint-evaluation-interaction"]`,
	}
)

// parseDetail enriches a listing-derived record with detail page data.
// Strategy order per field: embedded JSON payload, then markup selectors,
// then (for the complaint text only) generic article extraction. The base
// record always survives: a detail page that yields nothing is merged as
// all-empty and the listing data stands.
func parseDetail(html string, base ComplaintRecord) (ComplaintRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return base, fmt.Errorf("failed to parse detail html: %w", err)
	}

	var detail ComplaintRecord
	if c := detailPayloadComplaint(doc); c != nil {
		detail = c.record()
	}

	if detail.Title == "" {
		detail.Title = firstText(doc, detailTitleSelectors)
	}
	if detail.Text == "" {
		detail.Text = firstText(doc, detailTextSelectors)
	}
	if detail.Text == "" {
		detail.Text = readableText(html)
	}
	if detail.ComplaintDate.IsZero() {
		if raw := firstText(doc, detailDateSelectors); raw != "" {
			detail.ComplaintDate = parseComplaintDate(raw)
		}
	}
	if detail.Status == "" {
		if raw := firstText(doc, detailStatusSelectors); raw != "" {
			detail.Status = normalizeStatus(raw)
		}
	}
	if detail.Location == "" {
		detail.Location = firstText(doc, detailLocationSelectors)
	}
	if detail.CompanyResponseText == "" {
		detail.CompanyResponseText = firstText(doc, detailResponseSelectors)
	}
	if detail.CustomerEvaluation == "" {
		detail.CustomerEvaluation = firstText(doc, detailEvaluationSelectors)
	}

	return base.merge(detail), nil
}

// readableText is the last-resort extraction for the complaint body: strip
// the page down to its main article content and use that text.
func readableText(html string) string {
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}
	return cleanText(article.TextContent)
}
