package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var errNoComplaints = errors.New("no complaints found on page")

// listingEntry pairs a partial record from the listing page with the path
// of its detail page.
type listingEntry struct {
	Record     ComplaintRecord
	DetailPath string
}

type listingPage struct {
	Entries  []listingEntry
	Category string
}

// Markup fallback selectors, tried in order until one matches. The site
// reworks its card markup periodically; data-testid attributes are the most
// stable, hashed styled-component classes the least.
var listingLinkSelectors = []string{
	`div[data-testid="complaint-card"] a[href]`,
	`div[data-testid="complaints-list"] a[href]`,
	`a[data-testid="complaint-link"]`,
	`div.sc-1pe7b5t-0 a[href]`,
}

var listingCategorySelectors = []string{
	`a#info_segmento_hero p`,
	`[data-testid="segment-link"] p`,
}

// parseListing extracts the complaint entries of one listing page. The
// embedded JSON payload is the primary source; when it is absent the card
// markup is walked instead, yielding thinner partial records.
func parseListing(html string) (*listingPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing html: %w", err)
	}

	page := &listingPage{Category: firstText(doc, listingCategorySelectors)}

	for _, it := range listingPayloadItems(doc) {
		rec := it.record()
		if rec.ExternalID == "" {
			continue
		}
		if page.Category != "" && rec.Category == "" {
			rec.Category = page.Category
		}
		page.Entries = append(page.Entries, listingEntry{Record: rec, DetailPath: it.URL})
	}
	if len(page.Entries) > 0 {
		return page, nil
	}

	page.Entries = listingEntriesFromMarkup(doc, page.Category)
	if len(page.Entries) == 0 {
		return nil, errNoComplaints
	}
	return page, nil
}

func listingEntriesFromMarkup(doc *goquery.Document, category string) []listingEntry {
	for _, sel := range listingLinkSelectors {
		var entries []listingEntry
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || href == "" {
				return
			}
			id := externalIDFromPath(href)
			if id == "" {
				return
			}
			entries = append(entries, listingEntry{
				Record: ComplaintRecord{
					ExternalID: id,
					URLSlug:    strings.Trim(href, "/"),
					Title:      cleanText(s.Text()),
					Category:   category,
					Status:     StatusSubmitted,
				},
				DetailPath: href,
			})
		})
		if len(entries) > 0 {
			return entries
		}
	}
	return nil
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := cleanText(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
