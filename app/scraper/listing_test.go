package scraper

import (
	"testing"
)

func TestParseListing_FromPayload(t *testing.T) {
	html := listingHTML("LAST", `[
		{"id":"1","title":"Primeira","description":"texto da primeira reclamação","url":"/primeira_A1"},
		{"id":"2","title":"Segunda","description":"texto da segunda reclamação","url":"/segunda_A2"}
	]`)

	page, err := parseListing(html)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(page.Entries))
	}
	if page.Entries[0].Record.ExternalID != "1" {
		t.Errorf("Expected external id 1, got %s", page.Entries[0].Record.ExternalID)
	}
	if page.Entries[1].DetailPath != "/segunda_A2" {
		t.Errorf("Expected detail path preserved, got %s", page.Entries[1].DetailPath)
	}
}

func TestParseListing_MarkupFallback(t *testing.T) {
	html := `<html><body>
		<a id="info_segmento_hero"><p>Farmácias</p></a>
		<div data-testid="complaint-card"><a href="/atraso-na-entrega_B7">Atraso na entrega</a></div>
		<div data-testid="complaint-card"><a href="/cobranca-indevida_B8">Cobrança indevida</a></div>
	</body></html>`

	page, err := parseListing(html)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("Expected 2 entries from markup fallback, got %d", len(page.Entries))
	}
	if page.Entries[0].Record.ExternalID != "B7" {
		t.Errorf("Expected external id B7, got %s", page.Entries[0].Record.ExternalID)
	}
	if page.Entries[0].Record.Title != "Atraso na entrega" {
		t.Errorf("Expected link text as title, got %q", page.Entries[0].Record.Title)
	}
	if page.Category != "Farmácias" {
		t.Errorf("Expected page category Farmácias, got %q", page.Category)
	}
	if page.Entries[0].Record.Category != "Farmácias" {
		t.Errorf("Expected category backfilled on entries, got %q", page.Entries[0].Record.Category)
	}
}

func TestParseListing_NoEntries(t *testing.T) {
	_, err := parseListing(`<html><body><p>página vazia</p></body></html>`)
	if err != errNoComplaints {
		t.Errorf("Expected errNoComplaints, got %v", err)
	}
}

func TestParseListing_PayloadWinsOverMarkup(t *testing.T) {
	html := `<html><body>
		<script id="__NEXT_DATA__" type="application/json">
		{"props":{"pageProps":{"complaints":{"LAST":[{"id":"9","title":"Do payload","description":"texto"}]}}}}
		</script>
		<div data-testid="complaint-card"><a href="/do-markup_M1">Do markup</a></div>
	</body></html>`

	page, err := parseListing(html)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(page.Entries) != 1 || page.Entries[0].Record.ExternalID != "9" {
		t.Errorf("Expected the payload entry only, got %+v", page.Entries)
	}
}
