package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

const testBaseURL = "https://www.reclameaqui.com.br/empresa/farmacia-exemplo"

// fakeProvider serves canned HTML keyed by URL. A URL mapped to the literal
// value "FAIL" makes navigation to it error out.
type fakeProvider struct {
	mu          sync.Mutex
	pages       map[string]string
	failAcquire bool

	navigated []string

	inFlight      int
	maxInFlight   int
	navigateDelay time.Duration
}

func (p *fakeProvider) Acquire(ctx context.Context) (Session, error) {
	if p.failAcquire {
		return nil, fmt.Errorf("browser is gone")
	}
	return &fakeSession{provider: p}, nil
}

func (p *fakeProvider) Close() {}

type fakeSession struct {
	provider   *fakeProvider
	currentURL string
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	p := s.provider

	p.mu.Lock()
	p.navigated = append(p.navigated, url)
	p.inFlight++
	if p.inFlight > p.maxInFlight {
		p.maxInFlight = p.inFlight
	}
	delay := p.navigateDelay
	html, ok := p.pages[url]
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()

	if !ok || html == "FAIL" {
		return fmt.Errorf("navigation failed for %s", url)
	}
	s.currentURL = url
	return nil
}

func (s *fakeSession) Content() (string, error) {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	return s.provider.pages[s.currentURL], nil
}

func (s *fakeSession) Close() {}

func listingPageURL(page int) string {
	return fmt.Sprintf("%s/lista-reclamacoes/?pagina=%d", testBaseURL, page)
}

func detailPageURL(id string) string {
	return fmt.Sprintf("https://www.reclameaqui.com.br/reclamacao-%s_%s/", strings.ToLower(id), id)
}

// fakeListing builds a listing page whose payload carries one item per ID,
// each with text long enough to survive the minimum-length gate.
func fakeListing(ids ...string) string {
	var items []string
	for _, id := range ids {
		items = append(items, fmt.Sprintf(
			`{"id":%q,"title":"Reclamação %s","description":"Texto da reclamação %s com tamanho suficiente","userName":"Cliente %s","status":"NOT_REPLIED","created":"2024-03-01T10:00:00","url":"/reclamacao-%s_%s"}`,
			id, id, id, id, strings.ToLower(id), id))
	}
	return listingHTML("LAST", "["+strings.Join(items, ",")+"]")
}

func fakeDetail(id string) string {
	return fmt.Sprintf(`<html><body>
		<script id="__NEXT_DATA__" type="application/json">
		{"props":{"pageProps":{"complaint":{
			"id":%q,"title":"Reclamação %s","description":"Descrição completa da reclamação %s vinda do detalhe",
			"userName":"Cliente %s","userCity":"Fortaleza","userState":"CE",
			"status":"ANSWERED","created":"2024-03-01T10:00:00",
			"interactions":[{"type":"ANSWER","message":"Resposta da empresa para %s.","created":"2024-03-02T09:00:00"}]
		}}}}
		</script>
	</body></html>`, id, id, id, id, id)
}

func newTestEngine(provider *fakeProvider, opts Options) *Engine {
	opts.BaseURL = testBaseURL
	return New(provider, opts)
}

func TestEngine_DeduplicatesAcrossPages(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		listingPageURL(1): fakeListing("A1", "A2", "A3"),
		listingPageURL(2): fakeListing("A2", "A3", "A4"),
	}}

	result := newTestEngine(provider, Options{MaxPages: 2}).Run(context.Background())

	if len(result.Records) != 4 {
		t.Fatalf("Expected 4 unique records, got %d", len(result.Records))
	}
	seen := make(map[string]bool)
	for _, rec := range result.Records {
		if seen[rec.ExternalID] {
			t.Errorf("Duplicate external id %s in results", rec.ExternalID)
		}
		seen[rec.ExternalID] = true
	}
	if len(result.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", result.Errors)
	}
}

func TestEngine_PageFailureDoesNotAbortRun(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		listingPageURL(1): "FAIL",
		listingPageURL(2): fakeListing("B1", "B2"),
	}}

	result := newTestEngine(provider, Options{MaxPages: 2}).Run(context.Background())

	if len(result.Records) != 2 {
		t.Fatalf("Expected records from the healthy page, got %d", len(result.Records))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 ledger entry, got %d", len(result.Errors))
	}
	if result.Errors[0].Page != 1 {
		t.Errorf("Expected error recorded for page 1, got page %d", result.Errors[0].Page)
	}
}

func TestEngine_OnPageCompleteDeliversFullBatches(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		listingPageURL(1): fakeListing("C1", "C2"),
		listingPageURL(2): fakeListing("C3"),
	}}

	var pages []int
	var batchSizes []int
	engine := newTestEngine(provider, Options{
		MaxPages: 2,
		OnPageComplete: func(page int, records []ComplaintRecord) {
			pages = append(pages, page)
			batchSizes = append(batchSizes, len(records))
		},
	})
	result := engine.Run(context.Background())

	if len(pages) != 2 || pages[0] != 1 || pages[1] != 2 {
		t.Fatalf("Expected callbacks for pages 1 and 2 in order, got %v", pages)
	}
	if batchSizes[0] != 2 || batchSizes[1] != 1 {
		t.Errorf("Expected full page batches of 2 and 1, got %v", batchSizes)
	}
	if len(result.Records) != 3 {
		t.Errorf("Expected 3 records total, got %d", len(result.Records))
	}
}

func TestEngine_DiscardsTooShortText(t *testing.T) {
	// "exatamente" is exactly the 10-byte minimum; the cutoff is inclusive.
	short := listingHTML("LAST",
		`[{"id":"D1","title":"Curta","description":"curta","url":"/curta_D1"},
		  {"id":"D2","title":"Longa","description":"texto longo o bastante para passar","url":"/longa_D2"},
		  {"id":"D3","title":"Limite","description":"exatamente","url":"/limite_D3"}]`)
	provider := &fakeProvider{pages: map[string]string{listingPageURL(1): short}}

	result := newTestEngine(provider, Options{MaxPages: 1, MinTextLength: 10}).Run(context.Background())

	if len(result.Records) != 2 {
		t.Fatalf("Expected only the short record discarded, got %d records", len(result.Records))
	}
	survivors := map[string]bool{}
	for _, rec := range result.Records {
		survivors[rec.ExternalID] = true
	}
	if !survivors["D2"] {
		t.Error("Expected D2 to survive")
	}
	if !survivors["D3"] {
		t.Error("Expected the minimum-length D3 to survive")
	}
}

func TestEngine_DetailConcurrencyBound(t *testing.T) {
	ids := []string{"E1", "E2", "E3", "E4", "E5", "E6", "E7", "E8", "E9", "E10"}
	pages := map[string]string{listingPageURL(1): fakeListing(ids...)}
	for _, id := range ids {
		pages[detailPageURL(id)] = fakeDetail(id)
	}
	provider := &fakeProvider{pages: pages, navigateDelay: 10 * time.Millisecond}

	result := newTestEngine(provider, Options{
		MaxPages:     1,
		FetchDetails: true,
		Concurrency:  3,
	}).Run(context.Background())

	if len(result.Records) != 10 {
		t.Fatalf("Expected 10 records, got %d", len(result.Records))
	}
	// The listing navigation happens alone, so the watermark reflects the
	// detail fetches.
	if provider.maxInFlight > 3 {
		t.Errorf("Concurrency bound exceeded: %d simultaneous navigations", provider.maxInFlight)
	}
}

func TestEngine_DetailFailurePreservesListingPartial(t *testing.T) {
	pages := map[string]string{
		listingPageURL(1):  fakeListing("F1", "F2"),
		detailPageURL("F1"): fakeDetail("F1"),
		detailPageURL("F2"): "FAIL",
	}
	provider := &fakeProvider{pages: pages}

	result := newTestEngine(provider, Options{MaxPages: 1, FetchDetails: true}).Run(context.Background())

	if len(result.Records) != 2 {
		t.Fatalf("Expected both records, got %d", len(result.Records))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 ledger entry for the failed detail, got %d", len(result.Errors))
	}

	byID := make(map[string]ComplaintRecord)
	for _, rec := range result.Records {
		byID[rec.ExternalID] = rec
	}
	if byID["F1"].Location != "Fortaleza - CE" {
		t.Errorf("Expected detail-enriched record for F1, got %+v", byID["F1"])
	}
	if byID["F2"].Location != "" {
		t.Errorf("Expected listing partial for F2, got %+v", byID["F2"])
	}
	if byID["F2"].Text == "" {
		t.Errorf("Expected listing text preserved for F2")
	}
}

// Three-page walk with overlap and one failed detail: 10 + 6 + 10 unique
// records survive, the failed item keeps its listing data, and exactly one
// error is ledgered.
func TestEngine_OverlappingWalkWithOneFailure(t *testing.T) {
	page1 := []string{"G1", "G2", "G3", "G4", "G5", "G6", "G7", "G8", "G9", "G10"}
	page2 := []string{"G7", "G8", "G9", "G10", "G11", "G12", "G13", "G14", "G15", "G16"}
	page3 := []string{"G17", "G18", "G19", "G20", "G21", "G22", "G23", "G24", "G25", "G26"}

	pages := map[string]string{
		listingPageURL(1): fakeListing(page1...),
		listingPageURL(2): fakeListing(page2...),
		listingPageURL(3): fakeListing(page3...),
	}
	unique := make(map[string]bool)
	for _, ids := range [][]string{page1, page2, page3} {
		for _, id := range ids {
			if !unique[id] {
				unique[id] = true
				pages[detailPageURL(id)] = fakeDetail(id)
			}
		}
	}
	pages[detailPageURL("G13")] = "FAIL"
	provider := &fakeProvider{pages: pages}

	var delivered int
	result := newTestEngine(provider, Options{
		MaxPages:     3,
		FetchDetails: true,
		Concurrency:  3,
		OnPageComplete: func(page int, records []ComplaintRecord) {
			delivered += len(records)
		},
	}).Run(context.Background())

	if len(result.Records) != 26 {
		t.Fatalf("Expected 26 unique records, got %d", len(result.Records))
	}
	if delivered != 26 {
		t.Errorf("Expected all 26 records delivered through page callbacks, got %d", delivered)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected exactly 1 ledger entry, got %d", len(result.Errors))
	}

	for _, rec := range result.Records {
		if rec.ExternalID == "G13" {
			if rec.Text == "" || rec.Title == "" {
				t.Errorf("Expected listing partial preserved for failed detail, got %+v", rec)
			}
			if rec.Location != "" {
				t.Errorf("Expected no detail data on the failed record, got %+v", rec)
			}
		}
	}
}

func TestEngine_AdaptiveStopsWhenNoNewRecords(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		listingPageURL(1): fakeListing("H1", "H2"),
		listingPageURL(2): fakeListing("H1", "H2"),
		listingPageURL(3): fakeListing("H3"),
	}}

	result := newTestEngine(provider, Options{MaxPages: 0}).Run(context.Background())

	if len(result.Records) != 2 {
		t.Fatalf("Expected walk to stop after the all-duplicate page, got %d records", len(result.Records))
	}
	if len(provider.navigated) != 2 {
		t.Errorf("Expected 2 pages visited, got %d (%v)", len(provider.navigated), provider.navigated)
	}
}

func TestEngine_StrideSkipsPages(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		listingPageURL(1): fakeListing("I1"),
		listingPageURL(4): fakeListing("I2"),
		listingPageURL(7): fakeListing("I3"),
	}}

	result := newTestEngine(provider, Options{MaxPages: 3, StartPage: 1, PageStride: 3}).Run(context.Background())

	if len(result.Records) != 3 {
		t.Fatalf("Expected 3 records from strided pages, got %d", len(result.Records))
	}
	expected := []string{listingPageURL(1), listingPageURL(4), listingPageURL(7)}
	for i, url := range expected {
		if provider.navigated[i] != url {
			t.Errorf("Expected visit %d to be %s, got %s", i, url, provider.navigated[i])
		}
	}
}

func TestEngine_AcquireFailureStillReturnsResult(t *testing.T) {
	provider := &fakeProvider{failAcquire: true}

	result := newTestEngine(provider, Options{MaxPages: 2}).Run(context.Background())

	if result == nil {
		t.Fatal("Expected a result even when no session could be acquired")
	}
	if len(result.Records) != 0 {
		t.Errorf("Expected no records, got %d", len(result.Records))
	}
	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 ledger entry, got %d", len(result.Errors))
	}
}

func TestEngine_RecordsCarryScrapedAtAndDate(t *testing.T) {
	provider := &fakeProvider{pages: map[string]string{
		listingPageURL(1): fakeListing("J1"),
	}}

	result := newTestEngine(provider, Options{MaxPages: 1}).Run(context.Background())

	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(result.Records))
	}
	rec := result.Records[0]
	if rec.ScrapedAt.IsZero() {
		t.Error("Expected scraped_at to be set")
	}
	if rec.ComplaintDate.IsZero() {
		t.Error("Expected complaint date to never be zero")
	}
}
