package scraper

import (
	"sync"
	"time"
)

// ComplaintRecord is the unit of extraction. Listing pages produce partial
// records; the detail fetch fills the remaining fields. A record is immutable
// once delivered to the page callback.
type ComplaintRecord struct {
	ExternalID string
	URLSlug    string

	Title    string
	Text     string
	UserName string
	Location string
	Category string
	Status   string

	CompanyResponseText string
	CompanyResponseDate *time.Time
	CustomerEvaluation  string
	EvaluationDate      *time.Time

	ComplaintDate time.Time
	ScrapedAt     time.Time
}

// merge overlays detail-derived values on top of a listing-derived record.
// Detail wins except where it is empty.
func (r ComplaintRecord) merge(detail ComplaintRecord) ComplaintRecord {
	out := r
	if detail.Title != "" {
		out.Title = detail.Title
	}
	if detail.Text != "" {
		out.Text = detail.Text
	}
	if detail.UserName != "" {
		out.UserName = detail.UserName
	}
	if detail.Location != "" {
		out.Location = detail.Location
	}
	if detail.Category != "" {
		out.Category = detail.Category
	}
	if detail.Status != "" {
		out.Status = detail.Status
	}
	if detail.CompanyResponseText != "" {
		out.CompanyResponseText = detail.CompanyResponseText
	}
	if detail.CompanyResponseDate != nil {
		out.CompanyResponseDate = detail.CompanyResponseDate
	}
	if detail.CustomerEvaluation != "" {
		out.CustomerEvaluation = detail.CustomerEvaluation
	}
	if detail.EvaluationDate != nil {
		out.EvaluationDate = detail.EvaluationDate
	}
	if !detail.ComplaintDate.IsZero() {
		out.ComplaintDate = detail.ComplaintDate
	}
	return out
}

// ErrorEntry is one recoverable failure recorded during a crawl. The run
// never aborts on these; callers inspect the list post-hoc.
type ErrorEntry struct {
	Page    int    `json:"page"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message"`
}

// Options configures a single crawl.
type Options struct {
	// BaseURL is the company page on the complaints site, e.g.
	// https://www.reclameaqui.com.br/empresa/drogaria-exemplo
	BaseURL string

	// MaxPages bounds the listing walk. 0 enables adaptive mode: the walk
	// ends at the first page contributing zero new unique records.
	MaxPages  int
	StartPage int

	// PageStride is the increment between listing page numbers. The listing
	// surface returns overlapping result windows; skipping pages raises the
	// unique-results-per-fetch ratio. Tune per target site.
	PageStride int

	DelayMin time.Duration
	DelayMax time.Duration

	// Concurrency bounds simultaneous detail fetches (1-5). 1 degrades to
	// fully sequential fetching, which is a supported mode.
	Concurrency int

	// FetchDetails controls the speed/completeness trade-off: disabled, the
	// run is faster but records lack location, response and evaluation.
	FetchDetails bool

	// MinTextLength discards records with shorter complaint text as noise.
	MinTextLength int

	NavTimeout       time.Duration
	ChallengeTimeout time.Duration

	// DebugDir enables raw page snapshots when non-empty.
	DebugDir string

	// OnPageComplete receives each page's full result set before the walk
	// advances, so a crash mid-run does not lose already-delivered pages.
	// Partial-page batches are never delivered.
	OnPageComplete func(page int, records []ComplaintRecord)
}

// Result is always returned, even after errors: degraded success is the
// normal operating mode for a hostile target.
type Result struct {
	Records []ComplaintRecord
	Errors  []ErrorEntry
}

// crawlState holds the only mutable state shared across concurrent workers:
// the seen-identifier set and the error ledger.
type crawlState struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	errors []ErrorEntry
}

func newCrawlState() *crawlState {
	return &crawlState{seen: make(map[string]struct{})}
}

// markSeen returns true the first time an external ID is observed.
func (s *crawlState) markSeen(externalID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[externalID]; ok {
		return false
	}
	s.seen[externalID] = struct{}{}
	return true
}

func (s *crawlState) addError(page int, url, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, ErrorEntry{Page: page, URL: url, Message: message})
}

func (s *crawlState) snapshotErrors() []ErrorEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ErrorEntry, len(s.errors))
	copy(out, s.errors)
	return out
}
