package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// hardPageCap bounds the adaptive walk so a parser bug that keeps finding
// "new" records cannot run forever.
const hardPageCap = 500

// Engine walks a company's complaint listing and extracts records. One
// Engine serves one run.
type Engine struct {
	provider SessionProvider
	gate     *challengeGate
	opts     Options
	state    *crawlState
}

func New(provider SessionProvider, opts Options) *Engine {
	if opts.StartPage < 1 {
		opts.StartPage = 1
	}
	if opts.PageStride < 1 {
		opts.PageStride = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Concurrency > 5 {
		opts.Concurrency = 5
	}
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = 10
	}
	return &Engine{
		provider: provider,
		gate:     newChallengeGate(opts.ChallengeTimeout),
		opts:     opts,
		state:    newCrawlState(),
	}
}

// Run executes the crawl. It always returns a Result: page-level failures
// land in the error ledger and never abort the walk, so a partially broken
// run still yields every record it could reach.
func (e *Engine) Run(ctx context.Context) *Result {
	records := e.walk(ctx)

	result := &Result{Records: records, Errors: e.state.snapshotErrors()}
	if len(result.Records) == 0 && len(result.Errors) > 0 {
		slog.Error("Crawl produced no records",
			"base_url", e.opts.BaseURL,
			"errors", len(result.Errors))
	} else {
		slog.Info("Crawl finished",
			"base_url", e.opts.BaseURL,
			"records", len(result.Records),
			"errors", len(result.Errors))
	}
	return result
}

func (e *Engine) walk(ctx context.Context) []ComplaintRecord {
	sess, err := e.provider.Acquire(ctx)
	if err != nil {
		e.state.addError(0, e.opts.BaseURL, fmt.Sprintf("failed to acquire listing session: %v", err))
		return nil
	}
	defer sess.Close()

	adaptive := e.opts.MaxPages <= 0
	maxPages := e.opts.MaxPages
	if adaptive {
		maxPages = hardPageCap
	}

	var all []ComplaintRecord
	page := e.opts.StartPage
	for i := 0; i < maxPages; i++ {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			e.sleepBetweenPages(ctx)
		}

		fresh, stop := e.visitPage(ctx, sess, page, adaptive)
		all = append(all, fresh...)
		if stop {
			break
		}
		page += e.opts.PageStride
	}
	return all
}

// visitPage fetches and processes one listing page. The returned stop flag
// ends the walk; errors never do.
func (e *Engine) visitPage(ctx context.Context, sess Session, page int, adaptive bool) ([]ComplaintRecord, bool) {
	pageURL := e.listingURL(page)
	slog.Debug("Fetching listing page", "page", page, "url", pageURL)

	if err := sess.Navigate(ctx, pageURL); err != nil {
		e.state.addError(page, pageURL, fmt.Sprintf("navigation failed: %v", err))
		return nil, ctx.Err() != nil
	}
	e.gate.Wait(ctx, sess)

	html, err := sess.Content()
	if err != nil {
		e.state.addError(page, pageURL, fmt.Sprintf("failed to read content: %v", err))
		return nil, false
	}
	e.snapshot(fmt.Sprintf("listing_page_%d.html", page), html)

	parsed, err := parseListing(html)
	if err != nil {
		if adaptive && err == errNoComplaints {
			slog.Info("Listing exhausted", "page", page)
			return nil, true
		}
		e.state.addError(page, pageURL, err.Error())
		return nil, false
	}

	var fresh []listingEntry
	for _, entry := range parsed.Entries {
		if e.state.markSeen(entry.Record.ExternalID) {
			fresh = append(fresh, entry)
		}
	}
	slog.Debug("Listing page parsed",
		"page", page,
		"found", len(parsed.Entries),
		"new", len(fresh))

	if len(fresh) == 0 {
		// Overlapping result windows make all-duplicate pages normal
		// mid-walk, but in adaptive mode a zero-new page means the
		// listing has been consumed.
		return nil, adaptive
	}

	records := e.collectDetails(ctx, page, fresh)
	records = e.finalize(parsed.Category, records)

	if e.opts.OnPageComplete != nil && len(records) > 0 {
		e.opts.OnPageComplete(page, records)
	}
	return records, false
}

// collectDetails runs the detail fetches for one page's fresh entries under
// the concurrency bound. A failed fetch degrades to the listing partial.
func (e *Engine) collectDetails(ctx context.Context, page int, entries []listingEntry) []ComplaintRecord {
	records := make([]ComplaintRecord, len(entries))
	if !e.opts.FetchDetails {
		for i, entry := range entries {
			records[i] = entry.Record
		}
		return records
	}

	sem := make(chan struct{}, e.opts.Concurrency)
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func(i int, entry listingEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			records[i] = e.fetchDetail(ctx, page, entry)
		}(i, entry)
	}
	wg.Wait()
	return records
}

func (e *Engine) fetchDetail(ctx context.Context, page int, entry listingEntry) ComplaintRecord {
	detailURL := e.detailURL(entry)
	if detailURL == "" {
		return entry.Record
	}

	sess, err := e.provider.Acquire(ctx)
	if err != nil {
		e.state.addError(page, detailURL, fmt.Sprintf("failed to acquire detail session: %v", err))
		return entry.Record
	}
	defer sess.Close()

	if err := sess.Navigate(ctx, detailURL); err != nil {
		e.state.addError(page, detailURL, fmt.Sprintf("detail navigation failed: %v", err))
		return entry.Record
	}
	e.gate.Wait(ctx, sess)

	html, err := sess.Content()
	if err != nil {
		e.state.addError(page, detailURL, fmt.Sprintf("failed to read detail content: %v", err))
		return entry.Record
	}
	e.snapshot(fmt.Sprintf("detail_%s.html", entry.Record.ExternalID), html)

	rec, err := parseDetail(html, entry.Record)
	if err != nil {
		e.state.addError(page, detailURL, err.Error())
		return entry.Record
	}
	return rec
}

// finalize applies the record-level quality gates: noise-length discard,
// category backfill, guaranteed dates and scrape timestamp.
func (e *Engine) finalize(category string, records []ComplaintRecord) []ComplaintRecord {
	now := timeNow()
	out := records[:0]
	for _, rec := range records {
		if len(rec.Text) < e.opts.MinTextLength {
			slog.Debug("Discarding record with too little text", "external_id", rec.ExternalID)
			continue
		}
		if rec.Category == "" {
			rec.Category = category
		}
		if rec.ComplaintDate.IsZero() {
			rec.ComplaintDate = now
		}
		rec.ScrapedAt = now
		out = append(out, rec)
	}
	return out
}

func (e *Engine) listingURL(page int) string {
	return fmt.Sprintf("%s/lista-reclamacoes/?pagina=%d", strings.TrimRight(e.opts.BaseURL, "/"), page)
}

// detailURL resolves a complaint's detail path against the site origin. The
// path already carries the company slug, so only scheme and host come from
// the base URL.
func (e *Engine) detailURL(entry listingEntry) string {
	path := entry.DetailPath
	if path == "" {
		path = entry.Record.URLSlug
	}
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base, err := url.Parse(e.opts.BaseURL)
	if err != nil || base.Host == "" {
		return ""
	}
	return base.Scheme + "://" + base.Host + "/" + strings.Trim(path, "/") + "/"
}

func (e *Engine) sleepBetweenPages(ctx context.Context) {
	delay := e.opts.DelayMin
	if jitter := e.opts.DelayMax - e.opts.DelayMin; jitter > 0 {
		delay += rand.N(jitter)
	}
	if delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func (e *Engine) snapshot(name, html string) {
	if e.opts.DebugDir == "" {
		return
	}
	if err := os.MkdirAll(e.opts.DebugDir, 0o755); err != nil {
		slog.Debug("Failed to create debug directory", "error", err)
		return
	}
	path := filepath.Join(e.opts.DebugDir, name)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		slog.Debug("Failed to write debug snapshot", "path", path, "error", err)
	}
}
