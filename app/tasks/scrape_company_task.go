package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ouvidorlabs/ouvidor/app/cfg"
	"github.com/ouvidorlabs/ouvidor/app/company"
	"github.com/ouvidorlabs/ouvidor/app/database"
	"github.com/ouvidorlabs/ouvidor/app/scraper"
)

// SessionProviderFactory creates the browser backing one scrape run. The
// indirection lets tests run the task without Chrome.
type SessionProviderFactory func() (scraper.SessionProvider, error)

type ScrapeCompanyTask struct {
	Task
	CompanyConfig   *company.Config
	providerFactory SessionProviderFactory
	companyRepo     database.CompanyRepository
	complaintRepo   database.ComplaintRepository
}

func NewScrapeCompanyTask(companyConfig *company.Config, providerFactory SessionProviderFactory,
	companyRepo database.CompanyRepository, complaintRepo database.ComplaintRepository) *ScrapeCompanyTask {
	return &ScrapeCompanyTask{
		Task:            NewTask(TaskTypeScrapeCompany, companyConfig.Slug),
		CompanyConfig:   companyConfig,
		providerFactory: providerFactory,
		companyRepo:     companyRepo,
		complaintRepo:   complaintRepo,
	}
}

func (t *ScrapeCompanyTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.CompanyConfig.Settings.Enabled {
		slog.Debug("Company disabled, skipping", "company", t.CompanySlug)
		return nil
	}

	dbCompany, err := t.companyRepo.GetCompanyBySlug(t.CompanySlug)
	if err != nil {
		return fmt.Errorf("failed to get company: %w", err)
	}
	if dbCompany == nil {
		return fmt.Errorf("company %s not registered in database", t.CompanySlug)
	}

	provider, err := t.providerFactory()
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer provider.Close()

	totalInserted, totalSkipped := 0, 0
	engine := scraper.New(provider, t.engineOptions(cfg.Get(), func(page int, records []scraper.ComplaintRecord) {
		inserted, skipped, err := t.complaintRepo.SaveBatch(dbCompany.ID, records)
		if err != nil {
			slog.Error("Failed to store page batch",
				"company", t.CompanySlug,
				"page", page,
				"error", err)
			return
		}
		totalInserted += inserted
		totalSkipped += skipped
		slog.Debug("Page batch stored",
			"company", t.CompanySlug,
			"page", page,
			"inserted", inserted,
			"skipped", skipped)
	}))

	result := engine.Run(ctx)

	now := time.Now()
	next := now.Add(time.Duration(t.CompanyConfig.Settings.RefreshInterval) * time.Second)
	if err := t.companyRepo.UpdateScrapeTimes(dbCompany.ID, now, next); err != nil {
		return fmt.Errorf("failed to update scrape times: %w", err)
	}

	slog.Info("Task completed",
		"type", "ScrapeCompany",
		"company", t.CompanySlug,
		"records", len(result.Records),
		"inserted", totalInserted,
		"skipped", totalSkipped,
		"errors", len(result.Errors),
		"duration", t.GetDuration())

	return nil
}

func (t *ScrapeCompanyTask) engineOptions(c *cfg.Cfg, sink func(int, []scraper.ComplaintRecord)) scraper.Options {
	// Per-company settings win over global defaults when set. An explicit
	// company max_pages of zero selects adaptive mode regardless of the
	// global page budget; an omitted one inherits it.
	maxPages := c.MaxPages
	if t.CompanyConfig.Settings.MaxPages != nil {
		maxPages = *t.CompanyConfig.Settings.MaxPages
	}
	stride := c.PageStride
	if t.CompanyConfig.Settings.PageStride > 0 {
		stride = t.CompanyConfig.Settings.PageStride
	}
	fetchDetails := c.FetchDetails
	if t.CompanyConfig.Settings.FetchDetails != nil {
		fetchDetails = *t.CompanyConfig.Settings.FetchDetails
	}

	return scraper.Options{
		BaseURL:          t.CompanyConfig.URL,
		MaxPages:         maxPages,
		StartPage:        c.StartPage,
		PageStride:       stride,
		DelayMin:         time.Duration(c.DelayMin) * time.Second,
		DelayMax:         time.Duration(c.DelayMax) * time.Second,
		Concurrency:      c.Concurrency,
		FetchDetails:     fetchDetails,
		MinTextLength:    c.MinTextLength,
		NavTimeout:       time.Duration(c.NavTimeout) * time.Second,
		ChallengeTimeout: time.Duration(c.ChallengeTimeout) * time.Second,
		DebugDir:         c.DebugDir,
		OnPageComplete:   sink,
	}
}
