package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ouvidorlabs/ouvidor/app/company"
	"github.com/ouvidorlabs/ouvidor/app/database"
)

type SyncCompanyTask struct {
	Task
	CompanyConfig *company.Config
	companyRepo   database.CompanyRepository
}

func NewSyncCompanyTask(companyConfig *company.Config, companyRepo database.CompanyRepository) *SyncCompanyTask {
	return &SyncCompanyTask{
		Task:          NewTask(TaskTypeSyncCompany, companyConfig.Slug),
		CompanyConfig: companyConfig,
		companyRepo:   companyRepo,
	}
}

func (t *SyncCompanyTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	_, err := t.companyRepo.UpsertCompany(
		t.CompanyConfig.Slug,
		t.CompanyConfig.Name,
		t.CompanyConfig.URL,
		t.CompanyConfig.Primary,
		t.CompanyConfig.Settings.Enabled)
	if err != nil {
		slog.Error("Task failed", "type", "SyncCompany", "company", t.CompanySlug, "error", err)
		return fmt.Errorf("failed to sync company config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncCompany",
		"company", t.CompanySlug,
		"duration", t.GetDuration())

	return nil
}
