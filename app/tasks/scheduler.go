package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ouvidorlabs/ouvidor/app/ai"
	"github.com/ouvidorlabs/ouvidor/app/cfg"
	"github.com/ouvidorlabs/ouvidor/app/company"
	"github.com/ouvidorlabs/ouvidor/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// taskTimeout bounds a single task execution. Scrape runs dominate; a full
// listing walk with detail fetches takes minutes, not seconds.
const taskTimeout = 15 * time.Minute

type Scheduler struct {
	companyRepo     database.CompanyRepository
	complaintRepo   database.ComplaintRepository
	configCache     *company.ConfigCache
	providerFactory SessionProviderFactory
	analyzer        *ai.Analyzer
	interval        time.Duration
	workerCount     int
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

// NewScheduler wires the worker pool. The analyzer may be nil when no model
// API key is configured; analysis tasks are simply never enqueued then.
func NewScheduler(configCache *company.ConfigCache, companyRepo database.CompanyRepository,
	complaintRepo database.ComplaintRepository, providerFactory SessionProviderFactory,
	analyzer *ai.Analyzer) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		companyRepo:     companyRepo,
		complaintRepo:   complaintRepo,
		configCache:     configCache,
		providerFactory: providerFactory,
		analyzer:        analyzer,
		interval:        time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:     cfg.WorkerCount,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	companyConfigs := s.configCache.GetConfigs()
	if len(companyConfigs) == 0 {
		slog.Debug("No company configurations found")
		return
	}

	slog.Debug("Processing company configurations", "count", len(companyConfigs))

	for _, companyConfig := range companyConfigs {
		syncTask := NewSyncCompanyTask(companyConfig, s.companyRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncCompanyTask", "company", companyConfig.Slug, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	companyConfigs := s.configCache.GetEnabledConfigs()
	if len(companyConfigs) == 0 {
		slog.Debug("No enabled company configurations found")
		return
	}

	slog.Debug("Checking companies for due scrapes", "count", len(companyConfigs))

	for _, companyConfig := range companyConfigs {
		dbCompany, err := s.companyRepo.GetCompanyBySlug(companyConfig.Slug)
		if err != nil {
			slog.Warn("Failed to get company from database, skipping", "company", companyConfig.Slug, "error", err)
			continue
		}
		if dbCompany == nil {
			slog.Warn("Company not found in database, skipping", "company", companyConfig.Slug)
			continue
		}

		now := time.Now()
		if dbCompany.NextScrapeAt != nil && dbCompany.NextScrapeAt.After(now) {
			slog.Debug("Company not due for scraping yet", "company", companyConfig.Slug, "next_scrape_at", dbCompany.NextScrapeAt)
			continue
		}

		scrapeTask := NewScrapeCompanyTask(companyConfig, s.providerFactory, s.companyRepo, s.complaintRepo)
		if err := s.EnqueueTask(scrapeTask); err != nil {
			slog.Warn("Failed to enqueue ScrapeCompanyTask", "company", companyConfig.Slug, "error", err)
		}
	}

	if s.analyzer != nil {
		analyzeTask := NewAnalyzeComplaintsTask(s.analyzer, s.complaintRepo)
		if err := s.EnqueueTask(analyzeTask); err != nil {
			slog.Warn("Failed to enqueue AnalyzeComplaintsTask", "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "company", task.GetCompanySlug(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
