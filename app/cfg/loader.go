package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./ouvidor.db" description:"Path to the SQLite database file"`

	// Application configuration
	CompaniesDir      string `long:"companies-dir" env:"COMPANIES_DIR" default:"./companies" description:"Directory containing company target configuration files"`
	Port              string `long:"port" env:"PORT" default:"3003" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for task processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authenticated endpoints (optional)"`

	// Scraper configuration
	MaxPages         int    `long:"max-pages" env:"SCRAPER_MAX_PAGES" default:"10" description:"Maximum listing pages per crawl, 0 enables adaptive mode"`
	StartPage        int    `long:"start-page" env:"SCRAPER_START_PAGE" default:"1" description:"First listing page number for a crawl"`
	PageStride       int    `long:"page-stride" env:"SCRAPER_PAGE_STRIDE" default:"1" description:"Increment between listing page numbers"`
	DelayMin         int    `long:"delay-min" env:"SCRAPER_DELAY_MIN" default:"2" description:"Minimum inter-request delay in seconds"`
	DelayMax         int    `long:"delay-max" env:"SCRAPER_DELAY_MAX" default:"5" description:"Maximum inter-request delay in seconds"`
	Concurrency      int    `long:"concurrency" env:"SCRAPER_CONCURRENCY" default:"3" description:"Maximum concurrent detail page fetches (1-5)"`
	FetchDetails     bool   `long:"fetch-details" env:"SCRAPER_FETCH_DETAILS" description:"Fetch individual complaint pages for complete data (slower)"`
	MinTextLength    int    `long:"min-text-length" env:"SCRAPER_MIN_TEXT_LENGTH" default:"10" description:"Minimum complaint text length before a record is discarded"`
	NavTimeout       int    `long:"nav-timeout" env:"SCRAPER_NAV_TIMEOUT" default:"30" description:"Page navigation timeout in seconds"`
	ChallengeTimeout int    `long:"challenge-timeout" env:"SCRAPER_CHALLENGE_TIMEOUT" default:"25" description:"Anti-bot challenge wait timeout in seconds"`
	Headless         bool   `long:"headless" env:"SCRAPER_HEADLESS" description:"Run the browser headless"`
	DebugDir         string `long:"debug-dir" env:"SCRAPER_DEBUG_DIR" description:"Directory for raw page snapshots (disabled when empty)"`

	// AI configuration
	GeminiAPIKey string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Google Gemini API key"`
	GeminiModel  string `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-2.5-flash" description:"Gemini model used for analysis and responses"`

	// Coupon configuration
	CouponPrefix string `long:"coupon-prefix" env:"COUPON_PREFIX" default:"OUV" description:"Prefix for generated coupon codes"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" description:"User agent string for browser sessions"`
	Timezone  string `long:"timezone" env:"TZ" default:"America/Sao_Paulo" description:"Timezone for timestamps"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		CompaniesDir:      raw.CompaniesDir,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		MaxPages:          raw.MaxPages,
		StartPage:         raw.StartPage,
		PageStride:        raw.PageStride,
		DelayMin:          raw.DelayMin,
		DelayMax:          raw.DelayMax,
		Concurrency:       raw.Concurrency,
		FetchDetails:      raw.FetchDetails,
		MinTextLength:     raw.MinTextLength,
		NavTimeout:        raw.NavTimeout,
		ChallengeTimeout:  raw.ChallengeTimeout,
		Headless:          raw.Headless,
		DebugDir:          raw.DebugDir,
		GeminiAPIKey:      raw.GeminiAPIKey,
		GeminiModel:       raw.GeminiModel,
		CouponPrefix:      raw.CouponPrefix,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Concurrency > 5 {
		cfg.Concurrency = 5
	}
	if cfg.PageStride < 1 {
		cfg.PageStride = 1
	}
	if cfg.DelayMax < cfg.DelayMin {
		cfg.DelayMax = cfg.DelayMin
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
