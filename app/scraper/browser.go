package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// Session is one isolated browsing context. The engine never touches the
// browser directly, which keeps the crawl logic testable without Chrome.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Content() (string, error)
	Close()
}

// SessionProvider hands out sessions, one per concurrent worker.
type SessionProvider interface {
	Acquire(ctx context.Context) (Session, error)
	Close()
}

// Image-class resources are dead weight for extraction and the bulk of page
// transfer, so they are blocked outright.
var blockedResourcePatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico", "*.woff", "*.woff2", "*.ttf", "*.mp4"}

type BrowserOptions struct {
	Headless   bool
	UserAgent  string
	NavTimeout time.Duration
}

// browserProvider owns a single Chrome process and creates one fresh tab per
// acquired session. Tabs are cheap; processes are not.
type browserProvider struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	opts     BrowserOptions
}

// NewBrowserProvider launches the browser. A launch failure is fatal for the
// whole run, unlike everything that happens after navigation starts.
func NewBrowserProvider(opts BrowserOptions) (SessionProvider, error) {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}

	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", "1920,1080").
		Set("lang", "pt-BR")
	if opts.UserAgent != "" {
		l = l.Set("user-agent", opts.UserAgent)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	slog.Debug("Browser launched", "control_url", controlURL)

	return &browserProvider{launcher: l, browser: browser, opts: opts}, nil
}

func (p *browserProvider) Acquire(ctx context.Context) (Session, error) {
	page, err := p.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	// Stealth and resource blocking only apply to navigations that happen
	// after they are installed, so everything is wired before first use.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("Stealth injection failed, proceeding without it", "error", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Warn("Failed to set viewport", "error", err)
	}

	headers := proto.NetworkHeaders{
		"Accept-Language": gson.New("pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7"),
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: headers}).Call(page); err != nil {
		slog.Warn("Failed to set extra headers", "error", err)
	}

	router := page.HijackRequests()
	for _, pattern := range blockedResourcePatterns {
		if err := router.Add(pattern, "", func(h *rod.Hijack) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		}); err != nil {
			return nil, fmt.Errorf("failed to install request filter: %w", err)
		}
	}
	go router.Run()

	return &browserSession{page: page, router: router, navTimeout: p.opts.NavTimeout}, nil
}

func (p *browserProvider) Close() {
	if err := p.browser.Close(); err != nil {
		slog.Warn("Failed to close browser", "error", err)
	}
	p.launcher.Cleanup()
}

type browserSession struct {
	page       *rod.Page
	router     *rod.HijackRouter
	navTimeout time.Duration
}

func (s *browserSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx).Timeout(s.navTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	// Nudge lazy-rendered content; failures here never fail the navigation.
	if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		slog.Debug("Scroll nudge failed", "error", err)
	}
	return nil
}

func (s *browserSession) Content() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

func (s *browserSession) Close() {
	if s.router != nil {
		if err := s.router.Stop(); err != nil {
			slog.Debug("Failed to stop request filter", "error", err)
		}
	}
	if err := s.page.Close(); err != nil {
		slog.Debug("Failed to close page", "error", err)
	}
}
