package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrInitialization means the shared browser process could not be launched,
// usually a missing runtime install. Fatal for the whole process; retrying a
// single scrape cannot fix it.
var ErrInitialization = errors.New("browser engine initialization failed")

// Engine owns exactly one Chromium process for the process lifetime and
// hands out ephemeral, isolated browsing contexts per fetch. Safe for
// concurrent use; initialization happens lazily on the first fetch.
type Engine struct {
	opts   *Options
	logger *slog.Logger

	mu          sync.Mutex
	initialized atomic.Bool
	closed      bool // guarded by mu
	pw          *playwright.Playwright
	browser     playwright.Browser

	closeOnce sync.Once
	closeErr  error
}

type Options struct {
	Headless       bool
	NavTimeout     time.Duration
	SettleDelay    time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	TimezoneID     string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		NavTimeout:     30 * time.Second,
		SettleDelay:    2 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Locale:         "es-MX",
		TimezoneID:     "America/Mexico_City",
	}
}

func NewEngine(opts *Options, logger *slog.Logger) *Engine {
	if opts == nil {
		opts = DefaultOptions()
	}
	// Zero-valued fields fall back to the defaults so a partially filled
	// Options never produces a context without a user agent or viewport.
	defaults := DefaultOptions()
	if opts.NavTimeout == 0 {
		opts.NavTimeout = defaults.NavTimeout
	}
	if opts.SettleDelay == 0 {
		opts.SettleDelay = defaults.SettleDelay
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = defaults.ViewportWidth
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = defaults.ViewportHeight
	}
	if opts.Locale == "" {
		opts.Locale = defaults.Locale
	}
	if opts.TimezoneID == "" {
		opts.TimezoneID = defaults.TimezoneID
	}
	return &Engine{
		opts:   opts,
		logger: logger.With("component", "browser"),
	}
}

// Init launches the shared browser process. Idempotent and safe under
// concurrent first callers: a fast atomic check ahead of the lock keeps the
// initialized path lock-free, and the check repeats inside the lock.
func (e *Engine) Init() error {
	if e.initialized.Load() {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized.Load() {
		return nil
	}
	if e.closed {
		return fmt.Errorf("%w: engine already closed", ErrInitialization)
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("%w: starting playwright: %v", ErrInitialization, err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(e.opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-notifications",
			"--disable-extensions",
			"--disable-infobars",
			"--disable-dev-shm-usage",
			"--disable-background-networking",
			"--no-first-run",
			"--no-default-browser-check",
		},
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("%w: launching chromium: %v", ErrInitialization, err)
	}

	e.pw = pw
	e.browser = browser
	e.initialized.Store(true)
	e.logger.Info("browser engine started", "headless", e.opts.Headless)

	return nil
}

// FetchHTML navigates to the URL in a fresh isolated context and returns the
// rendered HTML. Transport failures (DNS, refused, timeout, TLS, closed
// target) are logged by kind and collapse to an empty result; the caller
// decides whether empty content is an error.
func (e *Engine) FetchHTML(ctx context.Context, url string) (string, error) {
	if err := e.Init(); err != nil {
		return "", err
	}

	browserCtx, err := e.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(e.opts.UserAgent),
		Locale:            playwright.String(e.opts.Locale),
		TimezoneId:        playwright.String(e.opts.TimezoneID),
		AcceptDownloads:   playwright.Bool(false),
		IgnoreHttpsErrors: playwright.Bool(true),
		Viewport: &playwright.Size{
			Width:  e.opts.ViewportWidth,
			Height: e.opts.ViewportHeight,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create browser context: %w", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := e.installRoutes(page); err != nil {
		return "", fmt.Errorf("failed to install routes: %w", err)
	}

	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(e.opts.NavTimeout.Milliseconds())),
	})
	if err != nil {
		e.logger.Warn("navigation failed",
			"url", url,
			"kind", classifyNavigationError(err),
			"error", err)
		return "", nil
	}

	// Give client-side rendering a moment to populate price widgets.
	page.WaitForTimeout(float64(e.opts.SettleDelay.Milliseconds()))

	html, err := page.Content()
	if err != nil {
		e.logger.Warn("failed to read page content",
			"url", url,
			"kind", classifyNavigationError(err),
			"error", err)
		return "", nil
	}

	return html, nil
}

// installRoutes short-circuits heavy asset requests with empty bodies and
// aborts known analytics hosts. Blocking assets roughly halves fetch time on
// marketplace pages.
func (e *Engine) installRoutes(page playwright.Page) error {
	err := page.Route("**/*.{png,jpg,jpeg,svg,gif,webp,woff,woff2,ttf,otf,eot,ico}", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/plain"),
			Body:        "",
		})
	})
	if err != nil {
		return err
	}

	err = page.Route("**/*.css", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/css"),
			Body:        "",
		})
	})
	if err != nil {
		return err
	}

	return page.Route("**/*{google-analytics,googletagmanager,facebook,doubleclick,analytics}*", func(route playwright.Route) {
		route.Abort()
	})
}

// Close tears down the browser and the playwright driver exactly once.
// Repeated calls return the first result.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		var errs []error
		if e.browser != nil {
			if err := e.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
			}
		}
		if e.pw != nil {
			if err := e.pw.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
			}
		}
		if len(errs) > 0 {
			e.closeErr = fmt.Errorf("errors during close: %v", errs)
		}
		e.closed = true
		e.initialized.Store(false)
	})
	return e.closeErr
}

// classifyNavigationError buckets low-level navigation failures for logging.
// All kinds collapse to the same empty-content outcome for the caller.
func classifyNavigationError(err error) string {
	if err == nil {
		return "none"
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "ERR_NAME_NOT_RESOLVED"):
		return "dns"
	case strings.Contains(msg, "ERR_CONNECTION_REFUSED"):
		return "connection_refused"
	case strings.Contains(msg, "ERR_CONNECTION_TIMED_OUT"),
		strings.Contains(msg, "Timeout"),
		strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "ERR_CERT"), strings.Contains(msg, "SSL"):
		return "tls"
	case strings.Contains(msg, "Target closed"), strings.Contains(msg, "target closed"):
		return "target_closed"
	default:
		return "other"
	}
}
