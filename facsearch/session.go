// Package facsearch drives a browser session against the Federal Audit
// Clearinghouse search portal: fill the search form, pass the
// acknowledgement gate, walk every results page triggering SF-SAC form and
// audit-package downloads, then wait for the browser to finish them.
//
// The portal's page structure is an unstable external dependency. Every
// element identifier the workflow touches lives in selectors.go.
package facsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/opengrants/distiller/facsearch/internal/browser"
)

// Config configures a Runner.
type Config struct {
	// SearchURL overrides the Clearinghouse endpoint. Default: SearchURL.
	SearchURL string

	// BrowserBin is an explicit Chrome binary path. Empty = search the
	// usual install locations.
	BrowserBin string

	// DownloadDir receives the downloaded files.
	DownloadDir string

	// Headless controls Chrome's display mode.
	Headless bool

	// Stealth opens the page with automation-masking patches applied.
	Stealth bool

	// SlotsPerPage is the number of candidate download slots probed per
	// category on each results page. Default 25.
	SlotsPerPage int

	// PollBudget bounds the download completion wait. Default 500 polls.
	PollBudget int

	// PollInterval is the delay between completion polls. Default 1s.
	PollInterval time.Duration

	// FindTimeout bounds each required-element lookup. Default 10s.
	FindTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.SearchURL == "" {
		c.SearchURL = SearchURL
	}
	if c.SlotsPerPage <= 0 {
		c.SlotsPerPage = 25
	}
	if c.PollBudget <= 0 {
		c.PollBudget = 500
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.FindTimeout <= 0 {
		c.FindTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Result summarizes one completed run.
type Result struct {
	// Pages is how many results pages were visited.
	Pages int

	// Triggered and Skipped count download attempts per category across
	// all pages. The two categories are never correlated into
	// (form, audit) pairs here.
	Triggered map[Category]int
	Skipped   map[Category]int

	// Files lists the local URLs of every completed download.
	Files []string
}

// Runner executes audit download sessions. One session drives one browser,
// strictly sequentially; the zero concurrency model is deliberate.
type Runner struct {
	cfg Config
	log *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg Config) *Runner {
	cfg.defaults()
	return &Runner{cfg: cfg, log: cfg.Logger}
}

// CheckBrowser verifies a Chrome binary is available. Intended for startup:
// a missing driver should be reported before the first run, not during it.
func (r *Runner) CheckBrowser() error {
	_, err := browser.NewManager(browser.Config{Bin: r.cfg.BrowserBin, Logger: r.log}).CheckBinary()
	if errors.Is(err, browser.ErrBinaryMissing) {
		return fmt.Errorf("%w: %v", ErrDriverMissing, err)
	}
	return err
}

// Run validates the criteria, opens a browser session, and executes the
// full search-and-download workflow. The session is closed on every exit
// path; a failed run never leaks a Chrome process.
func (r *Runner) Run(ctx context.Context, c SearchCriteria) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	mgr := browser.NewManager(browser.Config{
		Bin:         r.cfg.BrowserBin,
		DownloadDir: r.cfg.DownloadDir,
		Headless:    r.cfg.Headless,
		Logger:      r.log,
	})
	b, err := mgr.Start(ctx)
	if err != nil {
		if errors.Is(err, browser.ErrBinaryMissing) {
			return nil, fmt.Errorf("%w: %v", ErrDriverMissing, err)
		}
		return nil, err
	}
	defer mgr.Close()

	page, err := r.openPage(b)
	if err != nil {
		return nil, err
	}
	portal := newRodPortal(page, r.cfg.FindTimeout)
	defer portal.Close()

	return r.run(ctx, portal, c)
}

func (r *Runner) openPage(b *rod.Browser) (*rod.Page, error) {
	if r.cfg.Stealth {
		page, err := stealth.Page(b)
		if err != nil {
			return nil, fmt.Errorf("facsearch: stealth page: %w", err)
		}
		return page, nil
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("facsearch: page: %w", err)
	}
	return page, nil
}

// run is the workflow over an abstract Portal. Tests drive it with a fake.
func (r *Runner) run(ctx context.Context, p Portal, c SearchCriteria) (*Result, error) {
	log := r.log

	log.Info("facsearch: starting run",
		"agency", c.AgencyPrefix, "extension", c.SubagencyExtension,
		"from", FormatFACDate(c.DateFrom), "to", FormatFACDate(c.DateTo))

	if err := p.Navigate(ctx, r.cfg.SearchURL); err != nil {
		return nil, err
	}
	if err := fillSearchForm(ctx, p, c); err != nil {
		return nil, fmt.Errorf("facsearch: search form: %w", err)
	}
	if err := passAgreementGate(ctx, p); err != nil {
		return nil, fmt.Errorf("facsearch: agreement gate: %w", err)
	}

	totals := map[Category]slotCounts{}
	pages, err := walkResultPages(ctx, p, func(page int) error {
		return downloadLinkedFiles(ctx, p, r.cfg.SlotsPerPage, totals, log)
	}, log)
	if err != nil {
		return nil, fmt.Errorf("facsearch: page %d: %w", pages, err)
	}

	files, err := waitForDownloads(ctx, p, r.cfg.PollBudget, r.cfg.PollInterval)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Pages:     pages,
		Triggered: map[Category]int{},
		Skipped:   map[Category]int{},
		Files:     files,
	}
	for cat, counts := range totals {
		res.Triggered[cat] = counts.Triggered
		res.Skipped[cat] = counts.Skipped
	}

	log.Info("facsearch: run complete",
		"pages", res.Pages,
		"forms", res.Triggered[CategoryForm],
		"audits", res.Triggered[CategoryAudit],
		"files", len(res.Files))
	return res, nil
}
