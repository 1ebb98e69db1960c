// Package browser manages the Chrome session backing one search-and-download
// run: verify the binary exists, launch, connect via Rod, route downloads to
// a local directory, and tear everything down when the run ends.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrBinaryMissing is returned when no Chrome binary can be located, either
// at the configured path or on the launcher's search path.
var ErrBinaryMissing = errors.New("browser: chrome binary not found")

// Config configures the browser manager.
type Config struct {
	// Bin is an explicit Chrome binary path. Empty = let the launcher
	// search the usual install locations.
	Bin string

	// DownloadDir receives triggered downloads. Created if absent.
	DownloadDir string

	// Headless controls Chrome's display mode.
	Headless bool

	Logger *slog.Logger
}

// Manager owns one Chrome process for the lifetime of one run.
type Manager struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewManager creates a Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{cfg: cfg}
}

// CheckBinary verifies a Chrome binary is reachable without launching it.
// This runs at startup so a missing driver fails fast, before any request
// triggers a workflow.
func (m *Manager) CheckBinary() (string, error) {
	if m.cfg.Bin != "" {
		if _, err := os.Stat(m.cfg.Bin); err != nil {
			return "", fmt.Errorf("%w: %s", ErrBinaryMissing, m.cfg.Bin)
		}
		return m.cfg.Bin, nil
	}
	bin, has := launcher.LookPath()
	if !has {
		return "", ErrBinaryMissing
	}
	return bin, nil
}

// Start launches Chrome and returns the connected Rod browser handle.
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	log := m.cfg.Logger

	bin, err := m.CheckBinary()
	if err != nil {
		return nil, err
	}

	l := launcher.New().Bin(bin).Headless(m.cfg.Headless)
	l = l.Set("disable-blink-features", "AutomationControlled")

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}
	m.lnch = l

	b := rod.New().Context(ctx).ControlURL(u)
	if err := b.Connect(); err != nil {
		m.lnch.Cleanup()
		m.lnch = nil
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b

	if m.cfg.DownloadDir != "" {
		if err := m.routeDownloads(); err != nil {
			m.Close()
			return nil, err
		}
	}

	log.Info("browser: launched", "bin", bin, "headless", m.cfg.Headless)
	return b, nil
}

// routeDownloads points Chrome's download behavior at the configured
// directory so triggered files land somewhere known.
func (m *Manager) routeDownloads() error {
	dir, err := filepath.Abs(m.cfg.DownloadDir)
	if err != nil {
		return fmt.Errorf("browser: download dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("browser: download dir: %w", err)
	}
	err = proto.BrowserSetDownloadBehavior{
		Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
		DownloadPath: dir,
	}.Call(m.browser)
	if err != nil {
		return fmt.Errorf("browser: set download path: %w", err)
	}
	return nil
}

// Close shuts down Chrome. Safe to call after a failed Start.
func (m *Manager) Close() error {
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}
