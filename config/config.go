// Package config loads the distiller's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level distiller configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Browser  BrowserConfig  `yaml:"browser"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig controls the HTTP listener and the dataset it serves.
type ServerConfig struct {
	Port    string `yaml:"port"`
	GenFile string `yaml:"gen_file"`
}

// BrowserConfig controls the download browser's lifecycle.
type BrowserConfig struct {
	Bin          string        `yaml:"bin"` // explicit Chrome path; empty means autodetect
	DownloadDir  string        `yaml:"download_dir"`
	Headless     *bool         `yaml:"headless"`
	Stealth      bool          `yaml:"stealth"`
	SlotsPerPage int           `yaml:"slots_per_page"`
	PollBudget   int           `yaml:"poll_budget"`
	PollInterval time.Duration `yaml:"poll_interval"`
	FindTimeout  time.Duration `yaml:"find_timeout"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoadFile reads a YAML configuration file and applies defaults. An empty
// path yields the defaults alone.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// HeadlessEnabled reports the effective headless setting; unset means headless.
func (b BrowserConfig) HeadlessEnabled() bool {
	return b.Headless == nil || *b.Headless
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.GenFile == "" {
		c.Server.GenFile = "data/gen.txt"
	}
	if c.Browser.DownloadDir == "" {
		c.Browser.DownloadDir = "downloads"
	}
	if c.Browser.SlotsPerPage <= 0 {
		c.Browser.SlotsPerPage = 25
	}
	if c.Browser.PollBudget <= 0 {
		c.Browser.PollBudget = 500
	}
	if c.Browser.PollInterval <= 0 {
		c.Browser.PollInterval = time.Second
	}
	if c.Browser.FindTimeout <= 0 {
		c.Browser.FindTimeout = 10 * time.Second
	}
	if c.Database.Path == "" {
		c.Database.Path = "db/distiller.db"
	}
}
