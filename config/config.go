// Package config loads the crawler's TOML settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/dreamerjackson/listcrawler/parse/quotes"
	"github.com/dreamerjackson/listcrawler/version"
	"github.com/go-micro/plugins/v4/config/encoder/toml"
	"go-micro.dev/v4/config"
	"go-micro.dev/v4/config/reader"
	"go-micro.dev/v4/config/reader/json"
	"go-micro.dev/v4/config/source"
	"go-micro.dev/v4/config/source/file"
)

const FileName = "config.toml"

type Config struct {
	Path     string // file the values were read from, empty when defaults are used
	LogLevel string
	LogFile  string
	Fetcher  Fetcher
	Crawl    Crawl
	Output   Output
	Storage  Storage
}

type Fetcher struct {
	Timeout   time.Duration
	UserAgent string
	Proxy     []string
	Bandwidth int64 // bytes per second, 0 means unlimited
}

type Crawl struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	MaxPages int
	// RatePerMinute caps page fetches on top of the random delay, 0 disables it.
	RatePerMinute int
	OnUnknown     string
	Selectors     quotes.Selectors
}

type Output struct {
	Dir string
}

type Storage struct {
	Type       string // "", "mysql" or "sqlite"
	SQLURL     string
	BatchCount int
}

func Default() *Config {
	return &Config{
		LogLevel: "INFO",
		Fetcher: Fetcher{
			Timeout:   10 * time.Second,
			UserAgent: version.UserAgent(),
		},
		Crawl: Crawl{
			MinDelay:  time.Second,
			MaxDelay:  3 * time.Second,
			OnUnknown: "ask",
			Selectors: quotes.DefaultSelectors,
		},
		Output: Output{Dir: "."},
		Storage: Storage{
			BatchCount: 50,
		},
	}
}

// Dir is the per-user configuration directory.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, version.Name)
}

// Find returns the config file to load. An explicit path must exist; otherwise
// ./config.toml and then the user config directory are tried. An empty result
// with a nil error means no file was found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}

	for _, p := range []string{FileName, filepath.Join(Dir(), FileName)} {
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("config file: %w", err)
		}
	}

	return "", nil
}

// Load reads path on top of Default. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	enc := toml.NewEncoder()
	cfg, err := config.NewConfig(config.WithReader(json.NewReader(reader.WithEncoder(enc))))
	if err != nil {
		return nil, err
	}
	defer cfg.Close()

	err = cfg.Load(file.NewSource(
		file.WithPath(path),
		source.WithEncoder(enc),
	))
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	c.Path = path
	c.LogLevel = cfg.Get("logLevel").String(c.LogLevel)
	c.LogFile = cfg.Get("logFile").String(c.LogFile)

	if ms := cfg.Get("fetcher", "timeout").Int(0); ms > 0 {
		c.Fetcher.Timeout = time.Duration(ms) * time.Millisecond
	}
	c.Fetcher.UserAgent = cfg.Get("fetcher", "userAgent").String(c.Fetcher.UserAgent)
	c.Fetcher.Proxy = cfg.Get("fetcher", "proxy").StringSlice(c.Fetcher.Proxy)
	c.Fetcher.Bandwidth = int64(cfg.Get("fetcher", "bandwidth").Int(int(c.Fetcher.Bandwidth)))

	c.Crawl.MinDelay = millis(cfg.Get("crawl", "minDelay").Int(-1), c.Crawl.MinDelay)
	c.Crawl.MaxDelay = millis(cfg.Get("crawl", "maxDelay").Int(-1), c.Crawl.MaxDelay)
	c.Crawl.MaxPages = cfg.Get("crawl", "maxPages").Int(c.Crawl.MaxPages)
	c.Crawl.RatePerMinute = cfg.Get("crawl", "ratePerMinute").Int(c.Crawl.RatePerMinute)
	c.Crawl.OnUnknown = cfg.Get("crawl", "onUnknown").String(c.Crawl.OnUnknown)

	// keys missing from the table keep their defaults
	if err := cfg.Get("crawl", "selectors").Scan(&c.Crawl.Selectors); err != nil {
		return nil, fmt.Errorf("crawl.selectors: %w", err)
	}

	c.Output.Dir = cfg.Get("output", "dir").String(c.Output.Dir)

	c.Storage.Type = cfg.Get("storage", "type").String(c.Storage.Type)
	c.Storage.SQLURL = cfg.Get("storage", "sqlURL").String(c.Storage.SQLURL)
	c.Storage.BatchCount = cfg.Get("storage", "batchCount").Int(c.Storage.BatchCount)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return c, nil
}

func (c *Config) Validate() error {
	if c.Crawl.MaxDelay < c.Crawl.MinDelay {
		return fmt.Errorf("crawl.maxDelay %s is below crawl.minDelay %s", c.Crawl.MaxDelay, c.Crawl.MinDelay)
	}
	if c.Crawl.MaxPages < 0 {
		return errors.New("crawl.maxPages must not be negative")
	}
	if c.Crawl.RatePerMinute < 0 {
		return errors.New("crawl.ratePerMinute must not be negative")
	}
	switch c.Storage.Type {
	case "", "mysql", "sqlite":
	default:
		return fmt.Errorf("storage.type %q is not one of mysql, sqlite", c.Storage.Type)
	}
	if c.Storage.Type != "" && c.Storage.SQLURL == "" {
		return errors.New("storage.sqlURL is required when storage.type is set")
	}
	return nil
}

// millis converts a millisecond setting; negative values keep def.
func millis(ms int, def time.Duration) time.Duration {
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
