// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Addr             string
	LogLevel         string
	LogPretty        bool
	Width            int
	Height           int
	WinLength        int
	MaxCells         int
	CacheSize        int
	SearchWorkers    int
	Heartbeat        time.Duration
	DatastoreProject string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:          ":8080",
		LogLevel:      "info",
		Width:         3,
		Height:        3,
		WinLength:     3,
		MaxCells:      9,
		SearchWorkers: 1,
		Heartbeat:     15 * time.Second,
	}
}

// Load reads the given .env files (".env" when none are named; missing files
// are ignored) and then the XOXO_* environment variables. Variables already
// set in the environment win over .env entries.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}
	p.str("XOXO_ADDR", &c.Addr)
	p.str("XOXO_LOG_LEVEL", &c.LogLevel)
	p.bool("XOXO_LOG_PRETTY", &c.LogPretty)
	p.int("XOXO_WIDTH", &c.Width)
	p.int("XOXO_HEIGHT", &c.Height)
	p.int("XOXO_WIN_LENGTH", &c.WinLength)
	p.int("XOXO_MAX_CELLS", &c.MaxCells)
	p.int("XOXO_CACHE_SIZE", &c.CacheSize)
	p.int("XOXO_SEARCH_WORKERS", &c.SearchWorkers)
	p.duration("XOXO_HEARTBEAT", &c.Heartbeat)
	p.str("XOXO_DATASTORE_PROJECT", &c.DatastoreProject)
	if p.err != nil {
		return Config{}, p.err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks ranges that parsing alone does not.
func (c Config) Validate() error {
	switch {
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("board must be at least 1x1, got %dx%d", c.Width, c.Height)
	case c.WinLength < 2:
		return fmt.Errorf("win length must be at least 2, got %d", c.WinLength)
	case c.MaxCells < 1:
		return fmt.Errorf("max cells must be positive, got %d", c.MaxCells)
	case c.Width > c.MaxCells || c.Height > c.MaxCells || c.Width*c.Height > c.MaxCells:
		return fmt.Errorf("default board %dx%d exceeds max cells %d", c.Width, c.Height, c.MaxCells)
	case c.CacheSize < 0:
		return fmt.Errorf("cache size must not be negative, got %d", c.CacheSize)
	case c.SearchWorkers < 1:
		return fmt.Errorf("search workers must be positive, got %d", c.SearchWorkers)
	case c.Heartbeat <= 0:
		return fmt.Errorf("heartbeat must be positive, got %v", c.Heartbeat)
	}
	return nil
}

// parser keeps the first error so the call sites stay flat.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) get(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := p.lookup(key)
	return v, ok && v != ""
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) int(key string, dst *int) {
	if v, ok := p.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = n
	}
}

func (p *parser) bool(key string, dst *bool) {
	if v, ok := p.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = b
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if v, ok := p.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.err = fmt.Errorf("%s: %w", key, err)
			return
		}
		*dst = d
	}
}
