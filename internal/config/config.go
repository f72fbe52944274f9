// Package config provides configuration management for the crawler.
// It defines configuration structures and default values for crawl runs.
package config

import "time"

// CrawlConfig holds everything one crawl run needs.
type CrawlConfig struct {
	// Crawl target and bounds
	SeedDomain  string `mapstructure:"seed_domain" yaml:"seed_domain"` // starting domain or URL
	MaxPages    int    `mapstructure:"max_pages" yaml:"max_pages"`     // hard page-count bound
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"` // concurrent fetch workers

	// HTTP behavior
	RequestDelay   time.Duration `mapstructure:"request_delay" yaml:"request_delay"`     // per-host delay between requests
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // per-request timeout
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`           // HTTP User-Agent header
	RespectRobots  bool          `mapstructure:"respect_robots" yaml:"respect_robots"`   // honor robots.txt

	// Sinks
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"` // SQLite file, empty disables
	CSVPath      string `mapstructure:"csv_path" yaml:"csv_path"`           // CSV file, empty disables

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// DefaultConfig returns a configuration with default values. The page
// bound is generous but finite: it is the backpressure valve against
// unbounded crawls of very large or cyclic sites.
func DefaultConfig() *CrawlConfig {
	return &CrawlConfig{
		MaxPages:       500,
		Concurrency:    4,
		RequestDelay:   100 * time.Millisecond,
		RequestTimeout: 10 * time.Second,
		UserAgent:      "SEOSpider/1.0 (compatible; SEO-Spider)",
		RespectRobots:  false,
		DatabasePath:   "./seospider.db",
		LogLevel:       "info",
	}
}

// Validate checks if the configuration is valid.
func (c *CrawlConfig) Validate() error {
	if c.SeedDomain == "" {
		return ErrNoSeedDomain
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RequestDelay < 0 {
		c.RequestDelay = 0
	}
	return nil
}
