// Package cmd provides the command-line interface for SEOSpider.
// It handles flag parsing, configuration loading, sink wiring and
// crawl execution.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/seoscope/seospider/internal/config"
	"github.com/seoscope/seospider/internal/crawler"
	"github.com/seoscope/seospider/internal/logging"
	"github.com/seoscope/seospider/internal/storage"
)

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seospider [domain]",
	Short: "A site crawler that extracts per-page SEO signals",
	Long: `SEOSpider crawls a website breadth-first from a seed domain and
extracts per-page SEO signals: title, meta description, canonical URL,
heading counts, visible text length, link classification, image alt
coverage and JSON-LD schema types, plus the directed link graph between
pages. Results are written to SQLite and optionally CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./seospider.yml)")

	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	rootCmd.Flags().IntP("max-pages", "m", 500, "Stop after visiting N pages")
	rootCmd.Flags().IntP("concurrency", "c", 4, "Number of concurrent fetch workers")
	rootCmd.Flags().DurationP("timeout", "t", 10*time.Second, "HTTP request timeout")
	rootCmd.Flags().DurationP("delay", "r", 100*time.Millisecond, "Per-host delay between requests")
	rootCmd.Flags().StringP("user-agent", "u", "SEOSpider/1.0 (compatible; SEO-Spider)", "HTTP User-Agent header")
	rootCmd.Flags().Bool("respect-robots", false, "Honor robots.txt rules")

	rootCmd.Flags().StringP("database", "d", "./seospider.db", "Path to SQLite database file (empty disables)")
	rootCmd.Flags().StringP("csv", "o", "", "Path to CSV output file (empty disables)")

	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().String("log-file", "", "Log file path (JSON lines)")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"max_pages", "max-pages"},
		{"concurrency", "concurrency"},
		{"request_timeout", "timeout"},
		{"request_delay", "delay"},
		{"user_agent", "user-agent"},
		{"respect_robots", "respect-robots"},
		{"database_path", "database"},
		{"csv_path", "csv"},
		{"log_level", "log-level"},
		{"log_file", "log-file"},
	}
	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.Flags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("seospider")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SEO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func showCurrentConfig(cfg *config.CrawlConfig) error {
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Printf("# Current SEOSpider configuration\n")
	fmt.Printf("# Environment variables prefix: SEO_\n\n")
	fmt.Print(string(yamlData))
	return nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")

	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.SeedDomain = args[0]

	if showConfig {
		return showCurrentConfig(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.SetDefault(logging.Config{
		Level:    logging.ParseLevel(cfg.LogLevel),
		FilePath: cfg.LogFile,
		Console:  true,
	}); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	// Sinks
	var store *storage.SQLiteStore
	if cfg.DatabasePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		var err error
		store, err = storage.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer func() { _ = store.Close() }()
	}

	var csvOut *storage.CSVWriter
	if cfg.CSVPath != "" {
		var err error
		csvOut, err = storage.NewCSVWriter(cfg.CSVPath)
		if err != nil {
			return fmt.Errorf("failed to create CSV output: %w", err)
		}
		defer func() { _ = csvOut.Close() }()
	}

	runID := uuid.NewString()
	if store != nil {
		err := store.CreateRun(&storage.CrawlRun{
			ID:     runID,
			Domain: cfg.SeedDomain,
			Status: "running",
		})
		if err != nil {
			return fmt.Errorf("failed to create crawl run: %w", err)
		}
	}

	slog.Info("Starting crawl run", "run_id", runID, "domain", cfg.SeedDomain)

	// SIGINT/SIGTERM become the engine's cooperative stop signal.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	c := crawler.New(cfg)
	final := consumeEvents(c.Run(ctx), runID, store, csvOut)
	elapsed := time.Since(started).Round(time.Millisecond)

	if store != nil {
		status := map[crawler.Status]string{
			crawler.StatusDone:      "finished",
			crawler.StatusFailed:    "failed",
			crawler.StatusCancelled: "cancelled",
		}[final.Status]
		errMsg := ""
		if final.Err != nil {
			errMsg = final.Err.Error()
		}
		if err := store.UpdateRunStatus(runID, status, errMsg); err != nil {
			slog.Error("Failed to update run status", "error", err)
		}

		if sum, err := store.Summarize(runID); err == nil {
			fmt.Printf("Crawl %s: %d pages, %d link edges, %d images in %s (%s)\n",
				runID, sum.Pages, sum.Links, sum.Images, elapsed, final.Status)
		}
	}

	if final.Status == crawler.StatusFailed {
		return fmt.Errorf("crawl failed: %w", final.Err)
	}
	return nil
}

// consumeEvents translates the engine's event stream into sink writes.
// The engine itself never touches persistence.
func consumeEvents(events <-chan crawler.Event, runID string, store *storage.SQLiteStore, csvOut *storage.CSVWriter) crawler.RunFinished {
	final := crawler.RunFinished{Status: crawler.StatusDone}

	for ev := range events {
		switch e := ev.(type) {
		case crawler.Progress:
			fmt.Println(e.Message)
		case crawler.PageDiscovered:
			slog.Debug("Page discovered", "url", e.URL)
		case crawler.PageRecorded:
			if store != nil {
				if err := store.SavePage(runID, e.Page); err != nil {
					slog.Error("Failed to save page", "url", e.Page.URL, "error", err)
				}
			}
			if csvOut != nil {
				if err := csvOut.WritePage(e.Page); err != nil {
					slog.Error("Failed to write CSV row", "url", e.Page.URL, "error", err)
				}
			}
		case crawler.LinkRecorded:
			if store != nil {
				if err := store.SaveLink(runID, e.Link); err != nil {
					slog.Error("Failed to save link", "from", e.Link.FromURL, "error", err)
				}
			}
		case crawler.ImageRecorded:
			if store != nil {
				if err := store.SaveImage(runID, e.Image); err != nil {
					slog.Error("Failed to save image", "src", e.Image.Src, "error", err)
				}
			}
		case crawler.RunFinished:
			final = e
		}
	}
	return final
}
