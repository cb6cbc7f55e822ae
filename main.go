package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"indexnow-go/internal/config"
	"indexnow-go/pkg/discovery"
	"indexnow-go/pkg/engine"
	"indexnow-go/pkg/fetch"
	"indexnow-go/pkg/keys"
	"indexnow-go/pkg/logger"
	"indexnow-go/pkg/pipeline"
	"indexnow-go/pkg/report"
	"indexnow-go/pkg/sitemap"
	"indexnow-go/pkg/submit"
)

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// stdinConfirmer asks the operator on the terminal. An explicit cancel
// answer aborts the run; anything else re-checks.
type stdinConfirmer struct {
	reader *bufio.Reader
}

func (c *stdinConfirmer) Confirm(prompt string) bool {
	fmt.Println(prompt)
	fmt.Print("> ")
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "c", "cancel", "n", "no", "q", "quit":
		return false
	default:
		return true
	}
}

func main() {
	// Environment variable defaults (CI friendly)
	defaultKey := getEnvOrDefault("INDEXNOW_KEY", "")
	defaultConcurrency := getEnvIntOrDefault("INDEXNOW_CONCURRENCY", 3)
	defaultBatchSize := getEnvIntOrDefault("INDEXNOW_BATCH_SIZE", config.MaxBatchSize)
	defaultTimeout := getEnvIntOrDefault("INDEXNOW_TIMEOUT_MIN", 30)
	defaultNonInteractive := getEnvBoolOrDefault("INDEXNOW_NON_INTERACTIVE", false)
	defaultDebug := getEnvBoolOrDefault("DEBUG", false)

	var (
		apiKey         = flag.String("key", defaultKey, "IndexNow API key override (env: INDEXNOW_KEY)")
		concurrency    = flag.Int("concurrency", defaultConcurrency, "Maximum concurrent requests (env: INDEXNOW_CONCURRENCY)")
		batchSize      = flag.Int("batch-size", defaultBatchSize, "URLs per batch, capped at 10000 (env: INDEXNOW_BATCH_SIZE)")
		timeoutMin     = flag.Int("timeout", defaultTimeout, "Whole-run timeout in minutes (env: INDEXNOW_TIMEOUT_MIN)")
		nonInteractive = flag.Bool("non-interactive", defaultNonInteractive, "Never prompt; cancel instead of interactive key verification (env: INDEXNOW_NON_INTERACTIVE)")
		configPath     = flag.String("config", "", "Optional config file path")
		debug          = flag.Bool("debug", defaultDebug, "Enable debug logging (env: DEBUG)")
		help           = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	if *help || flag.NArg() != 1 {
		printUsage()
		if *help {
			return
		}
		os.Exit(1)
	}
	target := flag.Arg(0)

	manager := config.NewManager()
	cfg, err := manager.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	// Flags override config file values.
	cfg.Submit.Concurrency = *concurrency
	cfg.Submit.BatchSize = *batchSize
	if cfg.Submit.BatchSize <= 0 || cfg.Submit.BatchSize > config.MaxBatchSize {
		cfg.Submit.BatchSize = config.MaxBatchSize
	}
	if *debug {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))
	log := logger.GetLogger().WithField("component", "main")

	storePath := cfg.Keys.StorePath
	if storePath == "" {
		storePath, err = keys.DefaultStorePath()
		if err != nil {
			log.WithError(err).Fatal("Failed to resolve key store path")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeoutMin)*time.Minute)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	interrupted := false
	go func() {
		<-sigChan
		interrupted = true
		cancel()
	}()

	var confirmer keys.Confirmer
	if *nonInteractive {
		confirmer = keys.NonInteractive{}
	} else {
		confirmer = &stdinConfirmer{reader: bufio.NewReader(os.Stdin)}
	}

	client := fetch.NewClient(time.Duration(cfg.Discovery.TimeoutSec) * time.Second)
	stats := report.NewStats()
	engines := engine.Default()

	p := pipeline.New(
		discovery.NewResolver(client),
		sitemap.NewFetcher(client, stats, cfg.Submit.Concurrency),
		keys.NewManager(keys.NewStore(storePath), client, confirmer),
		submit.NewSubmitter(
			submit.NewTransport(time.Duration(cfg.Submit.TimeoutSec)*time.Second),
			engines,
			stats,
			submit.Config{
				Concurrency: cfg.Submit.Concurrency,
				BatchSize:   cfg.Submit.BatchSize,
				Pacing:      time.Duration(cfg.Submit.PacingMs) * time.Millisecond,
			},
		),
		stats,
	)

	log.WithFields(map[string]interface{}{
		"target":      target,
		"concurrency": cfg.Submit.Concurrency,
		"batch_size":  cfg.Submit.BatchSize,
	}).Info("Starting IndexNow submission")

	snapshot, err := p.Run(ctx, target, keys.Key(*apiKey))
	if err != nil {
		switch {
		case interrupted:
			fmt.Fprintln(os.Stderr, "Interrupted.")
		case errors.Is(err, pipeline.ErrNoSitemap):
			fmt.Fprintf(os.Stderr, "ERROR: no sitemap found for %s\n", target)
		case errors.Is(err, keys.ErrCancelled):
			fmt.Fprintln(os.Stderr, "Key verification cancelled, nothing submitted.")
		default:
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Print(report.Render(snapshot, engine.IDs(engines)))
}

func printUsage() {
	fmt.Println("indexnow-go - submit sitemap URLs to search engines via IndexNow")
	fmt.Println("")
	fmt.Println("USAGE:")
	fmt.Println("    indexnow-go [OPTIONS] <url>")
	fmt.Println("")
	fmt.Println("    <url> is either a sitemap URL or a bare site URL; for a bare site,")
	fmt.Println("    sitemaps are discovered from robots.txt and conventional paths.")
	fmt.Println("")
	fmt.Println("OPTIONS:")
	fmt.Println("    -key string        API key override (env: INDEXNOW_KEY)")
	fmt.Println("    -concurrency int   Max concurrent requests (default: 3, env: INDEXNOW_CONCURRENCY)")
	fmt.Println("    -batch-size int    URLs per batch, max 10000 (env: INDEXNOW_BATCH_SIZE)")
	fmt.Println("    -timeout int       Whole-run timeout in minutes (default: 30)")
	fmt.Println("    -non-interactive   Never prompt for key verification")
	fmt.Println("    -config string     Optional config file (yaml/toml/json)")
	fmt.Println("    -debug             Enable debug logging (env: DEBUG)")
	fmt.Println("    -help              Show this help message")
	fmt.Println("")
	fmt.Println("EXAMPLES:")
	fmt.Println("    indexnow-go https://example.com/sitemap.xml")
	fmt.Println("    indexnow-go -key abcdefgh-12345 https://example.com")
	fmt.Println("    INDEXNOW_CONCURRENCY=5 indexnow-go https://example.com")
}
