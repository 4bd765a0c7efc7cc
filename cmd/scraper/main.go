package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/partsbase/catalog-scraper/internal/browser"
	"github.com/partsbase/catalog-scraper/internal/config"
	"github.com/partsbase/catalog-scraper/internal/database"
	"github.com/partsbase/catalog-scraper/internal/events"
	"github.com/partsbase/catalog-scraper/internal/navigator"
	"github.com/partsbase/catalog-scraper/internal/parser"
	"github.com/partsbase/catalog-scraper/internal/scraper"
)

func main() {
	var (
		terms       = flag.String("terms", "", "Comma-separated search terms (overrides CRAWL_SEARCH_TERMS)")
		maxProducts = flag.Int("max-products", 0, "Max products per subcategory (overrides CRAWL_MAX_PRODUCTS)")
		details     = flag.Bool("details", true, "Visit product detail pages")
		pdfs        = flag.Bool("pdfs", true, "Download 2D PDF drawings")
		headless    = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.Parse()

	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *terms != "" {
		cfg.Crawl.SearchTerms = splitTerms(*terms)
	}
	if *maxProducts > 0 {
		cfg.Crawl.MaxProducts = *maxProducts
	}
	cfg.Crawl.FetchDetails = cfg.Crawl.FetchDetails && *details
	cfg.Crawl.DownloadPDFs = cfg.Crawl.DownloadPDFs && *pdfs && cfg.Crawl.FetchDetails

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)
	logger.Info("starting catalog scraper",
		"terms", cfg.Crawl.SearchTerms,
		"max_products", cfg.Crawl.MaxProducts,
		"fetch_details", cfg.Crawl.FetchDetails,
		"download_pdfs", cfg.Crawl.DownloadPDFs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	var publisher *events.Publisher
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, events disabled", "error", err)
		} else {
			publisher = events.NewPublisher(client, cfg.Redis.Stream, logger)
			defer publisher.Close()
		}
	}

	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = *headless && cfg.Browser.Headless
	browserOpts.Timeout = cfg.Browser.Timeout
	browserOpts.ViewportWidth = cfg.Browser.ViewportWidth
	browserOpts.ViewportHeight = cfg.Browser.ViewportHeight
	if cfg.Browser.UserAgent != "" {
		browserOpts.UserAgent = cfg.Browser.UserAgent
	}

	b, err := browser.New(browserOpts)
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	page, err := b.NewPage()
	if err != nil {
		logger.Error("failed to open page", "error", err)
		os.Exit(1)
	}

	nav := navigator.New(page, logger)
	catalogParser := parser.NewCatalogParser(nil)

	detailScraper := scraper.NewDetailScraper(
		nav, nav, catalogParser, db, cfg.Crawl.BaseURL, logger)

	var eventSink scraper.EventPublisher
	if publisher != nil {
		eventSink = publisher
	}

	orchestrator := scraper.NewOrchestrator(nav, catalogParser, db, eventSink, detailScraper, scraper.Options{
		BaseURL:      cfg.Crawl.BaseURL,
		MaxProducts:  cfg.Crawl.MaxProducts,
		FetchDetails: cfg.Crawl.FetchDetails,
		DownloadPDFs: cfg.Crawl.DownloadPDFs,
	}, logger)

	stats, err := orchestrator.Crawl(ctx, cfg.Crawl.SearchTerms)
	if err != nil {
		logger.Error("crawl aborted", "error", err,
			"products_scraped", stats.ProductsScraped,
			"pdfs_downloaded", stats.PDFsDownloaded)
		os.Exit(1)
	}

	logger.Info("crawl finished",
		"products_scraped", stats.ProductsScraped,
		"pdfs_downloaded", stats.PDFsDownloaded)

	dbStats, err := db.GetStats(ctx)
	if err != nil {
		logger.Error("failed to read database stats", "error", err)
		return
	}
	logger.Info("database totals",
		"total_products", dbStats.TotalProducts,
		"products_with_2d_pdf", dbStats.ProductsWith2DPDF,
		"products_with_3d_pdf", dbStats.ProductsWith3DPDF,
		"pdf_files_stored", dbStats.PDFFilesStored)
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func splitTerms(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
