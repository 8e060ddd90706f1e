// cmd/productscrapexter/run.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/valpere/ProductScrapexter/internal/browser"
	"github.com/valpere/ProductScrapexter/internal/config"
	"github.com/valpere/ProductScrapexter/internal/errors"
	"github.com/valpere/ProductScrapexter/internal/monitoring"
	"github.com/valpere/ProductScrapexter/internal/output"
	"github.com/valpere/ProductScrapexter/internal/pipeline"
	"github.com/valpere/ProductScrapexter/internal/product"
	"github.com/valpere/ProductScrapexter/internal/scraper"
	"github.com/valpere/ProductScrapexter/internal/utils"
)

var logger = utils.NewComponentLogger("cli")

// batch is one collection worth of records.
type batch struct {
	collection string
	records    []product.VariantRecord
}

func configureLogging(cfg *config.Config, verbose bool) {
	level := utils.ParseLogLevel(cfg.Log.Level)
	if verbose {
		level = utils.DebugLevel
	}
	utils.SetDefaultLevel(level)
}

func browserConfig(cfg config.BrowserConfig) *browser.BrowserConfig {
	bc := browser.DefaultBrowserConfig()
	bc.Headless = cfg.Headless
	bc.Timeout = cfg.Timeout
	bc.WaitDelay = cfg.WaitDelay
	bc.DisclosureDelay = cfg.DisclosureDelay
	bc.UserAgent = cfg.UserAgent
	bc.UserDataDir = cfg.UserDataDir
	bc.DisableImages = cfg.DisableImages
	bc.ViewportWidth = cfg.ViewportWidth
	bc.ViewportHeight = cfg.ViewportHeight
	return bc
}

func categories(cfg *config.Config) []scraper.Category {
	cats := make([]scraper.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		cats = append(cats, scraper.Category{Name: c.Name, URL: c.URL})
	}
	return cats
}

// newRunner wires the crawler and extractor around fetcher.
func newRunner(cfg *config.Config, fetcher scraper.PageFetcher, mm *monitoring.MetricsManager, state *monitoring.RunState) (*pipeline.Runner, error) {
	filter, err := scraper.NewLinkFilter(cfg.BaseURL, cfg.Discovery.ProductPathPattern, cfg.Discovery.PageSuffix)
	if err != nil {
		return nil, err
	}
	limiter := utils.NewRateLimiter(cfg.RateLimit.RequestsPerSecond)

	crawler := scraper.NewListingCrawler(fetcher, filter, scraper.ListingOptions{
		LoadMoreText: cfg.Discovery.LoadMoreText,
		MaxLoadMore:  cfg.Discovery.MaxLoadMore,
		Limiter:      limiter,
		Metrics:      mm,
	})
	extractor := scraper.NewExtractor(
		scraper.NewNormalizer(cfg.Extraction.MaterialVocabulary),
		scraper.NewVariantExpander(cfg.Extraction.MinPrice, cfg.Extraction.CurrencySymbol, cfg.Category),
	)

	return pipeline.NewRunner(pipeline.RunnerConfig{
		Fetcher:    fetcher,
		Crawler:    crawler,
		Extractor:  extractor,
		Categories: categories(cfg),
		Limiter:    limiter,
		Metrics:    mm,
		State:      state,
	})
}

// runScrape executes a full run. Export failures are fatal; persistence
// failures are reported and leave the exported files in place.
func runScrape(ctx context.Context, configFile string, verbose bool, service *errors.Service) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	configureLogging(cfg, verbose)
	logger.Infof("Configuration loaded: %s (%d categories)", cfg.Name, len(cfg.Categories))

	mm := monitoring.NewMetricsManager(monitoring.MetricsConfig{EnableGoMetrics: true})
	state := monitoring.NewRunState()
	if cfg.Metrics.ListenAddress != "" {
		server := monitoring.StartServer(cfg.Metrics.ListenAddress, monitoring.NewRouter(mm, state), utils.NewComponentLogger("monitoring"))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	client, err := browser.NewChromeClient(browserConfig(cfg.Browser))
	if err != nil {
		return fmt.Errorf("%w: %w", errBrowserStart, err)
	}
	defer client.Close()

	runner, err := newRunner(cfg, client, mm, state)
	if err != nil {
		return err
	}

	set, runErr := runner.Run(ctx)
	if runErr != nil && !stderrors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		logger.Warnf("Run interrupted, exporting %d records gathered so far", set.Len())
	}

	state.SetPhase(monitoring.PhaseExporting)
	if err := exportResults(cfg.Output, set); err != nil {
		mm.RecordOutputError("export")
		return err
	}
	logger.Infof("Total records: %d, unique: %d, duplicates replaced: %d", set.Len(), len(set.Unique()), set.Duplicates())

	if runErr == nil {
		state.SetPhase(monitoring.PhaseUploading)
		persistResults(ctx, cfg, set, mm, service)
	}

	state.SetPhase(monitoring.PhaseDone)
	return runErr
}

// exportResults writes the all and unique CSV files and the optional workbook.
func exportResults(cfg config.OutputConfig, set *pipeline.RecordSet) error {
	all, unique := set.All(), set.Unique()

	if err := output.WriteCSV(cfg.AllCSV, all); err != nil {
		return fmt.Errorf("failed to export %s: %w", cfg.AllCSV, err)
	}
	logger.Infof("Created: %s (%d rows)", cfg.AllCSV, len(all))

	if err := output.WriteCSV(cfg.UniqueCSV, unique); err != nil {
		return fmt.Errorf("failed to export %s: %w", cfg.UniqueCSV, err)
	}
	logger.Infof("Created: %s (%d rows)", cfg.UniqueCSV, len(unique))

	if cfg.Excel != "" {
		err := output.WriteWorkbook(cfg.Excel,
			output.Sheet{Name: output.SheetAllProducts, Records: all},
			output.Sheet{Name: output.SheetUniqueProducts, Records: unique},
		)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", cfg.Excel, err)
		}
		logger.Infof("Created: %s", cfg.Excel)
	}
	return nil
}

// persistResults mirrors the collections into SQLite and MongoDB when configured.
func persistResults(ctx context.Context, cfg *config.Config, set *pipeline.RecordSet, mm *monitoring.MetricsManager, service *errors.Service) {
	batches := []batch{
		{collection: cfg.MongoDB.CollectionUnique, records: set.Unique()},
		{collection: cfg.MongoDB.CollectionAll, records: set.All()},
	}

	if cfg.Output.SQLite != "" {
		if err := persistSQLite(ctx, cfg.Output, cfg.MongoDB.Source, batches, mm); err != nil {
			mm.RecordOutputError("sqlite")
			logger.Warnf("SQLite mirror skipped: %v", err)
		}
	}

	if !cfg.MongoDB.Enabled() {
		logger.Info("MongoDB upload disabled (mongodb.uri is empty)")
		return
	}
	if err := persistMongoDB(ctx, cfg.MongoDB, batches, mm, service); err != nil {
		mm.RecordOutputError("mongodb")
		logger.Warnf("MongoDB upload skipped: %v", err)
		logger.Warnf("CSV files have been saved locally; retry with: productscrapexter upload <config.yaml>")
	}
}

func persistSQLite(ctx context.Context, cfg config.OutputConfig, source string, batches []batch, mm *monitoring.MetricsManager) error {
	db, err := output.OpenSQLite(output.SQLiteOptions{
		DatabasePath:     cfg.SQLite,
		ConnectionParams: cfg.SQLiteParams,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	return uploadBatches(ctx, batches, source, mm, func(name string) (output.DocumentStore, error) {
		return db.Table(ctx, name)
	})
}

func persistMongoDB(ctx context.Context, cfg config.MongoDBConfig, batches []batch, mm *monitoring.MetricsManager, service *errors.Service) error {
	var client *output.MongoClient
	err := service.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		c, err := output.ConnectMongoDB(ctx, output.MongoDBOptions{
			ConnectionString: cfg.URI,
			Database:         cfg.Database,
			Timeout:          cfg.Timeout,
			RetryWrites:      true,
		})
		if err != nil {
			return err
		}
		client = c
		return nil
	}, "mongodb connect")
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	return uploadBatches(ctx, batches, cfg.Source, mm, func(name string) (output.DocumentStore, error) {
		return client.Collection(name), nil
	})
}

// uploadBatches upserts each batch into the store returned by open.
func uploadBatches(ctx context.Context, batches []batch, source string, mm *monitoring.MetricsManager, open func(name string) (output.DocumentStore, error)) error {
	for _, b := range batches {
		store, err := open(b.collection)
		if err != nil {
			return err
		}
		uploader := output.NewUploader(store, source, output.WithMetrics(mm))
		stats, err := uploader.Upload(ctx, b.records)
		if err != nil {
			return fmt.Errorf("upload to %s: %w", b.collection, err)
		}
		logger.Infof("%s: %s", store.Name(), stats)
	}
	return nil
}

// runUpload re-reads the exported CSV files and persists them.
func runUpload(ctx context.Context, configFile string, verbose bool, service *errors.Service) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	configureLogging(cfg, verbose)

	if !cfg.MongoDB.Enabled() && cfg.Output.SQLite == "" {
		return fmt.Errorf("%w: nothing to upload to, set mongodb.uri or output.sqlite", config.ErrInvalidConfig)
	}

	batches, err := readBatches(cfg)
	if err != nil {
		return err
	}
	mm := monitoring.NewMetricsManager(monitoring.MetricsConfig{})

	if cfg.Output.SQLite != "" {
		if err := persistSQLite(ctx, cfg.Output, cfg.MongoDB.Source, batches, mm); err != nil {
			return fmt.Errorf("sqlite upload failed: %w", err)
		}
	}
	if cfg.MongoDB.Enabled() {
		if err := persistMongoDB(ctx, cfg.MongoDB, batches, mm, service); err != nil {
			return fmt.Errorf("mongodb upload failed: %w", err)
		}
	}
	return nil
}

func readBatches(cfg *config.Config) ([]batch, error) {
	unique, err := output.ReadCSV(cfg.Output.UniqueCSV)
	if err != nil {
		return nil, err
	}
	all, err := output.ReadCSV(cfg.Output.AllCSV)
	if err != nil {
		return nil, err
	}
	return []batch{
		{collection: cfg.MongoDB.CollectionUnique, records: unique},
		{collection: cfg.MongoDB.CollectionAll, records: all},
	}, nil
}
