package commands

import (
	"fmt"

	"github.com/basismind/basismind/internal/alert"
	"github.com/basismind/basismind/internal/brain"
	"github.com/basismind/basismind/internal/engine"
	"github.com/basismind/basismind/internal/ingest"
	"github.com/basismind/basismind/internal/store"
	"github.com/basismind/basismind/pkg/config"
	"github.com/basismind/basismind/pkg/database"
	"github.com/basismind/basismind/pkg/httputil"
	"github.com/basismind/basismind/pkg/logger"
	"github.com/basismind/basismind/pkg/redis"
)

// deps holds the fully wired application graph shared by the commands.
type deps struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	cache *redis.Client

	market  *store.MarketRepository
	reports *store.ReportRepository
	quality *store.QualityRepository

	alerts       *alert.Manager
	pipeline     *ingest.Pipeline // nil when no sources are configured
	orchestrator *brain.Orchestrator
}

// initDeps loads config and wires the application graph bottom-up.
func initDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	market := store.NewMarketRepository(db.Pool)
	reports := store.NewReportRepository(db.Pool)
	quality := store.NewQualityRepository(db.Pool)

	alerts := alert.NewManager(log)
	alerts.Register(alert.NewLogHandler(log))
	if cfg.Alerts.Enabled && cfg.Alerts.WebhookURL != "" {
		alerts.Register(alert.NewWebhookHandler(cfg.Alerts.WebhookURL, alert.Level(cfg.Alerts.MinLevel)))
	}

	pipeline, err := buildPipeline(cfg, log, market, quality, redisClient)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, err
	}

	book := engine.DefaultBook()
	book.LongLimitPct = cfg.Book.LongLimitPct
	book.ShortLimitPct = cfg.Book.ShortLimitPct
	book.HedgeMetaPct = cfg.Book.HedgeMetaPct

	eng := engine.New(book, log)
	orchestrator := brain.New(market, reports, eng, log).WithAlerts(alerts)

	return &deps{
		cfg:          cfg,
		log:          log,
		db:           db,
		cache:        redisClient,
		market:       market,
		reports:      reports,
		quality:      quality,
		alerts:       alerts,
		pipeline:     pipeline,
		orchestrator: orchestrator,
	}, nil
}

// buildPipeline assembles the ingestion pipeline from the configured
// sources. Returns nil when no primary source is configured.
func buildPipeline(
	cfg *config.Config,
	log *logger.Logger,
	market *store.MarketRepository,
	quality *store.QualityRepository,
	redisClient *redis.Client,
) (*ingest.Pipeline, error) {
	var sources []ingest.DataSource

	if cfg.Sources.CSVPath != "" {
		csvSource, err := ingest.NewCSVSource(cfg.Sources.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("open CSV source: %w", err)
		}
		sources = append(sources, csvSource)
	}

	if len(sources) == 0 {
		log.Warn("No ingestion sources configured, ingestion disabled")
		return nil, nil
	}

	pipeline, err := ingest.NewPipeline(sources, market, log)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	pipeline.WithHistory(market).WithQualityLog(quality)

	if cfg.Sources.LineupEnabled && cfg.Sources.LineupURL != "" {
		httpClient := httputil.New(cfg, log)
		lineup := ingest.NewLineupSource(httpClient, cfg.Sources.LineupURL).
			WithRateLimiter(redis.NewRateLimiter(redisClient, "basismind"))
		pipeline.WithEnrichers(lineup)
	}

	return pipeline, nil
}

// Close releases the connections held by the graph.
func (d *deps) Close() {
	if d.cache != nil {
		d.cache.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
