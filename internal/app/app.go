// Package app builds the shared dependencies of the CLI and the bot from the
// loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"linkedin-job-tracker/internal/api/linkedin"
	"linkedin-job-tracker/internal/bot"
	"linkedin-job-tracker/internal/bot/middleware"
	"linkedin-job-tracker/internal/bot/scheduler"
	"linkedin-job-tracker/internal/config"
	"linkedin-job-tracker/internal/enrich"
	"linkedin-job-tracker/internal/extractor"
	"linkedin-job-tracker/internal/report"
	"linkedin-job-tracker/internal/scraper"
	"linkedin-job-tracker/internal/storage/jsonfile"
	"linkedin-job-tracker/internal/storage/postgres"
	"linkedin-job-tracker/internal/storage/redis"
	"linkedin-job-tracker/internal/tracker"

	"go.uber.org/zap"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Repo     tracker.Repository
	Tracker  *tracker.Tracker
	Client   *linkedin.Client
	Pipeline *scraper.Pipeline

	postgres *postgres.Store
}

// New opens the configured storage backend and assembles the scrape pipeline.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		store, err := postgres.New(cfg.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		a.postgres = store
		a.Repo = store
	default:
		store, err := jsonfile.New(cfg.OutputDir, cfg.IndexFile, logger)
		if err != nil {
			return nil, fmt.Errorf("open output dir: %w", err)
		}
		a.Repo = store
	}

	a.Tracker = tracker.New(a.Repo, logger, tracker.WithIndexer(report.BuildIndex))

	client, err := linkedin.New(linkedin.Options{
		Timeout:       cfg.RequestTimeout,
		MinDelay:      cfg.MinDelay,
		MaxDelay:      cfg.MaxDelay,
		MaxRetries:    cfg.MaxRetries,
		MaxEmptyPages: cfg.MaxEmptyPages,
		ProxyURL:      cfg.Proxy(),
		UserAgents:    cfg.Profile.UserAgents,
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create linkedin client: %w", err)
	}
	a.Client = client

	ext := extractor.New(logger,
		extractor.WithDescriptionFetcher(client),
		extractor.WithSelectors(cfg.Profile.Selectors),
		extractor.WithDebugDir(cfg.DebugDir),
	)

	a.Pipeline = scraper.New(client, ext, enrich.New(cfg.Keywords()), logger,
		scraper.WithRepository(a.Repo),
		scraper.WithMaxJobs(cfg.MaxJobs),
	)

	logger.Info("application initialized",
		zap.String("storage", cfg.StorageBackend),
		zap.Int("max_jobs", cfg.MaxJobs),
	)

	return a, nil
}

// SearchParams returns the search configured by the profile and env defaults.
func (a *App) SearchParams() linkedin.SearchParams {
	s := a.Config.Profile.Search
	return linkedin.SearchParams{
		Keywords:   a.Config.SearchKeywords(),
		Location:   a.Config.SearchLocation(),
		Remote:     s.Remote,
		Hybrid:     s.Hybrid,
		EasyApply:  s.EasyApply,
		PastWeek:   s.PastWeek,
		Experience: s.Experience,
	}
}

// RunBot serves Telegram updates and runs the periodic job check until ctx is
// cancelled.
func (a *App) RunBot(ctx context.Context) error {
	cfg := a.Config
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("invalid bot config: %w", err)
	}

	var (
		limiter middleware.Limiter
		seen    scheduler.SeenStore
	)

	if cfg.RedisAddr != "" {
		cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, a.Logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer cache.Close()
		limiter = cache
		seen = cache
	} else if a.postgres != nil {
		seen = a.postgres
	} else {
		a.Logger.Warn("no redis or postgres configured, seen jobs are kept in memory")
		seen = scheduler.NewMemorySeen()
	}

	tgBot, err := bot.New(cfg, a.Tracker, limiter, a.Logger)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	if cfg.TelegramChatID != 0 {
		checker := scheduler.New(tgBot.Telebot(), a.Pipeline, seen, scheduler.Options{
			ChatID:       cfg.TelegramChatID,
			SearchURL:    linkedin.BuildSearchURL("", a.SearchParams()),
			Interval:     cfg.CheckInterval,
			MinRelevance: cfg.MinNotifyRelevance,
		}, a.Logger)
		go checker.Start(ctx)
	} else {
		a.Logger.Warn("TELEGRAM_CHAT_ID is not set, job notifications are disabled")
	}

	return tgBot.Start(ctx)
}

func (a *App) Close() error {
	var errs []error
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	return errors.Join(errs...)
}
