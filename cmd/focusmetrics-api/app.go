package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/JonnyWalker81/focusmetrics/internal/analytics"
	"github.com/JonnyWalker81/focusmetrics/internal/cache"
	"github.com/JonnyWalker81/focusmetrics/internal/config"
	"github.com/JonnyWalker81/focusmetrics/internal/logger"
	"github.com/JonnyWalker81/focusmetrics/internal/repository"
	"github.com/JonnyWalker81/focusmetrics/internal/service"
	"github.com/JonnyWalker81/focusmetrics/pkg/supabase"
)

// app holds the wired dependencies shared by serve and refresh
type app struct {
	cfg          *config.Config
	log          logger.Logger
	supabase     *supabase.Client
	db           *gorm.DB
	store        *cache.Store
	activityRepo repository.ActivityRepository
	wellnessRepo repository.WellnessRepository
	analytics    service.AnalyticsService
}

func newLogger(cfg config.LogConfig) logger.Logger {
	log := logger.New(logger.Config{
		Level:   logger.ParseLevel(cfg.Level),
		Format:  cfg.Format,
		Backend: cfg.Backend,
	})
	logger.SetDefault(log)
	return log
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	location, err := time.LoadLocation(cfg.Analytics.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	dayLocation := repository.WithDayLocation(location)

	if cfg.Supabase.URL != "" {
		a.supabase = supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	}

	switch cfg.Database.Driver {
	case "supabase":
		a.activityRepo = repository.NewSupabaseActivityRepository(a.supabase)
		a.wellnessRepo = repository.NewSupabaseWellnessRepository(a.supabase, dayLocation)
	default:
		db, err := repository.OpenDB(cfg.Database.Driver, cfg.Database.DSN, a.log)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := repository.AutoMigrate(db); err != nil {
				_ = repository.CloseDB(db)
				return nil, err
			}
		}
		a.db = db
		a.activityRepo = repository.NewActivityRepository(db)
		a.wellnessRepo = repository.NewWellnessRepository(db, dayLocation)
	}

	backend, err := newCacheBackend(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = cache.NewStore(backend,
		cache.WithOpTimeout(cfg.Cache.OpTimeout),
		cache.WithLogger(log),
	)

	a.analytics = service.NewAnalyticsService(a.activityRepo, a.wellnessRepo, a.store, service.AnalyticsConfig{
		TTL: service.TTLConfig{
			Metrics:     cfg.Analytics.TTL.Metrics,
			Trends:      cfg.Analytics.TTL.Trends,
			Correlation: cfg.Analytics.TTL.Correlation,
			Windows:     cfg.Analytics.TTL.Windows,
		},
		SourceTimeout:   cfg.Analytics.SourceTimeout,
		CategoryAverage: analytics.ParseCategoryAverageMode(cfg.Analytics.CategoryAverage),
		CoalesceMisses:  cfg.Analytics.CoalesceMisses,
		Location:        location,
	}, log)

	return a, nil
}

func newCacheBackend(ctx context.Context, cfg *config.Config) (cache.Backend, error) {
	if cfg.Cache.Driver == "memory" {
		return cache.NewMemoryBackend(), nil
	}
	return cache.NewRedisBackend(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// Close releases the cache and database connections
func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.db != nil {
		errs = append(errs, repository.CloseDB(a.db))
	}
	return errors.Join(errs...)
}
