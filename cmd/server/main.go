package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"feedbackinsights/internal/cache"
	"feedbackinsights/internal/config"
	cronrunner "feedbackinsights/internal/cron"
	"feedbackinsights/internal/db"
	"feedbackinsights/internal/handler"
	"feedbackinsights/internal/inference"
	"feedbackinsights/internal/logger"
	"feedbackinsights/internal/notify"
	"feedbackinsights/internal/realtime"
	gormrepository "feedbackinsights/internal/repository/gorm"
	"feedbackinsights/internal/service"

	_ "feedbackinsights/docs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "feedback-insights:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfgPath := os.Getenv("FI_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	envOnly := false
	if envOnlyRaw := os.Getenv("FI_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		log.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(ctx); err != nil {
		log.Warn("init default system switches failed", zap.Error(err))
	}

	backend, err := inference.NewBackend(cfg.Inference, log)
	if err != nil {
		return err
	}
	loadCtx, cancelLoad := context.WithTimeout(ctx, 2*cfg.Inference.Timeout+5*time.Second)
	analyzer, err := inference.New(loadCtx, backend, inference.OptionsFromConfig(cfg.Inference, log))
	cancelLoad()
	if err != nil {
		return err
	}
	defer func() {
		if err := analyzer.Shutdown(); err != nil {
			log.Warn("analyzer shutdown", zap.Error(err))
		}
	}()

	cacheStore, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if cacheStore != nil {
		defer cacheStore.Close()
	}
	vocabulary := cache.NewVocabulary(store, cacheStore, cfg.Cache.TTL, log)

	hub := realtime.NewHub(log)
	publishers := []service.FeedbackPublisher{hub}
	if notifier := notify.New(cfg.Notify, log); notifier != nil {
		notifier.Enabled = func(ctx context.Context) bool {
			return settingsSvc.IsEnabled(ctx, service.FeatureNotify, true)
		}
		publishers = append(publishers, notifier)
		log.Info("feedback webhook enabled", zap.Strings("sentiments", cfg.Notify.Sentiments))
	}

	feedbackSvc := &service.FeedbackService{
		Repo:                   store,
		Analyzer:               analyzer,
		Vocabulary:             vocabulary,
		Flags:                  settingsSvc,
		Publishers:             publishers,
		Logger:                 log,
		DescriptionPrefixRunes: cfg.Ingestion.DescriptionPrefixRunes,
	}
	defer feedbackSvc.Wait()
	statsSvc := &service.DailyStatsService{
		Repo:         store,
		Logger:       log,
		Flags:        settingsSvc,
		LookbackDays: cfg.Stats.LookbackDays,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := handler.NewRouter(handler.Deps{
		Repo:       store,
		DB:         dbConn.SQL,
		Catalog:    &service.CatalogService{Repo: store},
		Feedback:   feedbackSvc,
		Summary:    &service.SummaryService{Repo: store},
		Stats:      statsSvc,
		Settings:   settingsSvc,
		Vocabulary: vocabulary,
		LiveFeed:   hub,
		Swagger:    true,
		Logger:     log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var runner *cronrunner.Runner
	if cfg.Cron.Enabled {
		runner = cronrunner.New(log, ctx)
		if _, err := runner.Add("daily_stats", cfg.Cron.DailyStats, statsSvc.RunOnce); err != nil {
			return fmt.Errorf("schedule daily stats: %w", err)
		}
		go runner.RunNow("daily_stats", statsSvc.RunOnce)
		runner.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr), zap.String("backend", backend.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case serveErr = <-errCh:
		log.Error("server error", zap.Error(serveErr))
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if runner != nil {
		runner.Stop()
	}
	return serveErr
}
