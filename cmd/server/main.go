// Package main runs the stock-scout API server: the memo inbox,
// investment tracking, analyst leaderboard and the scan scheduler.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stock-scout/internal/api"
	"github.com/yourusername/stock-scout/internal/config"
	"github.com/yourusername/stock-scout/internal/database"
	"github.com/yourusername/stock-scout/internal/health"
	"github.com/yourusername/stock-scout/internal/llm"
	applogger "github.com/yourusername/stock-scout/internal/logger"
	"github.com/yourusername/stock-scout/internal/marketdata"
	"github.com/yourusername/stock-scout/internal/memo"
	"github.com/yourusername/stock-scout/internal/metrics"
	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/notify"
	"github.com/yourusername/stock-scout/internal/realtime"
	"github.com/yourusername/stock-scout/internal/repository"
	"github.com/yourusername/stock-scout/internal/scanner"
	"github.com/yourusername/stock-scout/internal/scheduler"
	"github.com/yourusername/stock-scout/internal/service"
)

// Build information - set via ldflags
var (
	Version = "dev"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
	provider   *marketdata.FinancialDatasetsClient
	llmClient  *llm.AnthropicClient

	inboxSvc      *service.InboxService
	investmentSvc *service.InvestmentService
	statsSvc      *service.StatsService
	watchlistSvc  *service.WatchlistService
	scanSvc       *scanner.Scanner
	sched         *scheduler.Scheduler
	hub           *realtime.Hub
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the stock research API server",
	Long:  `Serves the memo inbox, investment tracking and analyst leaderboard, and schedules the quarterly watchlist scans.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = applogger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)

	metrics.InitRegistry()

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return err
	}

	httpClient := marketdata.NewRateLimitedHTTPClient(marketdata.HTTPClientConfig{
		Timeout:           cfg.MarketData.Timeout(),
		MaxRetries:        cfg.MarketData.RetryAttempts,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         cfg.MarketData.RequestsPerSecond,
		CircuitBreakerMax: 5,
	}, appLog)
	cache := marketdata.NewSnapshotCache(time.Duration(cfg.MarketData.CacheTTLSeconds) * time.Second)
	provider = marketdata.NewFinancialDatasetsClient(httpClient, cache, cfg.MarketData.APIURL, cfg.MarketData.APIKey, appLog)

	var completer llm.Completer
	if cfg.Features.LLMRefinementEnabled && cfg.LLM.APIKey != "" {
		llmClient, err = llm.NewAnthropicClient(&cfg.LLM, appLog)
		if err != nil {
			return fmt.Errorf("llm client: %w", err)
		}
		completer = llmClient
		appLog.WithField("model", cfg.LLM.Model).Info("LLM refinement enabled")
	} else {
		appLog.Info("LLM refinement disabled, using heuristic verdicts")
	}

	notifier := notify.FromConfig(cfg.Notify, appLog)

	inboxSvc = service.NewInboxService(db, repos, notifier, appLog)
	investmentSvc = service.NewInvestmentService(db, repos, provider, appLog)
	statsSvc = service.NewStatsService(db, repos, appLog)
	watchlistSvc = service.NewWatchlistService(repos, appLog)

	factory := memo.NewFactory(completer, cfg.Scan.ConvictionThreshold, appLog)
	scanSvc, err = scanner.New(provider, factory, completer, models.ScanConfig{
		Analysts:            cfg.Scan.Analysts,
		ConvictionThreshold: cfg.Scan.ConvictionThreshold,
		BatchSize:           cfg.Scan.BatchSize,
		RateLimitDelay:      cfg.Scan.RateLimitDelay(),
	}, appLog)
	if err != nil {
		return fmt.Errorf("scanner: %w", err)
	}

	enricher := service.NewEnricher(
		service.NewMacroService(provider, appLog),
		service.NewSizingService(cfg.Sizing, appLog),
	)
	scanSvc.WithEnricher(enricher)

	if cfg.Features.RealtimeEnabled {
		hub = realtime.NewHub(appLog)
		scanSvc.WithBroadcaster(hub)
	}

	sched = scheduler.NewScheduler(scanSvc, inboxSvc, watchlistSvc, notifier, appLog)
	return nil
}

func runServer() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		appLog.WithField("signal", sig).Info("Shutdown signal received")
		cancel()
	}()

	defer db.Close()

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        strconv.Itoa(cfg.Server.HealthPort),
		Logger:      appLog,
	})
	healthServer.RegisterCheck("database", db.HealthCheck)
	if llmClient != nil {
		healthServer.RegisterCheck("llm", llmClient.HealthCheck)
	}
	if err := healthServer.Start(ctx); err != nil {
		return err
	}

	if cfg.Scheduler.Enabled {
		if err := sched.ScheduleQuarterlyScan(cfg.Scheduler.QuarterlyCron); err != nil {
			return err
		}
		if cfg.Features.PriceTriggersEnabled && cfg.Scan.PriceTriggerPct > 0 {
			// weekday evenings, after the close
			if err := sched.SchedulePriceTriggers("0 22 * * 1-5", cfg.Scan.PriceTriggerPct); err != nil {
				return err
			}
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	server := api.NewServer(inboxSvc, investmentSvc, statsSvc, watchlistSvc, sched, hub, appLog)
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"port":        cfg.Server.Port,
		"scheduler":   cfg.Scheduler.Enabled,
		"realtime":    cfg.Features.RealtimeEnabled,
	}).Info("Stock Scout server starting")

	return server.Start(ctx, cfg.Server)
}
