// Package main runs research scans from the command line, outside the
// server's schedule.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stock-scout/internal/config"
	"github.com/yourusername/stock-scout/internal/database"
	"github.com/yourusername/stock-scout/internal/llm"
	applogger "github.com/yourusername/stock-scout/internal/logger"
	"github.com/yourusername/stock-scout/internal/marketdata"
	"github.com/yourusername/stock-scout/internal/memo"
	"github.com/yourusername/stock-scout/internal/metrics"
	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/notify"
	"github.com/yourusername/stock-scout/internal/repository"
	"github.com/yourusername/stock-scout/internal/scanner"
	"github.com/yourusername/stock-scout/internal/scheduler"
	"github.com/yourusername/stock-scout/internal/service"
)

var (
	configFile string
	noPersist  bool

	appLog *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	repos  *repository.Repositories

	scanSvc      *scanner.Scanner
	inboxSvc     *service.InboxService
	watchlistSvc *service.WatchlistService
	sched        *scheduler.Scheduler
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	runCmd.Flags().BoolVar(&noPersist, "dry-run", false, "Analyze without persisting memos")
}

var rootCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run stock research scans",
	Long:  `Runs the analyst personas over tickers or the default watchlist and files the surviving memos into the approval inbox.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run [tickers...]",
	Short: "Scan tickers, or the default watchlist when none are given",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Hour)
		defer cancel()

		if noPersist {
			return runDry(ctx, args)
		}
		if len(args) == 0 {
			result, err := sched.RunWatchlistScan(ctx)
			if err != nil {
				return err
			}
			if result == nil {
				fmt.Println("Watchlist is empty, nothing scanned")
				return nil
			}
			printResult(result)
			return nil
		}

		result := scanSvc.RunFullScan(ctx, models.NormalizeTickers(args), "ad-hoc")
		for _, m := range result.HighConvictionMemos {
			if err := inboxSvc.CreateMemo(ctx, m); err != nil {
				appLog.WithError(err).WithField("ticker", m.Ticker).Error("Failed to persist memo")
			}
		}
		printResult(result)
		return nil
	},
}

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Show watchlist tickers whose last session moved beyond the trigger threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		wl, err := watchlistSvc.GetDefault(ctx)
		if err != nil {
			return err
		}

		triggered := scanSvc.TriggeredTickers(ctx, wl.Tickers, cfg.Scan.PriceTriggerPct)
		if len(triggered) == 0 {
			fmt.Println("No price triggers fired")
			return nil
		}
		for _, t := range triggered {
			fmt.Println(t)
		}
		return nil
	},
}

var analystsCmd = &cobra.Command{
	Use:   "analysts",
	Short: "List the configured analyst personas",
	Run: func(cmd *cobra.Command, args []string) {
		for _, key := range scanSvc.Analysts() {
			fmt.Println(key)
		}
	},
}

func main() {
	rootCmd.AddCommand(runCmd, triggersCmd, analystsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// runDry analyzes tickers without touching the database.
func runDry(ctx context.Context, tickers []string) error {
	if len(tickers) == 0 {
		wl, err := watchlistSvc.GetDefault(ctx)
		if err != nil {
			return err
		}
		tickers = wl.Tickers
	}

	result := scanSvc.RunFullScan(ctx, models.NormalizeTickers(tickers), "dry-run")
	printResult(result)
	for _, m := range result.HighConvictionMemos {
		fmt.Printf("  %s %s %s conviction=%.0f target=%.2f\n",
			m.Ticker, m.Analyst, m.Signal, m.Conviction, m.TargetPrice)
	}
	return nil
}

func printResult(result *models.ScanResult) {
	fmt.Printf("Scan %s: %s\n", result.ScanID, result.Status)
	fmt.Printf("  tickers scanned: %d/%d\n", result.TickersScanned, result.TotalTickers)
	fmt.Printf("  memos generated: %d\n", result.MemosGenerated)
	fmt.Printf("  duration: %s\n", result.Duration().Round(time.Second))
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
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
	provider := marketdata.NewFinancialDatasetsClient(httpClient, cache, cfg.MarketData.APIURL, cfg.MarketData.APIKey, appLog)

	var completer llm.Completer
	if cfg.Features.LLMRefinementEnabled && cfg.LLM.APIKey != "" {
		client, err := llm.NewAnthropicClient(&cfg.LLM, appLog)
		if err != nil {
			return fmt.Errorf("llm client: %w", err)
		}
		completer = client
	}

	notifier := notify.FromConfig(cfg.Notify, appLog)

	inboxSvc = service.NewInboxService(db, repos, notifier, appLog)
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

	scanSvc.WithEnricher(service.NewEnricher(
		service.NewMacroService(provider, appLog),
		service.NewSizingService(cfg.Sizing, appLog),
	))

	sched = scheduler.NewScheduler(scanSvc, inboxSvc, watchlistSvc, notifier, appLog)
	return nil
}
