package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-predictor/internal/app"
	"github.com/riskibarqy/match-predictor/internal/config"
	"github.com/riskibarqy/match-predictor/internal/observability"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	season := flag.Int("season", cfg.DefaultSeason, "season start year to collect")
	withStats := flag.Bool("stats", false, "fetch per-match statistics for matches lacking them")
	maxRequests := flag.Int("max-requests", 0, "cap on statistics requests for this run (0 = budget only)")
	competitions := flag.String("competition", "", "comma separated competition names (default: all configured)")
	backfillOnly := flag.Bool("backfill", false, "only fetch statistics for stored matches")
	flag.Parse()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *season, *withStats, *maxRequests, splitNames(*competitions), *backfillOnly); err != nil {
		logger.Error("collector failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger, season int, withStats bool, maxRequests int, names []string, backfillOnly bool) error {
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() { _ = stopProfiler() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = application.Close() }()

	selected := application.Competitions(names...)
	if len(selected) == 0 {
		return fmt.Errorf("%w: no configured competition matches %v", usecase.ErrInvalidInput, names)
	}

	var report usecase.CollectReport
	if backfillOnly {
		application.Provider.RefreshBudget(ctx)
		madeBefore := application.Provider.RequestsMade()
		for _, comp := range selected {
			used := report.StatisticsRequests
			if maxRequests > 0 && used >= maxRequests {
				break
			}
			limit := 0
			if maxRequests > 0 {
				limit = maxRequests - used
			}
			part, err := application.Collector.BackfillStatistics(ctx, comp.Name, season, limit)
			report.Add(part)
			if err != nil {
				return err
			}
		}
		report.RequestsMade = application.Provider.RequestsMade() - madeBefore
		report.RequestsRemaining = application.Provider.RemainingRequests()
	} else {
		collector := application.Collector
		if len(names) > 0 {
			collector = collector.WithCompetitions(selected)
		}
		report, err = collector.CollectSeason(ctx, season, withStats, maxRequests)
		if err != nil {
			return err
		}
	}

	out, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func splitNames(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
