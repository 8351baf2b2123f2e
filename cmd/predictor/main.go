package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-predictor/internal/app"
	"github.com/riskibarqy/match-predictor/internal/config"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	pairs := flag.String("pairs", "", "comma separated home:away team id pairs, e.g. 12:45,7:9")
	home := flag.String("home", "", "home team name")
	away := flag.String("away", "", "away team name")
	league := flag.String("league", "", "league used to disambiguate team names")
	train := flag.Bool("train", false, "fit the learned model on stored history before predicting")
	flag.Parse()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if *train {
		cfg.PredictionBackend = config.BackendLearned
		cfg.PredictionTrainOnStart = true
	}

	if err := run(cfg, logger, *pairs, *home, *away, *league); err != nil {
		logger.Error("predictor failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger, rawPairs, home, away, league string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = application.Close() }()

	var out any
	switch {
	case rawPairs != "":
		pairs, err := parsePairs(rawPairs)
		if err != nil {
			return err
		}
		out, err = application.Predictions.PredictMany(ctx, pairs)
		if err != nil {
			return err
		}
	case home != "" && away != "":
		homeID, err := application.Teams.ResolveTeam(ctx, home, league)
		if err != nil {
			return err
		}
		awayID, err := application.Teams.ResolveTeam(ctx, away, league)
		if err != nil {
			return err
		}
		out, err = application.Predictions.PredictMatch(ctx, homeID, awayID)
		if err != nil {
			return err
		}
	default:
		flag.Usage()
		return fmt.Errorf("%w: either -pairs or both -home and -away are required", usecase.ErrInvalidInput)
	}

	encoded, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode predictions: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func parsePairs(raw string) ([]usecase.PredictionPair, error) {
	var pairs []usecase.PredictionPair
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		homeRaw, awayRaw, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("%w: pair %q must look like home:away", usecase.ErrInvalidInput, item)
		}
		homeID, err := strconv.ParseInt(strings.TrimSpace(homeRaw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: pair %q: home id: %v", usecase.ErrInvalidInput, item, err)
		}
		awayID, err := strconv.ParseInt(strings.TrimSpace(awayRaw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: pair %q: away id: %v", usecase.ErrInvalidInput, item, err)
		}
		pairs = append(pairs, usecase.PredictionPair{HomeTeamID: homeID, AwayTeamID: awayID})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no pairs given", usecase.ErrInvalidInput)
	}
	return pairs, nil
}
