package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/domain/team"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultBatchWorkers = 8
	maxBatchPairs       = 100
)

type TeamRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	League  string `json:"league"`
	Country string `json:"country,omitempty"`
}

func teamRefFrom(t team.Team) TeamRef {
	return TeamRef{ID: t.ID, Name: t.Name, League: t.League, Country: t.Country}
}

type MatchPrediction struct {
	HomeTeam    TeamRef           `json:"homeTeam"`
	AwayTeam    TeamRef           `json:"awayTeam"`
	HomeSummary teamstats.Summary `json:"homeSummary"`
	AwaySummary teamstats.Summary `json:"awaySummary"`
	prediction.Prediction
}

type PredictionPair struct {
	HomeTeamID int64 `json:"homeTeamId" validate:"gt=0"`
	AwayTeamID int64 `json:"awayTeamId" validate:"gt=0,nefield=HomeTeamID"`
}

// BatchPrediction keeps the request order; exactly one of Prediction and
// Error is set.
type BatchPrediction struct {
	PredictionPair
	Prediction *MatchPrediction `json:"prediction,omitempty"`
	Error      string           `json:"error,omitempty"`
	err        error
}

func (b BatchPrediction) Err() error {
	return b.err
}

type PredictionConfig struct {
	BatchWorkers int
}

type PredictionService struct {
	teamRepo team.Repository
	features *FeatureService
	scorer   prediction.Scorer
	fallback prediction.Scorer
	cfg      PredictionConfig
	logger   *logging.Logger
}

// NewPredictionService scores with scorer. When scorer reports it is not
// trained yet, fallback (if any) answers instead.
func NewPredictionService(
	teamRepo team.Repository,
	features *FeatureService,
	scorer prediction.Scorer,
	fallback prediction.Scorer,
	cfg PredictionConfig,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = defaultBatchWorkers
	}

	return &PredictionService{
		teamRepo: teamRepo,
		features: features,
		scorer:   scorer,
		fallback: fallback,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *PredictionService) PredictMatch(ctx context.Context, homeTeamID, awayTeamID int64) (MatchPrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.PredictMatch")
	defer span.End()

	if homeTeamID <= 0 || awayTeamID <= 0 {
		return MatchPrediction{}, fmt.Errorf("%w: team ids must be greater than zero", ErrInvalidInput)
	}
	if homeTeamID == awayTeamID {
		return MatchPrediction{}, fmt.Errorf("%w: home and away team must differ", ErrInvalidInput)
	}

	var (
		home, away               team.Team
		homeSummary, awaySummary teamstats.Summary
	)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		if home, err = s.teamRepo.GetByID(ctx, homeTeamID); err != nil {
			return fmt.Errorf("get home team id=%d: %w", homeTeamID, err)
		}
		homeSummary, err = s.features.TeamSummary(ctx, homeTeamID, 0)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		if away, err = s.teamRepo.GetByID(ctx, awayTeamID); err != nil {
			return fmt.Errorf("get away team id=%d: %w", awayTeamID, err)
		}
		awaySummary, err = s.features.TeamSummary(ctx, awayTeamID, 0)
		return err
	})
	if err := p.Wait(); err != nil {
		return MatchPrediction{}, err
	}

	result, err := s.score(ctx, homeSummary, awaySummary)
	if err != nil {
		return MatchPrediction{}, err
	}

	s.logger.DebugContext(ctx, "match predicted",
		"home_team_id", homeTeamID,
		"away_team_id", awayTeamID,
		"outcome", result.PredictedOutcome,
		"confidence", result.Confidence,
		"backend", result.Backend,
	)
	return MatchPrediction{
		HomeTeam:    teamRefFrom(home),
		AwayTeam:    teamRefFrom(away),
		HomeSummary: homeSummary,
		AwaySummary: awaySummary,
		Prediction:  result,
	}, nil
}

// PredictMany predicts every pair on a bounded worker pool. Per-pair
// failures are reported in place; only pool failures fail the batch.
func (s *PredictionService) PredictMany(ctx context.Context, pairs []PredictionPair) ([]BatchPrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.PredictMany")
	defer span.End()

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: at least one pair is required", ErrInvalidInput)
	}
	if len(pairs) > maxBatchPairs {
		return nil, fmt.Errorf("%w: at most %d pairs per batch", ErrInvalidInput, maxBatchPairs)
	}

	workers, err := ants.NewPool(min(s.cfg.BatchWorkers, len(pairs)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	results := make([]BatchPrediction, len(pairs))
	var wg sync.WaitGroup
	for i, pair := range pairs {
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			row := BatchPrediction{PredictionPair: pair}
			got, err := s.PredictMatch(ctx, pair.HomeTeamID, pair.AwayTeamID)
			if err != nil {
				row.err = err
				row.Error = err.Error()
			} else {
				row.Prediction = &got
			}
			results[i] = row
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit prediction to worker pool: %w", err)
		}
	}
	wg.Wait()

	return results, nil
}

func (s *PredictionService) score(ctx context.Context, home, away teamstats.Summary) (prediction.Prediction, error) {
	result, err := s.scorer.Score(home, away)
	if errors.Is(err, prediction.ErrUntrained) && s.fallback != nil {
		s.logger.DebugContext(ctx, "scorer not trained, using fallback",
			"scorer", s.scorer.Name(),
			"fallback", s.fallback.Name(),
		)
		result, err = s.fallback.Score(home, away)
	}
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("score match with %s: %w", s.scorer.Name(), err)
	}
	return result, nil
}
