package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
)

// Trainer is a scorer that can be fitted on historical examples.
type Trainer interface {
	prediction.Scorer
	Train(examples []prediction.Example) error
}

// The newest 1/heldOutShare of the examples is scored after a fit on the
// older ones.
const heldOutShare = 5

// TrainingReport describes one fit. Accuracy is the share of held-out
// matches whose outcome was picked correctly; it is only meaningful when
// HeldOut is positive.
type TrainingReport struct {
	Competition string  `json:"competition"`
	Matches     int     `json:"matches"`
	Examples    int     `json:"examples"`
	HeldOut     int     `json:"heldOut"`
	Accuracy    float64 `json:"heldOutAccuracy"`
	Backend     string  `json:"backend"`
}

type TrainingService struct {
	matchRepo match.Repository
	features  *FeatureService
	model     Trainer
	logger    *logging.Logger
}

func NewTrainingService(matchRepo match.Repository, features *FeatureService, model Trainer, logger *logging.Logger) *TrainingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TrainingService{
		matchRepo: matchRepo,
		features:  features,
		model:     model,
		logger:    logger,
	}
}

// Train fits the model on every stored match of the competition (all
// competitions when empty). Each example uses the windows as they stood
// before kick-off; matches where either side has no earlier history are
// left out.
func (s *TrainingService) Train(ctx context.Context, competition string) (TrainingReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrainingService.Train")
	defer span.End()

	report := TrainingReport{
		Competition: strings.TrimSpace(competition),
		Backend:     s.model.Name(),
	}
	matches, err := s.matchRepo.ListFinished(ctx, report.Competition)
	if err != nil {
		return report, fmt.Errorf("list finished matches: %w", err)
	}
	report.Matches = len(matches)

	window := s.features.Window()
	examples := make([]prediction.Example, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		home, err := s.features.SummaryBefore(ctx, m.HomeTeamID, window, m.PlayedAt)
		if err != nil {
			return report, fmt.Errorf("home summary match_id=%d: %w", m.ID, err)
		}
		away, err := s.features.SummaryBefore(ctx, m.AwayTeamID, window, m.PlayedAt)
		if err != nil {
			return report, fmt.Errorf("away summary match_id=%d: %w", m.ID, err)
		}
		if home.GamesPlayed == 0 || away.GamesPlayed == 0 {
			continue
		}

		examples = append(examples, prediction.Example{
			Home:    home,
			Away:    away,
			Outcome: prediction.OutcomeOf(m.HomeScore, m.AwayScore),
		})
	}
	report.Examples = len(examples)

	if err := s.evaluate(&report, examples); err != nil {
		return report, err
	}
	if err := s.model.Train(examples); err != nil {
		return report, fmt.Errorf("train %s: %w", s.model.Name(), err)
	}

	s.logger.InfoContext(ctx, "prediction model trained",
		"competition", report.Competition,
		"matches", report.Matches,
		"examples", report.Examples,
		"held_out", report.HeldOut,
		"held_out_accuracy", report.Accuracy,
		"backend", report.Backend,
	)
	return report, nil
}

// evaluate fits on all but the newest fifth of the chronological examples
// and scores the rest. Too few examples for the smaller fit skip the
// evaluation; the final fit on everything still runs.
func (s *TrainingService) evaluate(report *TrainingReport, examples []prediction.Example) error {
	heldOut := len(examples) / heldOutShare
	if heldOut == 0 {
		return nil
	}
	fit, test := examples[:len(examples)-heldOut], examples[len(examples)-heldOut:]
	if err := s.model.Train(fit); err != nil {
		if errors.Is(err, teamstats.ErrInsufficientData) {
			return nil
		}
		return fmt.Errorf("train %s on older examples: %w", s.model.Name(), err)
	}

	correct := 0
	for _, ex := range test {
		p, err := s.model.Score(ex.Home, ex.Away)
		if err != nil {
			return fmt.Errorf("score held-out example: %w", err)
		}
		if p.PredictedOutcome == ex.Outcome {
			correct++
		}
	}
	report.HeldOut = len(test)
	report.Accuracy = float64(correct) / float64(len(test))
	return nil
}
