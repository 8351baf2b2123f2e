package prediction

import (
	"fmt"
	"math"

	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
)

// ErrUntrained is returned by a learned scorer asked to predict before it
// has been fitted. It matches teamstats.ErrInsufficientData.
var ErrUntrained = fmt.Errorf("model is not trained: %w", teamstats.ErrInsufficientData)

type Outcome string

const (
	HomeWin Outcome = "Home Win"
	Draw    Outcome = "Draw"
	AwayWin Outcome = "Away Win"
)

// confidenceGames is the window depth at which confidence stops being
// penalised.
const confidenceGames = 5

type DataQuality struct {
	HomeGamesPlayed int `json:"homeGamesPlayed"`
	AwayGamesPlayed int `json:"awayGamesPlayed"`
	HomeStatsGames  int `json:"homeStatsGames"`
	AwayStatsGames  int `json:"awayStatsGames"`
}

// Prediction probabilities are percentages that sum to 100.
type Prediction struct {
	HomeWinProbability float64     `json:"homeWinProbability"`
	DrawProbability    float64     `json:"drawProbability"`
	AwayWinProbability float64     `json:"awayWinProbability"`
	PredictedOutcome   Outcome     `json:"predictedOutcome"`
	Confidence         float64     `json:"confidence"`
	DataQuality        DataQuality `json:"dataQuality"`
	Scoreline          Scoreline   `json:"scoreline"`
	Backend            string      `json:"backend"`
}

// Scorer turns two team summaries into an outcome distribution.
type Scorer interface {
	Name() string
	Score(home, away teamstats.Summary) (Prediction, error)
}

// ConfidencePenalty scales confidence down linearly until both teams have a
// full window of history.
func ConfidencePenalty(homeGames, awayGames int) float64 {
	games := min(homeGames, awayGames)
	if games <= 0 {
		return 0
	}
	return math.Min(1, float64(games)/confidenceGames)
}

// OutcomeOf classifies a final score.
func OutcomeOf(homeGoals, awayGoals int) Outcome {
	switch {
	case homeGoals > awayGoals:
		return HomeWin
	case homeGoals < awayGoals:
		return AwayWin
	default:
		return Draw
	}
}

// PickOutcome returns the outcome with the largest mass. A draw wins any tie
// it is part of; a home/away tie goes to the home side.
func PickOutcome(home, draw, away float64) Outcome {
	best := math.Max(home, math.Max(draw, away))
	switch {
	case draw == best:
		return Draw
	case home == best:
		return HomeWin
	default:
		return AwayWin
	}
}

// finalize clamps the raw masses at zero, normalises them into percentages
// and fills confidence and data quality. It falls back to a uniform split
// when nothing positive is left.
func finalize(backend string, home, draw, away float64, hs, as teamstats.Summary, scoreline ScorelineModel) Prediction {
	home, draw, away = math.Max(home, 0), math.Max(draw, 0), math.Max(away, 0)
	total := home + draw + away
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		home, draw, away, total = 1, 1, 1, 3
	}
	home, draw, away = home/total, draw/total, away/total

	outcome := PickOutcome(home, draw, away)
	best := math.Max(home, math.Max(draw, away))

	return Prediction{
		HomeWinProbability: home * 100,
		DrawProbability:    draw * 100,
		AwayWinProbability: away * 100,
		PredictedOutcome:   outcome,
		Confidence:         best * 100 * ConfidencePenalty(hs.GamesPlayed, as.GamesPlayed),
		DataQuality: DataQuality{
			HomeGamesPlayed: hs.GamesPlayed,
			AwayGamesPlayed: as.GamesPlayed,
			HomeStatsGames:  hs.StatsGames,
			AwayStatsGames:  as.StatsGames,
		},
		Scoreline: scoreline.Estimate(hs, as, outcome),
		Backend:   backend,
	}
}
