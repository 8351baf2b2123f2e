package prediction

import (
	"math"

	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
)

type Scoreline struct {
	HomeGoals         int     `json:"homeGoals"`
	AwayGoals         int     `json:"awayGoals"`
	Probability       float64 `json:"probability"`
	ExpectedHomeGoals float64 `json:"expectedHomeGoals"`
	ExpectedAwayGoals float64 `json:"expectedAwayGoals"`
}

// ScorelineModel estimates a score from two independent Poisson goal counts
// with the Dixon-Coles low-score correction.
type ScorelineModel struct {
	HomeFactor float64
	Rho        float64
	MaxGoals   int
	// Goals per game used for a side with no history.
	PriorHomeGoals float64
	PriorAwayGoals float64
}

func DefaultScorelineModel() ScorelineModel {
	return ScorelineModel{
		HomeFactor:     1.1,
		Rho:            -0.1,
		MaxGoals:       10,
		PriorHomeGoals: 1.5,
		PriorAwayGoals: 1.2,
	}
}

const minLambda = 0.05

// Lambdas returns the expected goals for each side: the mean of one side's
// scoring rate and the other side's conceding rate.
func (m ScorelineModel) Lambdas(home, away teamstats.Summary) (float64, float64) {
	homeAttack := rateOr(home.GamesPlayed, home.AvgGoalsScored, m.PriorHomeGoals)
	awayDefence := rateOr(away.GamesPlayed, away.AvgGoalsConceded, m.PriorHomeGoals)
	awayAttack := rateOr(away.GamesPlayed, away.AvgGoalsScored, m.PriorAwayGoals)
	homeDefence := rateOr(home.GamesPlayed, home.AvgGoalsConceded, m.PriorAwayGoals)

	factor := m.HomeFactor
	if factor <= 0 {
		factor = 1
	}
	lh := math.Max((homeAttack+awayDefence)/2*factor, minLambda)
	la := math.Max((awayAttack+homeDefence)/2, minLambda)
	return lh, la
}

// Matrix returns P(home=i, away=j) for 0 <= i,j <= MaxGoals.
func (m ScorelineModel) Matrix(lh, la float64) [][]float64 {
	bound := m.MaxGoals
	if bound < 1 {
		bound = DefaultScorelineModel().MaxGoals
	}

	homeProbs := poissonSeries(lh, bound)
	awayProbs := poissonSeries(la, bound)
	out := make([][]float64, bound+1)
	for i := range out {
		out[i] = make([]float64, bound+1)
		for j := range out[i] {
			out[i][j] = homeProbs[i] * awayProbs[j] * dixonColes(i, j, m.Rho)
		}
	}
	return out
}

// Estimate picks the most likely score whose result agrees with outcome.
func (m ScorelineModel) Estimate(home, away teamstats.Summary, outcome Outcome) Scoreline {
	lh, la := m.Lambdas(home, away)
	matrix := m.Matrix(lh, la)

	var total float64
	for i := range matrix {
		for j := range matrix[i] {
			total += matrix[i][j]
		}
	}

	best := Scoreline{ExpectedHomeGoals: lh, ExpectedAwayGoals: la, Probability: -1}
	for i := range matrix {
		for j := range matrix[i] {
			if !consistent(i, j, outcome) {
				continue
			}
			if matrix[i][j] > best.Probability {
				best.HomeGoals, best.AwayGoals, best.Probability = i, j, matrix[i][j]
			}
		}
	}
	if total > 0 {
		best.Probability = best.Probability / total * 100
	}
	return best
}

func consistent(home, away int, outcome Outcome) bool {
	switch outcome {
	case HomeWin:
		return home > away
	case AwayWin:
		return away > home
	default:
		return home == away
	}
}

func rateOr(games int, rate, prior float64) float64 {
	if games <= 0 {
		return prior
	}
	return rate
}

func poissonSeries(lambda float64, bound int) []float64 {
	out := make([]float64, bound+1)
	out[0] = math.Exp(-lambda)
	for k := 1; k <= bound; k++ {
		out[k] = out[k-1] * lambda / float64(k)
	}
	return out
}

// dixonColes corrects the independence assumption for 0-0, 1-0, 0-1 and 1-1.
func dixonColes(home, away int, rho float64) float64 {
	switch {
	case home == 0 && away == 0, home == 1 && away == 1:
		return 1 - rho
	case home == 1 && away == 0, home == 0 && away == 1:
		return 1 + rho
	default:
		return 1
	}
}
