package prediction

import (
	"testing"

	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strongWeakExamples(n int) []Example {
	strong := teamstats.Summary{GamesPlayed: 5, Wins: 4, WinRate: 0.8, AvgGoalsScored: 2.2, AvgGoalsConceded: 0.6, AvgShots: 15, AvgShotsOnTarget: 6, AvgPossession: 0.6}
	weak := teamstats.Summary{GamesPlayed: 5, Wins: 1, WinRate: 0.2, AvgGoalsScored: 0.8, AvgGoalsConceded: 1.8, AvgShots: 9, AvgShotsOnTarget: 2, AvgPossession: 0.4}
	even := teamstats.Summary{GamesPlayed: 5, Wins: 2, Draws: 1, WinRate: 0.4, AvgGoalsScored: 1.2, AvgGoalsConceded: 1.2, AvgShots: 12, AvgShotsOnTarget: 4, AvgPossession: 0.5}

	out := make([]Example, 0, n)
	for i := 0; len(out) < n; i++ {
		switch i % 3 {
		case 0:
			out = append(out, Example{Home: strong, Away: weak, Outcome: HomeWin})
		case 1:
			out = append(out, Example{Home: weak, Away: strong, Outcome: AwayWin})
		default:
			out = append(out, Example{Home: even, Away: even, Outcome: Draw})
		}
	}
	return out
}

func TestLogistic_UntrainedRefusesToScore(t *testing.T) {
	model := NewLogistic(DefaultLogisticConfig(), DefaultScorelineModel())

	_, err := model.Score(teamstats.Summary{}, teamstats.Summary{})
	assert.ErrorIs(t, err, ErrUntrained)
	assert.ErrorIs(t, err, teamstats.ErrInsufficientData)
	assert.False(t, model.Trained())
}

func TestLogistic_RejectsTooFewExamples(t *testing.T) {
	model := NewLogistic(LogisticConfig{MinExamples: 10}, DefaultScorelineModel())

	err := model.Train(strongWeakExamples(3))
	assert.ErrorIs(t, err, teamstats.ErrInsufficientData)
	assert.False(t, model.Trained())
}

func TestLogistic_LearnsSeparableOutcomes(t *testing.T) {
	model := NewLogistic(LogisticConfig{Iterations: 800, LearningRate: 0.5, MinExamples: 10}, DefaultScorelineModel())
	examples := strongWeakExamples(60)
	require.NoError(t, model.Train(examples))
	require.True(t, model.Trained())

	got, err := model.Score(examples[0].Home, examples[0].Away)
	require.NoError(t, err)
	assert.Equal(t, HomeWin, got.PredictedOutcome)
	assert.InDelta(t, 100, sumOf(got), 1e-9)
	assert.Equal(t, LogisticBackend, got.Backend)

	got, err = model.Score(examples[1].Home, examples[1].Away)
	require.NoError(t, err)
	assert.Equal(t, AwayWin, got.PredictedOutcome)
}
