package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/domain/team"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	teammock "github.com/riskibarqy/match-predictor/internal/mocks/domain/team"
	teamstatsmock "github.com/riskibarqy/match-predictor/internal/mocks/domain/teamstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strongForm() []teamstats.MatchRecord {
	out := make([]teamstats.MatchRecord, 0, 5)
	for i := 0; i < 5; i++ {
		out = append(out, teamstats.MatchRecord{
			MatchID:      int64(100 + i),
			IsHome:       i%2 == 0,
			GoalsFor:     3,
			GoalsAgainst: 0,
			Stats:        &teamstats.Statistics{Possession: 0.62, Shots: 18, ShotsOnTarget: 8, Corners: 7},
		})
	}
	return out
}

func weakForm() []teamstats.MatchRecord {
	out := make([]teamstats.MatchRecord, 0, 5)
	for i := 0; i < 5; i++ {
		out = append(out, teamstats.MatchRecord{
			MatchID:      int64(200 + i),
			GoalsFor:     0,
			GoalsAgainst: 2,
			Stats:        &teamstats.Statistics{Possession: 0.38, Shots: 7, ShotsOnTarget: 2, Corners: 3},
		})
	}
	return out
}

func newTestPredictionService(t *testing.T, scorer, fallback prediction.Scorer) (*PredictionService, *teammock.Repository, *teamstatsmock.Repository) {
	t.Helper()
	teamRepo := teammock.NewRepository(t)
	statsRepo := teamstatsmock.NewRepository(t)
	features := NewFeatureService(teamRepo, statsRepo, FeatureConfig{}, nil)
	return NewPredictionService(teamRepo, features, scorer, fallback, PredictionConfig{BatchWorkers: 2}, nil), teamRepo, statsRepo
}

func expectTeam(teamRepo *teammock.Repository, statsRepo *teamstatsmock.Repository, id int64, name string, records []teamstats.MatchRecord) {
	teamRepo.On("GetByID", mock.Anything, id).Return(team.Team{ID: id, Name: name, League: "Premier League"}, nil)
	statsRepo.On("ListRecentByTeam", mock.Anything, id, teamstats.DefaultWindow, time.Time{}).Return(records, nil)
}

func TestPredictionService_PredictMatch_FavoursStrongHomeSide(t *testing.T) {
	t.Parallel()

	heuristic := prediction.NewHeuristic(prediction.DefaultHeuristicConfig(), prediction.DefaultScorelineModel())
	svc, teamRepo, statsRepo := newTestPredictionService(t, heuristic, nil)
	expectTeam(teamRepo, statsRepo, 1, "Liverpool", strongForm())
	expectTeam(teamRepo, statsRepo, 2, "Luton", weakForm())

	got, err := svc.PredictMatch(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, "Liverpool", got.HomeTeam.Name)
	assert.Equal(t, "Luton", got.AwayTeam.Name)
	assert.Equal(t, prediction.HomeWin, got.PredictedOutcome)
	assert.InDelta(t, 100, got.HomeWinProbability+got.DrawProbability+got.AwayWinProbability, 1e-9)
	assert.Equal(t, 5, got.DataQuality.HomeGamesPlayed)
	assert.Equal(t, prediction.HeuristicBackend, got.Backend)
}

func TestPredictionService_PredictMatch_RejectsInvalidPairs(t *testing.T) {
	t.Parallel()

	heuristic := prediction.NewHeuristic(prediction.DefaultHeuristicConfig(), prediction.DefaultScorelineModel())
	svc, _, _ := newTestPredictionService(t, heuristic, nil)

	_, err := svc.PredictMatch(context.Background(), 3, 3)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.PredictMatch(context.Background(), 0, 3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPredictionService_PredictMatch_UnknownTeam(t *testing.T) {
	t.Parallel()

	heuristic := prediction.NewHeuristic(prediction.DefaultHeuristicConfig(), prediction.DefaultScorelineModel())
	svc, teamRepo, statsRepo := newTestPredictionService(t, heuristic, nil)
	teamRepo.On("GetByID", mock.Anything, int64(1)).Return(team.Team{ID: 1, Name: "Liverpool"}, nil).Maybe()
	statsRepo.On("ListRecentByTeam", mock.Anything, int64(1), teamstats.DefaultWindow, time.Time{}).Return(strongForm(), nil).Maybe()
	teamRepo.On("GetByID", mock.Anything, int64(404)).Return(team.Team{}, ErrNotFound).Once()

	_, err := svc.PredictMatch(context.Background(), 1, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPredictionService_PredictMatch_FallsBackWhenUntrained(t *testing.T) {
	t.Parallel()

	learned := prediction.NewLogistic(prediction.DefaultLogisticConfig(), prediction.DefaultScorelineModel())
	heuristic := prediction.NewHeuristic(prediction.DefaultHeuristicConfig(), prediction.DefaultScorelineModel())
	svc, teamRepo, statsRepo := newTestPredictionService(t, learned, heuristic)
	expectTeam(teamRepo, statsRepo, 1, "Liverpool", strongForm())
	expectTeam(teamRepo, statsRepo, 2, "Luton", weakForm())

	got, err := svc.PredictMatch(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, prediction.HeuristicBackend, got.Backend)
}

func TestPredictionService_PredictMany_ReportsErrorsInPlace(t *testing.T) {
	t.Parallel()

	heuristic := prediction.NewHeuristic(prediction.DefaultHeuristicConfig(), prediction.DefaultScorelineModel())
	svc, teamRepo, statsRepo := newTestPredictionService(t, heuristic, nil)
	expectTeam(teamRepo, statsRepo, 1, "Liverpool", strongForm())
	expectTeam(teamRepo, statsRepo, 2, "Luton", weakForm())

	got, err := svc.PredictMany(context.Background(), []PredictionPair{
		{HomeTeamID: 1, AwayTeamID: 2},
		{HomeTeamID: 2, AwayTeamID: 2},
		{HomeTeamID: 2, AwayTeamID: 1},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.NotNil(t, got[0].Prediction)
	assert.Equal(t, "Liverpool", got[0].Prediction.HomeTeam.Name)
	assert.Nil(t, got[1].Prediction)
	assert.ErrorIs(t, got[1].Err(), ErrInvalidInput)
	require.NotNil(t, got[2].Prediction)
	assert.Equal(t, prediction.AwayWin, got[2].Prediction.PredictedOutcome)
	sum := got[2].Prediction.HomeWinProbability + got[2].Prediction.DrawProbability + got[2].Prediction.AwayWinProbability
	assert.True(t, math.Abs(sum-100) < 1e-9)
}

func TestPredictionService_PredictMany_RejectsEmptyBatch(t *testing.T) {
	t.Parallel()

	heuristic := prediction.NewHeuristic(prediction.DefaultHeuristicConfig(), prediction.DefaultScorelineModel())
	svc, _, _ := newTestPredictionService(t, heuristic, nil)

	_, err := svc.PredictMany(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
