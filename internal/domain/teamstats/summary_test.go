package teamstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(goalsFor, goalsAgainst int, stats *Statistics) MatchRecord {
	return MatchRecord{
		PlayedAt:     time.Date(2024, 9, 1, 15, 0, 0, 0, time.UTC),
		GoalsFor:     goalsFor,
		GoalsAgainst: goalsAgainst,
		Stats:        stats,
	}
}

func TestSummarize_EmptyWindowUsesPriors(t *testing.T) {
	got, err := Summarize(nil, DefaultPriors())
	require.NoError(t, err)

	assert.Equal(t, 0, got.GamesPlayed)
	assert.InDelta(t, 1.0/3.0, got.WinRate, 1e-12)
	assert.Equal(t, 0.5, got.AvgPossession)
	assert.Equal(t, 12.0, got.AvgShots)
	assert.Equal(t, 4.0, got.AvgShotsOnTarget)
	assert.Equal(t, 5.0, got.AvgCorners)
}

func TestSummarize_EmptyWindowWithoutPriorsFails(t *testing.T) {
	_, err := Summarize(nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSummarize_CountsResultsAndAveragesStats(t *testing.T) {
	window := []MatchRecord{
		record(3, 1, &Statistics{Possession: 0.6, Shots: 15, ShotsOnTarget: 7, Corners: 6}),
		record(1, 1, &Statistics{Possession: 0.4, Shots: 9, ShotsOnTarget: 3, Corners: 4}),
		record(0, 2, nil),
		record(2, 0, nil),
	}

	got, err := Summarize(window, DefaultPriors())
	require.NoError(t, err)

	assert.Equal(t, 4, got.GamesPlayed)
	assert.Equal(t, 2, got.Wins)
	assert.Equal(t, 1, got.Draws)
	assert.Equal(t, 1, got.Losses)
	assert.InDelta(t, 0.5, got.WinRate, 1e-12)
	assert.InDelta(t, 1.5, got.AvgGoalsScored, 1e-12)
	assert.InDelta(t, 1.0, got.AvgGoalsConceded, 1e-12)
	assert.Equal(t, 2, got.StatsGames)
	assert.InDelta(t, 0.5, got.AvgPossession, 1e-12)
	assert.InDelta(t, 12.0, got.AvgShots, 1e-12)
	assert.InDelta(t, 5.0, got.AvgShotsOnTarget, 1e-12)
	assert.InDelta(t, 5.0, got.AvgCorners, 1e-12)
}

func TestSummarize_GamesWithoutStatsFallBackToPriors(t *testing.T) {
	got, err := Summarize([]MatchRecord{record(1, 0, nil), record(0, 0, nil)}, DefaultPriors())
	require.NoError(t, err)

	assert.Equal(t, 2, got.GamesPlayed)
	assert.InDelta(t, 0.5, got.WinRate, 1e-12)
	assert.Equal(t, 0, got.StatsGames)
	assert.Equal(t, 12.0, got.AvgShots)
	assert.Equal(t, 0.5, got.AvgPossession)
}

func TestStatistics_Validate(t *testing.T) {
	assert.NoError(t, Statistics{TeamID: 1, MatchID: 2, Possession: 0.55, Shots: 10}.Validate())
	assert.Error(t, Statistics{TeamID: 1, MatchID: 2, Possession: 55}.Validate())
	assert.Error(t, Statistics{TeamID: 1, MatchID: 2, Fouls: -1}.Validate())
	assert.Error(t, Statistics{MatchID: 2}.Validate())
}
