package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/team"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	teammock "github.com/riskibarqy/match-predictor/internal/mocks/domain/team"
	teamstatsmock "github.com/riskibarqy/match-predictor/internal/mocks/domain/teamstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestTeamService(t *testing.T) (*TeamService, *teammock.Repository, *teamstatsmock.Repository) {
	t.Helper()
	teamRepo := teammock.NewRepository(t)
	statsRepo := teamstatsmock.NewRepository(t)
	features := NewFeatureService(teamRepo, statsRepo, FeatureConfig{Window: 3}, nil)
	return NewTeamService(teamRepo, features), teamRepo, statsRepo
}

func TestTeamService_ListTeams_TrimsFilters(t *testing.T) {
	t.Parallel()

	svc, teamRepo, _ := newTestTeamService(t)
	teamRepo.On("List", mock.Anything, "Arsenal", "").
		Return([]team.Team{{ID: 1, Name: "Arsenal", League: "Premier League"}}, nil).Once()

	got, err := svc.ListTeams(context.Background(), "  Arsenal ", " ")
	require.NoError(t, err)
	assert.Equal(t, []TeamRef{{ID: 1, Name: "Arsenal", League: "Premier League"}}, got)
}

func TestTeamService_ResolveTeam(t *testing.T) {
	t.Parallel()

	svc, teamRepo, _ := newTestTeamService(t)
	teamRepo.On("FindTeamID", mock.Anything, "Everton", "Premier League").Return(int64(11), nil).Once()
	teamRepo.On("FindTeamID", mock.Anything, "Nowhere FC", "").Return(int64(0), ErrNotFound).Once()

	id, err := svc.ResolveTeam(context.Background(), "Everton", "Premier League")
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	_, err = svc.ResolveTeam(context.Background(), "Nowhere FC", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ResolveTeam(context.Background(), " ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTeamService_GetTeamSummary_UsesDefaultWindow(t *testing.T) {
	t.Parallel()

	svc, teamRepo, statsRepo := newTestTeamService(t)
	teamRepo.On("GetByID", mock.Anything, int64(5)).Return(team.Team{ID: 5, Name: "Wolves", League: "Premier League"}, nil)
	statsRepo.On("ListRecentByTeam", mock.Anything, int64(5), 3, time.Time{}).Return([]teamstats.MatchRecord{
		{MatchID: 1, GoalsFor: 2, GoalsAgainst: 0},
		{MatchID: 2, GoalsFor: 1, GoalsAgainst: 1},
	}, nil).Once()

	got, err := svc.GetTeamSummary(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Window)
	assert.Equal(t, "Wolves", got.Team.Name)
	assert.Equal(t, 2, got.Summary.GamesPlayed)
}
