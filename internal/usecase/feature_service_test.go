package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/team"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	teammock "github.com/riskibarqy/match-predictor/internal/mocks/domain/team"
	teamstatsmock "github.com/riskibarqy/match-predictor/internal/mocks/domain/teamstats"
	"github.com/stretchr/testify/mock"
)

func TestFeatureService_TeamSummary_CachesWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teamRepo := teammock.NewRepository(t)
	statsRepo := teamstatsmock.NewRepository(t)
	svc := NewFeatureService(teamRepo, statsRepo, FeatureConfig{CacheEnabled: true, CacheTTL: time.Minute}, nil)

	records := []teamstats.MatchRecord{
		{MatchID: 2, IsHome: true, GoalsFor: 2, GoalsAgainst: 0},
		{MatchID: 1, IsHome: false, GoalsFor: 1, GoalsAgainst: 1},
	}
	teamRepo.On("GetByID", mock.Anything, int64(4)).Return(team.Team{ID: 4, Name: "Liverpool"}, nil).Once()
	statsRepo.On("ListRecentByTeam", mock.Anything, int64(4), teamstats.DefaultWindow, time.Time{}).Return(records, nil).Once()

	for i := 0; i < 3; i++ {
		got, err := svc.TeamSummary(ctx, 4, 0)
		if err != nil {
			t.Fatalf("team summary: %v", err)
		}
		if got.GamesPlayed != 2 || got.Wins != 1 || got.Draws != 1 {
			t.Fatalf("unexpected summary: %+v", got)
		}
	}
}

func TestFeatureService_TeamSummary_UnknownTeam(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	statsRepo := teamstatsmock.NewRepository(t)
	svc := NewFeatureService(teamRepo, statsRepo, FeatureConfig{}, nil)

	teamRepo.On("GetByID", mock.Anything, int64(99)).Return(team.Team{}, ErrNotFound).Once()

	_, err := svc.TeamSummary(context.Background(), 99, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFeatureService_TeamSummary_NoHistoryUsesPriors(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	statsRepo := teamstatsmock.NewRepository(t)
	svc := NewFeatureService(teamRepo, statsRepo, FeatureConfig{Window: 3}, nil)

	teamRepo.On("GetByID", mock.Anything, int64(5)).Return(team.Team{ID: 5}, nil).Once()
	statsRepo.On("ListRecentByTeam", mock.Anything, int64(5), 3, time.Time{}).Return(nil, nil).Once()

	got, err := svc.TeamSummary(context.Background(), 5, 0)
	if err != nil {
		t.Fatalf("team summary: %v", err)
	}
	if got.GamesPlayed != 0 || got.AvgPossession != 0.5 || got.AvgShots != 12 {
		t.Fatalf("expected priors, got %+v", got)
	}
}

func TestFeatureService_TeamSummary_ValidatesInput(t *testing.T) {
	t.Parallel()

	svc := NewFeatureService(teammock.NewRepository(t), teamstatsmock.NewRepository(t), FeatureConfig{}, nil)

	if _, err := svc.TeamSummary(context.Background(), 0, 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero team id, got %v", err)
	}
	if _, err := svc.TeamSummary(context.Background(), 1, maxSummaryWindow+1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversized window, got %v", err)
	}
}
