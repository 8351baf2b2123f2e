package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/match-predictor/internal/domain/team"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
)

type TeamSummary struct {
	Team    TeamRef           `json:"team"`
	Window  int               `json:"window"`
	Summary teamstats.Summary `json:"summary"`
}

type TeamService struct {
	teamRepo team.Repository
	features *FeatureService
}

func NewTeamService(teamRepo team.Repository, features *FeatureService) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		features: features,
	}
}

// ListTeams filters by exact name and league when given.
func (s *TeamService) ListTeams(ctx context.Context, name, league string) ([]TeamRef, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListTeams")
	defer span.End()

	items, err := s.teamRepo.List(ctx, strings.TrimSpace(name), strings.TrimSpace(league))
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]TeamRef, 0, len(items))
	for _, item := range items {
		out = append(out, teamRefFrom(item))
	}
	return out, nil
}

// ResolveTeam finds a team id by name. league may be empty when the name is
// unique.
func (s *TeamService) ResolveTeam(ctx context.Context, name, league string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	teamID, err := s.teamRepo.FindTeamID(ctx, name, strings.TrimSpace(league))
	if err != nil {
		return 0, fmt.Errorf("resolve team %q: %w", name, err)
	}
	return teamID, nil
}

func (s *TeamService) GetTeamSummary(ctx context.Context, teamID int64, window int) (TeamSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetTeamSummary")
	defer span.End()

	summary, err := s.features.TeamSummary(ctx, teamID, window)
	if err != nil {
		return TeamSummary{}, err
	}
	item, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return TeamSummary{}, fmt.Errorf("get team id=%d: %w", teamID, err)
	}

	if window <= 0 {
		window = s.features.Window()
	}
	return TeamSummary{
		Team:    teamRefFrom(item),
		Window:  window,
		Summary: summary,
	}, nil
}
