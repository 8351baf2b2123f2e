package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/match-predictor/internal/domain/team"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	"github.com/riskibarqy/match-predictor/internal/platform/cache"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
)

const maxSummaryWindow = 50

type FeatureConfig struct {
	Window       int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// FeatureService turns stored match history into team summaries.
type FeatureService struct {
	teamRepo  team.Repository
	statsRepo teamstats.Repository
	window    int
	priors    *teamstats.Priors
	cache     *cache.Store[teamstats.Summary]
	logger    *logging.Logger
}

func NewFeatureService(teamRepo team.Repository, statsRepo teamstats.Repository, cfg FeatureConfig, logger *logging.Logger) *FeatureService {
	if logger == nil {
		logger = logging.Default()
	}
	window := cfg.Window
	if window <= 0 {
		window = teamstats.DefaultWindow
	}

	svc := &FeatureService{
		teamRepo:  teamRepo,
		statsRepo: statsRepo,
		window:    window,
		priors:    teamstats.DefaultPriors(),
		logger:    logger,
	}
	if cfg.CacheEnabled {
		svc.cache = cache.NewStore[teamstats.Summary](cfg.CacheTTL)
	}
	return svc
}

func (s *FeatureService) Window() int {
	return s.window
}

// TeamSummary summarizes the team's latest window matches. A non-positive
// window uses the configured default.
func (s *FeatureService) TeamSummary(ctx context.Context, teamID int64, window int) (teamstats.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.TeamSummary")
	defer span.End()

	window, err := s.resolveWindow(teamID, window)
	if err != nil {
		return teamstats.Summary{}, err
	}

	load := func(ctx context.Context) (teamstats.Summary, error) {
		if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
			return teamstats.Summary{}, fmt.Errorf("get team id=%d: %w", teamID, err)
		}
		return s.summarize(ctx, teamID, window, time.Time{})
	}
	if s.cache == nil {
		return load(ctx)
	}
	return s.cache.GetOrLoad(ctx, summaryCacheKey(teamID, window), load)
}

// SummaryBefore summarizes the window that ended strictly before at. It is
// never cached.
func (s *FeatureService) SummaryBefore(ctx context.Context, teamID int64, window int, at time.Time) (teamstats.Summary, error) {
	window, err := s.resolveWindow(teamID, window)
	if err != nil {
		return teamstats.Summary{}, err
	}
	return s.summarize(ctx, teamID, window, at)
}

func (s *FeatureService) resolveWindow(teamID int64, window int) (int, error) {
	if teamID <= 0 {
		return 0, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}
	if window <= 0 {
		window = s.window
	}
	if window > maxSummaryWindow {
		return 0, fmt.Errorf("%w: window must be at most %d", ErrInvalidInput, maxSummaryWindow)
	}
	return window, nil
}

func (s *FeatureService) summarize(ctx context.Context, teamID int64, window int, before time.Time) (teamstats.Summary, error) {
	records, err := s.statsRepo.ListRecentByTeam(ctx, teamID, window, before)
	if err != nil {
		return teamstats.Summary{}, fmt.Errorf("list recent matches team_id=%d: %w", teamID, err)
	}

	summary, err := teamstats.Summarize(records, s.priors)
	if err != nil {
		return teamstats.Summary{}, err
	}
	if summary.GamesPlayed > 0 && summary.StatsGames == 0 {
		s.logger.DebugContext(ctx, "team window has no statistics rows, using priors",
			"team_id", teamID,
			"games", summary.GamesPlayed,
		)
	}
	return summary, nil
}

func summaryCacheKey(teamID int64, window int) string {
	return fmt.Sprintf("summary:%d:%d", teamID, window)
}
