package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/match-predictor/internal/domain/match"
	"github.com/riskibarqy/match-predictor/internal/domain/team"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
)

// FootballDataProvider is the budgeted upstream source. Implementations
// return ErrSourceUnavailable when a request produced nothing usable.
type FootballDataProvider interface {
	FetchTeams(ctx context.Context, leagueID int64, season int) ([]ExternalTeam, error)
	FetchFinishedFixtures(ctx context.Context, leagueID int64, season int) ([]ExternalFixture, error)
	FetchFixtureStatistics(ctx context.Context, fixtureID int64) ([]ExternalTeamStatistics, error)
	RefreshBudget(ctx context.Context) bool
	RemainingRequests() int
	RequestsMade() int
}

// Competition pairs the stored league name with the provider's league id.
type Competition struct {
	Name     string `validate:"required"`
	LeagueID int64  `validate:"gt=0"`
}

type ExternalTeam struct {
	ExternalID int64
	Name       string `validate:"required"`
	Country    string
}

// trimNames strips provider padding so a blank name fails "required".
func (t *ExternalTeam) trimNames() {
	t.Name = strings.TrimSpace(t.Name)
	t.Country = strings.TrimSpace(t.Country)
}

type ExternalFixture struct {
	ExternalID int64 `validate:"gt=0"`
	Status     string
	PlayedAt   time.Time
	Season     int
	Country    string
	HomeTeam   ExternalTeam
	AwayTeam   ExternalTeam
	HomeGoals  *int `validate:"required,gte=0"`
	AwayGoals  *int `validate:"required,gte=0"`
}

func (f *ExternalFixture) trimNames() {
	f.HomeTeam.trimNames()
	f.AwayTeam.trimNames()
	f.Country = strings.TrimSpace(f.Country)
}

type ExternalTeamStatistics struct {
	TeamExternalID int64
	TeamName       string  `validate:"required"`
	Possession     float64 `validate:"gte=0,lte=1"`
	Shots          int     `validate:"gte=0"`
	ShotsOnTarget  int     `validate:"gte=0"`
	Corners        int     `validate:"gte=0"`
	Fouls          int     `validate:"gte=0"`
}

// CollectReport counts what a collection run stored and skipped.
type CollectReport struct {
	TeamsStored        int  `json:"teamsStored"`
	MatchesInserted    int  `json:"matchesInserted"`
	MatchesSkipped     int  `json:"matchesSkipped"`
	StatisticsStored   int  `json:"statisticsStored"`
	StatisticsRequests int  `json:"statisticsRequests"`
	MalformedRecords   int  `json:"malformedRecords"`
	SourceFailures     int  `json:"sourceFailures"`
	RequestsMade       int  `json:"requestsMade"`
	RequestsRemaining  int  `json:"requestsRemaining"`
	BudgetExhausted    bool `json:"budgetExhausted"`
}

func (r *CollectReport) Add(other CollectReport) {
	r.TeamsStored += other.TeamsStored
	r.MatchesInserted += other.MatchesInserted
	r.MatchesSkipped += other.MatchesSkipped
	r.StatisticsStored += other.StatisticsStored
	r.StatisticsRequests += other.StatisticsRequests
	r.MalformedRecords += other.MalformedRecords
	r.SourceFailures += other.SourceFailures
	r.RequestsMade += other.RequestsMade
	r.BudgetExhausted = r.BudgetExhausted || other.BudgetExhausted
}

type CollectorService struct {
	provider     FootballDataProvider
	teamRepo     team.Repository
	matchRepo    match.Repository
	statsRepo    teamstats.Repository
	competitions []Competition
	validator    *validator.Validate
	logger       *logging.Logger
}

func NewCollectorService(
	provider FootballDataProvider,
	teamRepo team.Repository,
	matchRepo match.Repository,
	statsRepo teamstats.Repository,
	competitions []Competition,
	logger *logging.Logger,
) *CollectorService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CollectorService{
		provider:     provider,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		statsRepo:    statsRepo,
		competitions: append([]Competition(nil), competitions...),
		validator:    validator.New(),
		logger:       logger,
	}
}

// WithCompetitions returns a collector limited to the given competitions.
// Provider and repositories are shared with s.
func (s *CollectorService) WithCompetitions(competitions []Competition) *CollectorService {
	narrowed := *s
	narrowed.competitions = append([]Competition(nil), competitions...)
	return &narrowed
}

// CollectSeason walks the configured competitions in order: teams, then
// finished matches, then (optionally) statistics for matches still lacking
// them. maxRequests bounds the statistics requests of the whole run; zero
// or less means no bound besides the provider budget.
func (s *CollectorService) CollectSeason(ctx context.Context, season int, includeStatistics bool, maxRequests int) (report CollectReport, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.CollectSeason")
	defer span.End()

	if season <= 0 {
		return report, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}
	if !s.provider.RefreshBudget(ctx) {
		s.logger.WarnContext(ctx, "provider status unavailable, using local request budget",
			"remaining", s.provider.RemainingRequests(),
		)
	}

	madeBefore := s.provider.RequestsMade()
	defer func() {
		report.RequestsMade = s.provider.RequestsMade() - madeBefore
		report.RequestsRemaining = s.provider.RemainingRequests()
	}()

	for _, comp := range s.competitions {
		if s.budgetExhausted(ctx, &report) {
			break
		}

		teams, err := s.CollectTeams(ctx, comp, season)
		report.Add(teams)
		if err != nil {
			return report, err
		}
		if s.budgetExhausted(ctx, &report) {
			break
		}

		matches, err := s.CollectMatches(ctx, comp, season)
		report.Add(matches)
		if err != nil {
			return report, err
		}

		if !includeStatistics {
			continue
		}
		limit := 0
		if maxRequests > 0 {
			limit = maxRequests - report.StatisticsRequests
			if limit <= 0 {
				continue
			}
		}
		stats, err := s.BackfillStatistics(ctx, comp.Name, season, limit)
		report.Add(stats)
		if err != nil {
			return report, err
		}
	}

	s.logger.InfoContext(ctx, "season collection finished",
		"season", season,
		"teams", report.TeamsStored,
		"matches_inserted", report.MatchesInserted,
		"matches_skipped", report.MatchesSkipped,
		"statistics", report.StatisticsStored,
		"malformed", report.MalformedRecords,
		"source_failures", report.SourceFailures,
		"remaining", s.provider.RemainingRequests(),
	)
	return report, nil
}

func (s *CollectorService) CollectTeams(ctx context.Context, comp Competition, season int) (CollectReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.CollectTeams")
	defer span.End()

	var report CollectReport
	if err := s.validateScope(ctx, comp, season); err != nil {
		return report, err
	}

	items, err := s.provider.FetchTeams(ctx, comp.LeagueID, season)
	if err != nil {
		return report, s.sourceFailure(ctx, &report, "teams", err)
	}

	for _, item := range items {
		item.trimNames()
		if err := s.validator.StructCtx(ctx, item); err != nil {
			s.malformed(ctx, &report, "team", item.ExternalID, err)
			continue
		}
		if _, err := s.teamRepo.UpsertTeam(ctx, item.Name, comp.Name, item.Country); err != nil {
			if errors.Is(err, ErrStorage) {
				return report, fmt.Errorf("store team %q: %w", item.Name, err)
			}
			s.malformed(ctx, &report, "team", item.ExternalID, err)
			continue
		}
		report.TeamsStored++
	}

	s.logger.InfoContext(ctx, "teams collected",
		"competition", comp.Name,
		"season", season,
		"received", len(items),
		"stored", report.TeamsStored,
	)
	return report, nil
}

// CollectMatches stores the finished fixtures of a competition season.
// Fixtures whose external id is already stored are skipped.
func (s *CollectorService) CollectMatches(ctx context.Context, comp Competition, season int) (CollectReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.CollectMatches")
	defer span.End()

	var report CollectReport
	if err := s.validateScope(ctx, comp, season); err != nil {
		return report, err
	}

	items, err := s.provider.FetchFinishedFixtures(ctx, comp.LeagueID, season)
	if err != nil {
		return report, s.sourceFailure(ctx, &report, "fixtures", err)
	}

	for _, item := range items {
		item.trimNames()
		if err := s.validateFixture(ctx, item); err != nil {
			s.malformed(ctx, &report, "fixture", item.ExternalID, err)
			continue
		}

		_, err := s.matchRepo.GetByExternalID(ctx, item.ExternalID)
		switch {
		case err == nil:
			report.MatchesSkipped++
			continue
		case !errors.Is(err, ErrNotFound):
			return report, fmt.Errorf("lookup fixture external_id=%d: %w", item.ExternalID, err)
		}

		homeID, awayID, err := s.upsertSides(ctx, comp, item)
		if err != nil {
			if err := s.recordWriteError(ctx, &report, item.ExternalID, err); err != nil {
				return report, err
			}
			continue
		}

		matchSeason := season
		if item.Season > 0 {
			matchSeason = item.Season
		}
		_, err = s.matchRepo.InsertMatch(ctx, match.Match{
			HomeTeamID:  homeID,
			AwayTeamID:  awayID,
			HomeScore:   *item.HomeGoals,
			AwayScore:   *item.AwayGoals,
			PlayedAt:    item.PlayedAt,
			Competition: comp.Name,
			Season:      matchSeason,
			ExternalID:  item.ExternalID,
		})
		if err != nil {
			if err := s.recordWriteError(ctx, &report, item.ExternalID, err); err != nil {
				return report, err
			}
			continue
		}
		report.MatchesInserted++
	}

	s.logger.InfoContext(ctx, "matches collected",
		"competition", comp.Name,
		"season", season,
		"received", len(items),
		"inserted", report.MatchesInserted,
		"skipped", report.MatchesSkipped,
	)
	return report, nil
}

// CollectMatchStatistics stores both sides' statistics of one stored match.
func (s *CollectorService) CollectMatchStatistics(ctx context.Context, matchID, fixtureID int64) (CollectReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.CollectMatchStatistics")
	defer span.End()

	var report CollectReport
	if matchID <= 0 || fixtureID <= 0 {
		return report, fmt.Errorf("%w: match id and fixture id must be greater than zero", ErrInvalidInput)
	}

	stored, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return report, fmt.Errorf("get match id=%d: %w", matchID, err)
	}
	home, err := s.teamRepo.GetByID(ctx, stored.HomeTeamID)
	if err != nil {
		return report, fmt.Errorf("get home team id=%d: %w", stored.HomeTeamID, err)
	}
	away, err := s.teamRepo.GetByID(ctx, stored.AwayTeamID)
	if err != nil {
		return report, fmt.Errorf("get away team id=%d: %w", stored.AwayTeamID, err)
	}

	report.StatisticsRequests++
	items, err := s.provider.FetchFixtureStatistics(ctx, fixtureID)
	if err != nil {
		return report, s.sourceFailure(ctx, &report, "fixtures/statistics", err)
	}
	if len(items) == 0 {
		s.logger.InfoContext(ctx, "fixture has no statistics yet", "match_id", matchID, "fixture_id", fixtureID)
		return report, nil
	}

	for _, item := range items {
		item.TeamName = strings.TrimSpace(item.TeamName)
		if err := s.validator.StructCtx(ctx, item); err != nil {
			s.malformed(ctx, &report, "statistics", fixtureID, err)
			continue
		}

		teamID, err := s.resolveSide(ctx, item.TeamName, stored, home, away)
		if err != nil {
			if errors.Is(err, ErrStorage) {
				return report, err
			}
			s.malformed(ctx, &report, "statistics", fixtureID, err)
			continue
		}

		err = s.statsRepo.UpsertTeamStatistics(ctx, teamstats.Statistics{
			TeamID:        teamID,
			MatchID:       matchID,
			Possession:    item.Possession,
			Shots:         item.Shots,
			ShotsOnTarget: item.ShotsOnTarget,
			Corners:       item.Corners,
			Fouls:         item.Fouls,
		})
		if err != nil {
			if err := s.recordWriteError(ctx, &report, fixtureID, err); err != nil {
				return report, err
			}
			continue
		}
		report.StatisticsStored++
	}
	return report, nil
}

// BackfillStatistics resumes statistics collection for stored matches that
// have none, oldest first, stopping at maxRequests (when positive) or when
// the provider budget runs out.
func (s *CollectorService) BackfillStatistics(ctx context.Context, competition string, season, maxRequests int) (CollectReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.BackfillStatistics")
	defer span.End()

	var report CollectReport
	competition = strings.TrimSpace(competition)
	if competition == "" || season <= 0 {
		return report, fmt.Errorf("%w: competition and season are required", ErrInvalidInput)
	}

	missing, err := s.matchRepo.ListMissingStatistics(ctx, competition, season)
	if err != nil {
		return report, fmt.Errorf("list matches missing statistics: %w", err)
	}

	for _, item := range missing {
		if maxRequests > 0 && report.StatisticsRequests >= maxRequests {
			break
		}
		if s.budgetExhausted(ctx, &report) {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if item.ExternalID <= 0 {
			s.malformed(ctx, &report, "match", item.MatchID, fmt.Errorf("match has no external id"))
			continue
		}

		stats, err := s.CollectMatchStatistics(ctx, item.MatchID, item.ExternalID)
		report.Add(stats)
		if err != nil {
			return report, err
		}
	}

	s.logger.InfoContext(ctx, "statistics backfill finished",
		"competition", competition,
		"season", season,
		"pending", len(missing),
		"requests", report.StatisticsRequests,
		"stored", report.StatisticsStored,
	)
	return report, nil
}

func (s *CollectorService) validateScope(ctx context.Context, comp Competition, season int) error {
	if err := s.validator.StructCtx(ctx, comp); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if season <= 0 {
		return fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}
	return nil
}

func (s *CollectorService) validateFixture(ctx context.Context, item ExternalFixture) error {
	if err := s.validator.StructCtx(ctx, item); err != nil {
		return err
	}
	if item.PlayedAt.IsZero() {
		return fmt.Errorf("fixture date is missing")
	}
	if item.Status != "" && !isFinishedStatus(item.Status) {
		return fmt.Errorf("fixture status %q is not finished", item.Status)
	}
	if strings.EqualFold(item.HomeTeam.Name, item.AwayTeam.Name) {
		return fmt.Errorf("home and away team must differ")
	}
	return nil
}

func (s *CollectorService) upsertSides(ctx context.Context, comp Competition, item ExternalFixture) (int64, int64, error) {
	homeID, err := s.teamRepo.UpsertTeam(ctx, item.HomeTeam.Name, comp.Name, item.Country)
	if err != nil {
		return 0, 0, err
	}
	awayID, err := s.teamRepo.UpsertTeam(ctx, item.AwayTeam.Name, comp.Name, item.Country)
	if err != nil {
		return 0, 0, err
	}
	return homeID, awayID, nil
}

func isFinishedStatus(status string) bool {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

// resolveSide maps a provider team name onto the match's home or away team,
// falling back to a lookup inside the match's competition.
func (s *CollectorService) resolveSide(ctx context.Context, name string, stored match.Match, home, away team.Team) (int64, error) {
	name = strings.TrimSpace(name)
	switch {
	case strings.EqualFold(name, home.Name):
		return home.ID, nil
	case strings.EqualFold(name, away.Name):
		return away.ID, nil
	}

	teamID, err := s.teamRepo.FindTeamID(ctx, name, stored.Competition)
	if err != nil {
		return 0, fmt.Errorf("resolve team %q: %w", name, err)
	}
	if teamID != stored.HomeTeamID && teamID != stored.AwayTeamID {
		return 0, fmt.Errorf("%w: team %q did not play match id=%d", ErrMalformedRecord, name, stored.ID)
	}
	return teamID, nil
}

func (s *CollectorService) budgetExhausted(ctx context.Context, report *CollectReport) bool {
	if s.provider.RemainingRequests() > 0 {
		return false
	}
	if !report.BudgetExhausted {
		s.logger.WarnContext(ctx, "request budget exhausted, stopping collection")
	}
	report.BudgetExhausted = true
	return true
}

// sourceFailure counts a provider failure and swallows it unless the caller
// cancelled the run.
func (s *CollectorService) sourceFailure(ctx context.Context, report *CollectReport, endpoint string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	report.SourceFailures++
	s.logger.WarnContext(ctx, "source data unavailable", "endpoint", endpoint, "error", err)
	return nil
}

func (s *CollectorService) malformed(ctx context.Context, report *CollectReport, kind string, externalID int64, err error) {
	report.MalformedRecords++
	s.logger.WarnContext(ctx, "skip malformed record", "kind", kind, "external_id", externalID, "error", err)
}

// recordWriteError aborts on storage failures and counts anything else as a
// malformed record.
func (s *CollectorService) recordWriteError(ctx context.Context, report *CollectReport, externalID int64, err error) error {
	if errors.Is(err, ErrStorage) {
		return fmt.Errorf("store record external_id=%d: %w", externalID, err)
	}
	s.malformed(ctx, report, "record", externalID, err)
	return nil
}
