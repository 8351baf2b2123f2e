package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-predictor/internal/domain/domainerr"
	"github.com/riskibarqy/match-predictor/internal/domain/match"
	qb "github.com/riskibarqy/match-predictor/internal/platform/querybuilder"
)

var matchColumns = []string{
	"id",
	"home_team_id",
	"away_team_id",
	"home_score",
	"away_score",
	"played_at",
	"competition",
	"season",
	"external_id",
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// InsertMatch stores a finished match. A match whose external id is already
// stored is not inserted again; the existing id is returned instead.
func (r *MatchRepository) InsertMatch(ctx context.Context, m match.Match) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", domainerr.ErrInvalidInput, err)
	}

	query, args, err := qb.InsertModel("matches", matchInsertModel{
		HomeTeamID:  m.HomeTeamID,
		AwayTeamID:  m.AwayTeamID,
		HomeScore:   m.HomeScore,
		AwayScore:   m.AwayScore,
		PlayedAt:    storedTime(m.PlayedAt),
		Competition: m.Competition,
		Season:      m.Season,
		ExternalID:  nullableID(m.ExternalID),
	}, "ON CONFLICT (external_id) DO NOTHING RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert match query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, r.db.Rebind(query), args...)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, domainerr.NewStorageError("insert match", err)
	}

	existing, err := r.GetByExternalID(ctx, m.ExternalID)
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID int64) (match.Match, error) {
	return r.getOne(ctx, "get match", qb.Eq("id", matchID))
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID int64) (match.Match, error) {
	if externalID <= 0 {
		return match.Match{}, fmt.Errorf("%w: external id must be > 0", domainerr.ErrInvalidInput)
	}
	return r.getOne(ctx, "get match by external id", qb.Eq("external_id", externalID))
}

func (r *MatchRepository) ListMissingStatistics(ctx context.Context, competition string, season int) ([]match.MissingStatistics, error) {
	query, args, err := qb.Select("m.id", "m.external_id").
		From("matches m").
		LeftJoin("team_stats hs", "hs.match_id = m.id AND hs.team_id = m.home_team_id").
		LeftJoin("team_stats aws", "aws.match_id = m.id AND aws.team_id = m.away_team_id").
		Where(
			qb.Eq("m.competition", strings.TrimSpace(competition)),
			qb.Eq("m.season", season),
			qb.Or(qb.IsNull("hs.id"), qb.IsNull("aws.id")),
		).
		OrderBy("m.played_at", "m.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list missing statistics query: %w", err)
	}

	var rows []missingStatisticsRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, domainerr.NewStorageError("list missing statistics", err)
	}

	out := make([]match.MissingStatistics, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.MissingStatistics{
			MatchID:    row.MatchID,
			ExternalID: row.ExternalID.Int64,
		})
	}
	return out, nil
}

func (r *MatchRepository) ListFinished(ctx context.Context, competition string) ([]match.Match, error) {
	builder := qb.Select(matchColumns...).From("matches").OrderBy("played_at", "id")
	if v := strings.TrimSpace(competition); v != "" {
		builder = builder.Where(qb.Eq("competition", v))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list finished matches query: %w", err)
	}

	var rows []matchRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, domainerr.NewStorageError("list finished matches", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) getOne(ctx context.Context, op string, cond qb.Condition) (match.Match, error) {
	query, args, err := qb.Select(matchColumns...).
		From("matches").
		Where(cond).
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build %s query: %w", op, err)
	}

	var row matchRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return match.Match{}, fmt.Errorf("match: %w", domainerr.ErrNotFound)
		}
		return match.Match{}, domainerr.NewStorageError(op, err)
	}
	return matchFromRow(row), nil
}

func matchFromRow(row matchRow) match.Match {
	return match.Match{
		ID:          row.ID,
		HomeTeamID:  row.HomeTeamID,
		AwayTeamID:  row.AwayTeamID,
		HomeScore:   row.HomeScore,
		AwayScore:   row.AwayScore,
		PlayedAt:    row.PlayedAt.UTC(),
		Competition: row.Competition,
		Season:      row.Season,
		ExternalID:  row.ExternalID.Int64,
	}
}
