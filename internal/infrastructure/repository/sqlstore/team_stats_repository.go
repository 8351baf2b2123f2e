package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-predictor/internal/domain/domainerr"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	qb "github.com/riskibarqy/match-predictor/internal/platform/querybuilder"
)

type TeamStatsRepository struct {
	db *sqlx.DB
}

func NewTeamStatsRepository(db *sqlx.DB) *TeamStatsRepository {
	return &TeamStatsRepository{db: db}
}

func (r *TeamStatsRepository) UpsertTeamStatistics(ctx context.Context, stats teamstats.Statistics) error {
	if err := stats.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domainerr.ErrInvalidInput, err)
	}

	query, args, err := qb.InsertModel("team_stats", teamStatsInsertModel{
		TeamID:        stats.TeamID,
		MatchID:       stats.MatchID,
		Possession:    stats.Possession,
		Shots:         stats.Shots,
		ShotsOnTarget: stats.ShotsOnTarget,
		Corners:       stats.Corners,
		Fouls:         stats.Fouls,
	}, `ON CONFLICT (team_id, match_id) DO UPDATE SET
		possession = excluded.possession,
		shots = excluded.shots,
		shots_on_target = excluded.shots_on_target,
		corners = excluded.corners,
		fouls = excluded.fouls,
		updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("build upsert team stats query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return domainerr.NewStorageError("upsert team statistics", err)
	}
	return nil
}

func (r *TeamStatsRepository) ListRecentByTeam(ctx context.Context, teamID int64, limit int, before time.Time) ([]teamstats.MatchRecord, error) {
	if limit <= 0 {
		limit = teamstats.DefaultWindow
	}

	conditions := []qb.Condition{
		qb.Or(qb.Eq("m.home_team_id", teamID), qb.Eq("m.away_team_id", teamID)),
	}
	if !before.IsZero() {
		conditions = append(conditions, qb.Lt("m.played_at", storedTime(before)))
	}

	query, args, err := qb.Select(
		"m.id AS match_id",
		"m.played_at",
		"m.home_team_id",
		"m.home_score",
		"m.away_score",
		"s.team_id AS stats_team_id",
		"s.possession",
		"s.shots",
		"s.shots_on_target",
		"s.corners",
		"s.fouls",
	).
		From("matches m").
		LeftJoin("team_stats s", "s.match_id = m.id AND s.team_id = ?", teamID).
		Where(conditions...).
		OrderBy("m.played_at DESC", "m.id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list recent matches query: %w", err)
	}

	var rows []windowRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, domainerr.NewStorageError("list recent matches", err)
	}

	out := make([]teamstats.MatchRecord, 0, len(rows))
	for _, row := range rows {
		rec := teamstats.MatchRecord{
			MatchID:      row.MatchID,
			PlayedAt:     row.PlayedAt.UTC(),
			IsHome:       row.HomeTeamID == teamID,
			GoalsFor:     row.AwayScore,
			GoalsAgainst: row.HomeScore,
		}
		if rec.IsHome {
			rec.GoalsFor, rec.GoalsAgainst = row.HomeScore, row.AwayScore
		}
		if row.StatsTeamID.Valid {
			rec.Stats = &teamstats.Statistics{
				TeamID:        teamID,
				MatchID:       row.MatchID,
				Possession:    row.Possession.Float64,
				Shots:         int(row.Shots.Int64),
				ShotsOnTarget: int(row.ShotsOnTarget.Int64),
				Corners:       int(row.Corners.Int64),
				Fouls:         int(row.Fouls.Int64),
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
