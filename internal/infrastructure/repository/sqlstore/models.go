package sqlstore

import (
	"database/sql"
	"time"
)

type teamRow struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	League  string `db:"league"`
	Country string `db:"country"`
}

type teamInsertModel struct {
	Name    string `db:"name"`
	League  string `db:"league"`
	Country string `db:"country"`
}

type matchRow struct {
	ID          int64         `db:"id"`
	HomeTeamID  int64         `db:"home_team_id"`
	AwayTeamID  int64         `db:"away_team_id"`
	HomeScore   int           `db:"home_score"`
	AwayScore   int           `db:"away_score"`
	PlayedAt    time.Time     `db:"played_at"`
	Competition string        `db:"competition"`
	Season      int           `db:"season"`
	ExternalID  sql.NullInt64 `db:"external_id"`
}

type matchInsertModel struct {
	HomeTeamID  int64         `db:"home_team_id"`
	AwayTeamID  int64         `db:"away_team_id"`
	HomeScore   int           `db:"home_score"`
	AwayScore   int           `db:"away_score"`
	PlayedAt    time.Time     `db:"played_at"`
	Competition string        `db:"competition"`
	Season      int           `db:"season"`
	ExternalID  sql.NullInt64 `db:"external_id"`
}

type missingStatisticsRow struct {
	MatchID    int64         `db:"id"`
	ExternalID sql.NullInt64 `db:"external_id"`
}

type teamStatsInsertModel struct {
	TeamID        int64   `db:"team_id"`
	MatchID       int64   `db:"match_id"`
	Possession    float64 `db:"possession"`
	Shots         int     `db:"shots"`
	ShotsOnTarget int     `db:"shots_on_target"`
	Corners       int     `db:"corners"`
	Fouls         int     `db:"fouls"`
}

// windowRow is a match joined with one team's statistics row; the stats
// columns are NULL when nothing was collected.
type windowRow struct {
	MatchID       int64           `db:"match_id"`
	PlayedAt      time.Time       `db:"played_at"`
	HomeTeamID    int64           `db:"home_team_id"`
	HomeScore     int             `db:"home_score"`
	AwayScore     int             `db:"away_score"`
	StatsTeamID   sql.NullInt64   `db:"stats_team_id"`
	Possession    sql.NullFloat64 `db:"possession"`
	Shots         sql.NullInt64   `db:"shots"`
	ShotsOnTarget sql.NullInt64   `db:"shots_on_target"`
	Corners       sql.NullInt64   `db:"corners"`
	Fouls         sql.NullInt64   `db:"fouls"`
}

func nullableID(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v > 0}
}

// storedTime keeps timestamps comparable across drivers: UTC, whole seconds.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
