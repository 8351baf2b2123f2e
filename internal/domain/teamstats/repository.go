package teamstats

import (
	"context"
	"time"
)

type Repository interface {
	// UpsertTeamStatistics replaces any existing row for the same team and
	// match.
	UpsertTeamStatistics(ctx context.Context, stats Statistics) error
	// ListRecentByTeam returns up to limit matches of the team, most recent
	// first. A non-zero before only keeps matches played strictly earlier.
	ListRecentByTeam(ctx context.Context, teamID int64, limit int, before time.Time) ([]MatchRecord, error)
}
