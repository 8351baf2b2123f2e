package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	// UpsertTeam returns the id of the (name, league) row, creating it first
	// when absent.
	UpsertTeam(ctx context.Context, name, league, country string) (int64, error)
	// FindTeamID resolves a team by name. An empty league is accepted only
	// when the name is unique across leagues.
	FindTeamID(ctx context.Context, name, league string) (int64, error)
	GetByID(ctx context.Context, teamID int64) (Team, error)
	List(ctx context.Context, name, league string) ([]Team, error)
}
