package match

import "context"

type Repository interface {
	InsertMatch(ctx context.Context, m Match) (int64, error)
	GetByID(ctx context.Context, matchID int64) (Match, error)
	GetByExternalID(ctx context.Context, externalID int64) (Match, error)
	// ListMissingStatistics returns matches of a competition season lacking a
	// statistics row for either side, oldest first.
	ListMissingStatistics(ctx context.Context, competition string, season int) ([]MissingStatistics, error)
	// ListFinished returns the matches of a competition in chronological
	// order. An empty competition means every competition.
	ListFinished(ctx context.Context, competition string) ([]Match, error)
}
