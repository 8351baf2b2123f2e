package match

import (
	"fmt"
	"time"
)

// Match is a finished fixture. It is immutable once stored.
type Match struct {
	ID          int64
	HomeTeamID  int64
	AwayTeamID  int64
	HomeScore   int
	AwayScore   int
	PlayedAt    time.Time
	Competition string
	Season      int
	ExternalID  int64
}

func (m Match) Validate() error {
	if m.HomeTeamID <= 0 || m.AwayTeamID <= 0 {
		return fmt.Errorf("match teams are required")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("home and away team must differ")
	}
	if m.HomeScore < 0 || m.AwayScore < 0 {
		return fmt.Errorf("scores must be non-negative")
	}
	if m.PlayedAt.IsZero() {
		return fmt.Errorf("match date is required")
	}
	return nil
}

// MissingStatistics points at a stored match that has no statistics row for
// either team yet.
type MissingStatistics struct {
	MatchID    int64
	ExternalID int64
}
