package teamstats

import (
	"fmt"
	"time"
)

// Statistics is one team's box score for one match. Possession is a
// fraction in [0,1].
type Statistics struct {
	TeamID        int64
	MatchID       int64
	Possession    float64
	Shots         int
	ShotsOnTarget int
	Corners       int
	Fouls         int
}

func (s Statistics) Validate() error {
	if s.TeamID <= 0 || s.MatchID <= 0 {
		return fmt.Errorf("team and match are required")
	}
	if s.Possession < 0 || s.Possession > 1 {
		return fmt.Errorf("possession %.3f outside [0,1]", s.Possession)
	}
	if s.Shots < 0 || s.ShotsOnTarget < 0 || s.Corners < 0 || s.Fouls < 0 {
		return fmt.Errorf("counts must be non-negative")
	}
	return nil
}

// MatchRecord is a match seen from one team's side, with that team's
// statistics row when it has been collected.
type MatchRecord struct {
	MatchID      int64
	PlayedAt     time.Time
	IsHome       bool
	GoalsFor     int
	GoalsAgainst int
	Stats        *Statistics
}

type Result int

const (
	Loss Result = iota
	Draw
	Win
)

func (r MatchRecord) Result() Result {
	switch {
	case r.GoalsFor > r.GoalsAgainst:
		return Win
	case r.GoalsFor == r.GoalsAgainst:
		return Draw
	default:
		return Loss
	}
}
