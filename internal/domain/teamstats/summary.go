package teamstats

import "errors"

// ErrInsufficientData is returned when a team has no recorded match and no
// priors were supplied to fall back on.
var ErrInsufficientData = errors.New("insufficient data")

const DefaultWindow = 5

// Summary aggregates a team's recent window.
type Summary struct {
	GamesPlayed      int     `json:"gamesPlayed"`
	Wins             int     `json:"wins"`
	Draws            int     `json:"draws"`
	Losses           int     `json:"losses"`
	AvgGoalsScored   float64 `json:"avgGoalsScored"`
	AvgGoalsConceded float64 `json:"avgGoalsConceded"`
	WinRate          float64 `json:"winRate"`
	AvgPossession    float64 `json:"avgPossession"`
	AvgShots         float64 `json:"avgShots"`
	AvgShotsOnTarget float64 `json:"avgShotsOnTarget"`
	AvgCorners       float64 `json:"avgCorners"`
	// StatsGames counts the matches in the window that had a statistics row.
	StatsGames int `json:"statsGames"`
}

// Priors fill the summary when the window holds no evidence.
type Priors struct {
	WinRate       float64
	Possession    float64
	Shots         float64
	ShotsOnTarget float64
	Corners       float64
}

func DefaultPriors() *Priors {
	return &Priors{
		WinRate:       1.0 / 3.0,
		Possession:    0.5,
		Shots:         12,
		ShotsOnTarget: 4,
		Corners:       5,
	}
}

// Summarize folds a window of matches into a Summary. Statistic averages use
// only matches with a statistics row; when there is none the priors apply.
func Summarize(window []MatchRecord, priors *Priors) (Summary, error) {
	if len(window) == 0 {
		if priors == nil {
			return Summary{}, ErrInsufficientData
		}
		return Summary{
			WinRate:          priors.WinRate,
			AvgPossession:    priors.Possession,
			AvgShots:         priors.Shots,
			AvgShotsOnTarget: priors.ShotsOnTarget,
			AvgCorners:       priors.Corners,
		}, nil
	}

	var (
		out                           Summary
		goalsFor, goalsAgainst        int
		possession                    float64
		shots, shotsOnTarget, corners int
	)
	for _, rec := range window {
		out.GamesPlayed++
		goalsFor += rec.GoalsFor
		goalsAgainst += rec.GoalsAgainst
		switch rec.Result() {
		case Win:
			out.Wins++
		case Draw:
			out.Draws++
		default:
			out.Losses++
		}

		if rec.Stats == nil {
			continue
		}
		out.StatsGames++
		possession += rec.Stats.Possession
		shots += rec.Stats.Shots
		shotsOnTarget += rec.Stats.ShotsOnTarget
		corners += rec.Stats.Corners
	}

	games := float64(out.GamesPlayed)
	out.AvgGoalsScored = float64(goalsFor) / games
	out.AvgGoalsConceded = float64(goalsAgainst) / games
	out.WinRate = float64(out.Wins) / games

	switch {
	case out.StatsGames > 0:
		n := float64(out.StatsGames)
		out.AvgPossession = possession / n
		out.AvgShots = float64(shots) / n
		out.AvgShotsOnTarget = float64(shotsOnTarget) / n
		out.AvgCorners = float64(corners) / n
	case priors != nil:
		out.AvgPossession = priors.Possession
		out.AvgShots = priors.Shots
		out.AvgShotsOnTarget = priors.ShotsOnTarget
		out.AvgCorners = priors.Corners
	}

	return out, nil
}
