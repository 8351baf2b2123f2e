package prediction

import "github.com/riskibarqy/match-predictor/internal/domain/teamstats"

const HeuristicBackend = "heuristic"

type HeuristicConfig struct {
	// HomeAdvantage is added to the home side's strength, in win-rate points.
	HomeAdvantage  float64
	FormWeight     float64
	ShootingWeight float64
	// DrawFraction is the probability mass reserved for a draw before the
	// win share is split.
	DrawFraction float64
}

func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		HomeAdvantage:  7.5,
		FormWeight:     0.2,
		ShootingWeight: 0.15,
		DrawFraction:   0.25,
	}
}

// Heuristic is a closed-form scorer: the same summaries always produce the
// same prediction.
type Heuristic struct {
	cfg       HeuristicConfig
	scoreline ScorelineModel
}

func NewHeuristic(cfg HeuristicConfig, scoreline ScorelineModel) *Heuristic {
	if cfg.DrawFraction < 0 || cfg.DrawFraction >= 1 {
		cfg.DrawFraction = DefaultHeuristicConfig().DrawFraction
	}
	return &Heuristic{cfg: cfg, scoreline: scoreline}
}

func (h *Heuristic) Name() string {
	return HeuristicBackend
}

func (h *Heuristic) Score(home, away teamstats.Summary) (Prediction, error) {
	homeStrength := home.WinRate*100 + h.cfg.HomeAdvantage
	awayStrength := away.WinRate * 100

	homeShare := 0.5
	if total := homeStrength + awayStrength; total > 0 {
		homeShare = homeStrength / total
	}
	winMass := 1 - h.cfg.DrawFraction

	homeRaw := winMass*homeShare + h.adjustment(home)
	awayRaw := winMass*(1-homeShare) + h.adjustment(away)

	return finalize(h.Name(), homeRaw, h.cfg.DrawFraction, awayRaw, home, away, h.scoreline), nil
}

func (h *Heuristic) adjustment(s teamstats.Summary) float64 {
	form := (s.AvgGoalsScored - s.AvgGoalsConceded) * h.cfg.FormWeight

	accuracy := 0.0
	if s.AvgShots > 0 {
		accuracy = s.AvgShotsOnTarget / s.AvgShots
	}
	return form + accuracy*h.cfg.ShootingWeight
}
