package prediction

import (
	"fmt"
	"math"
	"sync"

	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
)

const LogisticBackend = "logistic"

const (
	classHome = iota
	classDraw
	classAway
	numClasses
)

const numFeatures = 8

// Example is one historical match described by both teams' summaries as
// they stood before kick-off.
type Example struct {
	Home    teamstats.Summary
	Away    teamstats.Summary
	Outcome Outcome
}

type LogisticConfig struct {
	Iterations   int
	LearningRate float64
	L2           float64
	MinExamples  int
}

func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		Iterations:   400,
		LearningRate: 0.15,
		L2:           0.001,
		MinExamples:  30,
	}
}

// Logistic is a multinomial logistic regression over summary features,
// fitted by batch gradient descent. It is safe for concurrent Score calls
// while Train swaps the weights.
type Logistic struct {
	cfg       LogisticConfig
	scoreline ScorelineModel

	mu      sync.RWMutex
	weights [numClasses][numFeatures]float64
	trained bool
}

func NewLogistic(cfg LogisticConfig, scoreline ScorelineModel) *Logistic {
	defaults := DefaultLogisticConfig()
	if cfg.Iterations <= 0 {
		cfg.Iterations = defaults.Iterations
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = defaults.LearningRate
	}
	if cfg.MinExamples <= 0 {
		cfg.MinExamples = defaults.MinExamples
	}
	return &Logistic{cfg: cfg, scoreline: scoreline}
}

func (l *Logistic) Name() string {
	return LogisticBackend
}

func (l *Logistic) Trained() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.trained
}

// Train fits the model in memory. The previous weights stay in use if
// training is rejected.
func (l *Logistic) Train(examples []Example) error {
	if len(examples) < l.cfg.MinExamples {
		return fmt.Errorf("%w: %d training examples, need %d", teamstats.ErrInsufficientData, len(examples), l.cfg.MinExamples)
	}

	xs := make([][numFeatures]float64, len(examples))
	ys := make([]int, len(examples))
	for i, ex := range examples {
		xs[i] = features(ex.Home, ex.Away)
		ys[i] = classOf(ex.Outcome)
	}

	var w [numClasses][numFeatures]float64
	n := float64(len(examples))
	for iter := 0; iter < l.cfg.Iterations; iter++ {
		var grad [numClasses][numFeatures]float64
		for i, x := range xs {
			p := softmax(w, x)
			for c := 0; c < numClasses; c++ {
				diff := p[c]
				if c == ys[i] {
					diff -= 1
				}
				for k := range x {
					grad[c][k] += diff * x[k]
				}
			}
		}
		for c := range w {
			for k := range w[c] {
				reg := 0.0
				if k > 0 {
					reg = l.cfg.L2 * w[c][k]
				}
				w[c][k] -= l.cfg.LearningRate * (grad[c][k]/n + reg)
			}
		}
	}

	l.mu.Lock()
	l.weights = w
	l.trained = true
	l.mu.Unlock()
	return nil
}

func (l *Logistic) Score(home, away teamstats.Summary) (Prediction, error) {
	l.mu.RLock()
	w, trained := l.weights, l.trained
	l.mu.RUnlock()
	if !trained {
		return Prediction{}, ErrUntrained
	}

	p := softmax(w, features(home, away))
	return finalize(l.Name(), p[classHome], p[classDraw], p[classAway], home, away, l.scoreline), nil
}

func features(home, away teamstats.Summary) [numFeatures]float64 {
	return [numFeatures]float64{
		1,
		home.WinRate,
		away.WinRate,
		home.AvgGoalsScored - home.AvgGoalsConceded,
		away.AvgGoalsScored - away.AvgGoalsConceded,
		accuracy(home),
		accuracy(away),
		home.AvgPossession - away.AvgPossession,
	}
}

func accuracy(s teamstats.Summary) float64 {
	if s.AvgShots <= 0 {
		return 0
	}
	return s.AvgShotsOnTarget / s.AvgShots
}

func classOf(o Outcome) int {
	switch o {
	case HomeWin:
		return classHome
	case AwayWin:
		return classAway
	default:
		return classDraw
	}
}

func softmax(w [numClasses][numFeatures]float64, x [numFeatures]float64) [numClasses]float64 {
	var z [numClasses]float64
	maxZ := math.Inf(-1)
	for c := range w {
		for k := range x {
			z[c] += w[c][k] * x[k]
		}
		maxZ = math.Max(maxZ, z[c])
	}

	var sum float64
	for c := range z {
		z[c] = math.Exp(z[c] - maxZ)
		sum += z[c]
	}
	for c := range z {
		z[c] /= sum
	}
	return z
}
