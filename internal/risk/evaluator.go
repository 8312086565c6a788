package risk

import (
	"context"
	"math"

	"github.com/pkg/errors"
)

const (
	// HighRiskThreshold is the lowest score reported as high risk.
	HighRiskThreshold = 75
	maxScore          = 100
)

// Tier is the display tier of an assessment.
type Tier string

const (
	TierLow  Tier = "low_risk"
	TierHigh Tier = "high_risk"
)

// ErrInvalidProbability is returned when the predictor yields a value
// outside [0,1].
var ErrInvalidProbability = errors.New("predictor returned probability outside [0,1]")

// Predictor returns the positive-class probability for a feature vector.
type Predictor interface {
	PredictProba(ctx context.Context, features []float64) (float64, error)
}

// PredictorFunc adapts a plain function to the Predictor interface.
type PredictorFunc func(ctx context.Context, features []float64) (float64, error)

func (f PredictorFunc) PredictProba(ctx context.Context, features []float64) (float64, error) {
	return f(ctx, features)
}

// Assessment is the outcome of a single evaluation.
type Assessment struct {
	Probability float64 `json:"probability" yaml:"probability"`
	Score       int     `json:"score" yaml:"score"`
	HighRisk    bool    `json:"highRisk" yaml:"highRisk"`
	Tier        Tier    `json:"tier" yaml:"tier"`
}

// Evaluator turns a record into an assessment using a loaded model.
type Evaluator struct {
	predictor Predictor
}

func NewEvaluator(p Predictor) *Evaluator {
	return &Evaluator{predictor: p}
}

// Evaluate runs the model once. Predictor failures are returned unchanged
// apart from a wrapping message; there is no retry.
func (e *Evaluator) Evaluate(ctx context.Context, rec Record) (Assessment, error) {
	p, err := e.predictor.PredictProba(ctx, rec.Features())
	if err != nil {
		return Assessment{}, errors.Wrap(err, "predict probability")
	}

	score, err := ScoreFromProbability(p)
	if err != nil {
		return Assessment{}, err
	}

	return Assessment{
		Probability: p,
		Score:       score,
		HighRisk:    IsHighRisk(score),
		Tier:        TierFor(score),
	}, nil
}

// ScoreFromProbability scales p to a percentage and truncates it.
func ScoreFromProbability(p float64) (int, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, errors.Wrapf(ErrInvalidProbability, "got %v", p)
	}
	score := int(math.Floor(p * maxScore))
	if score > maxScore {
		score = maxScore
	}
	return score, nil
}

func IsHighRisk(score int) bool {
	return score >= HighRiskThreshold
}

func TierFor(score int) Tier {
	if IsHighRisk(score) {
		return TierHigh
	}
	return TierLow
}
