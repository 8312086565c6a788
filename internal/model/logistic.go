package model

import (
	"context"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrFeatureCount = errors.New("feature count does not match model")
	ErrBadArtifact  = errors.New("invalid model artifact")
)

// Logistic is a fitted logistic regression with an optional standard scaler
// in front of it. It is read-only after loading.
type Logistic struct {
	Name         string    `yaml:"name" json:"name"`
	Intercept    float64   `yaml:"intercept" json:"intercept"`
	Coefficients []float64 `yaml:"coefficients" json:"coefficients"`
	Means        []float64 `yaml:"means,omitempty" json:"means,omitempty"`
	Scales       []float64 `yaml:"scales,omitempty" json:"scales,omitempty"`
}

// Validate checks that the artifact can score feature vectors.
func (m *Logistic) Validate() error {
	n := len(m.Coefficients)
	if n == 0 {
		return errors.Wrap(ErrBadArtifact, "no coefficients")
	}
	if len(m.Means) != 0 && len(m.Means) != n {
		return errors.Wrapf(ErrBadArtifact, "means has %d columns, want %d", len(m.Means), n)
	}
	if len(m.Scales) != 0 && len(m.Scales) != n {
		return errors.Wrapf(ErrBadArtifact, "scales has %d columns, want %d", len(m.Scales), n)
	}
	for i, s := range m.Scales {
		if s == 0 {
			return errors.Wrapf(ErrBadArtifact, "scale of column %d is zero", i)
		}
	}
	return nil
}

// Columns is the number of features the model expects.
func (m *Logistic) Columns() int {
	return len(m.Coefficients)
}

// PredictProba returns the positive class probability.
func (m *Logistic) PredictProba(_ context.Context, features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, errors.Wrapf(ErrFeatureCount, "got %d, want %d", len(features), len(m.Coefficients))
	}

	z := m.Intercept
	for i, x := range features {
		if len(m.Means) > 0 {
			x -= m.Means[i]
		}
		if len(m.Scales) > 0 {
			x /= m.Scales[i]
		}
		z += m.Coefficients[i] * x
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
