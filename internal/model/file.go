package model

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a logistic model artifact from a YAML or JSON file.
func LoadFile(path string) (*Logistic, error) {
	if path == "" {
		return nil, errors.New("model path required")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model file: %s", path)
	}

	m, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load model file: %s", path)
	}
	return m, nil
}

// Parse decodes and validates a model artifact.
func Parse(b []byte) (*Logistic, error) {
	var m Logistic
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling model")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
