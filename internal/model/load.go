package model

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Source selects where the model is loaded from.
type Source string

const (
	SourceFile     Source = "file"
	SourcePostgres Source = "postgres"
	SourceRemote   Source = "remote"
)

// Predictor is the capability every loaded model exposes.
type Predictor interface {
	PredictProba(ctx context.Context, features []float64) (float64, error)
}

// Options describe how to obtain the model.
type Options struct {
	Source  Source
	Path    string
	Name    string
	URL     string
	Timeout time.Duration
	// Columns, when set, is the feature count the loaded artifact must accept.
	Columns int
}

// ParseSource normalises a source name, defaulting to file.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceFile:
		return SourceFile, nil
	case SourcePostgres:
		return SourcePostgres, nil
	case SourceRemote:
		return SourceRemote, nil
	default:
		return "", errors.Errorf("unknown model source %q", s)
	}
}

// Load obtains the model once. db is only used for the postgres source.
func Load(ctx context.Context, opts Options, db RowQuerier) (Predictor, error) {
	var (
		m   *Logistic
		err error
	)

	switch opts.Source {
	case SourceFile, "":
		m, err = LoadFile(opts.Path)
	case SourcePostgres:
		m, err = LoadPostgres(ctx, db, opts.Name)
	case SourceRemote:
		if opts.URL == "" {
			return nil, errors.New("model URL required for remote source")
		}
		return NewRemote(opts.URL, opts.Timeout), nil
	default:
		return nil, errors.Errorf("unknown model source %q", opts.Source)
	}
	if err != nil {
		return nil, err
	}

	if opts.Columns > 0 && m.Columns() != opts.Columns {
		return nil, errors.Wrapf(ErrFeatureCount, "model has %d columns, want %d", m.Columns(), opts.Columns)
	}
	return m, nil
}
