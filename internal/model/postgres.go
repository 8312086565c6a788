package model

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const selectModelSQL = `
SELECT name, intercept, coefficients, means, scales
FROM risk_models
WHERE name = $1
ORDER BY created_at DESC
LIMIT 1`

// RowQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LoadPostgres reads the newest artifact stored under name.
func LoadPostgres(ctx context.Context, q RowQuerier, name string) (*Logistic, error) {
	if q == nil {
		return nil, errors.New("database not initialized")
	}

	var m Logistic
	err := q.QueryRow(ctx, selectModelSQL, name).Scan(
		&m.Name, &m.Intercept, &m.Coefficients, &m.Means, &m.Scales,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Errorf("model %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query model %q", name)
	}

	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "model %q", name)
	}
	return &m, nil
}
