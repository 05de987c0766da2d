package sequencerepo

import (
	"context"

	"github.com/dsolovey/gomarket/internal/pg"
	"go.uber.org/zap"
)

const orderCounter = "orders"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Next hands out the next order number. The upsert is a single atomic
// statement, so concurrent callers always receive distinct values and the
// counter initializes itself on first use.
func (r *Repository) Next(ctx context.Context) (int, error) {
	query := `
        INSERT INTO counters (name, value)
        VALUES ($1, 1)
        ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
        RETURNING value
    `
	var value int
	if err := r.db.QueryRow(ctx, query, orderCounter).Scan(&value); err != nil {
		zap.L().Error("can't increment order counter", zap.Error(err))
		return 0, err
	}
	return value, nil
}
