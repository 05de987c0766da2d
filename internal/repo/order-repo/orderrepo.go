package orderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const orderColumns = `id, number, customer_id, status, total_amount, payment,
       address, phone, email, comment, product_ids, created_at, updated_at`

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.Number, &order.CustomerID, &order.Status,
		&order.TotalAmount, &order.Payment, &order.Address, &order.Phone,
		&order.Email, &order.Comment, &order.ProductIDs,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) Save(ctx context.Context, order *domain.Order) error {
	query := `
        INSERT INTO orders (number, customer_id, status, total_amount, payment,
                            address, phone, email, comment, product_ids)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at
    `
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, query,
			order.Number, order.CustomerID, order.Status, order.TotalAmount,
			order.Payment, order.Address, order.Phone, order.Email,
			order.Comment, order.ProductIDs,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			zap.L().Error("can't save order", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindByNumber(ctx context.Context, number int) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order by number", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindByCustomer(ctx context.Context, customerID int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		zap.L().Error("can't get customer orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		zap.L().Error("can't list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		zap.L().Error("can't count orders", zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, number int, status string) (bool, error) {
	query := `UPDATE orders SET status = $1, updated_at = now() WHERE number = $2`
	tag, err := r.db.Exec(ctx, query, status, number)
	if err != nil {
		zap.L().Error("can't update order status", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		zap.L().Error("can't delete order", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AggregateByCustomer derives the customer's order statistics in one query.
// Orders of every status count: existence, not status, drives the numbers.
func (r *Repository) AggregateByCustomer(ctx context.Context, customerID int) (*domain.UserStats, error) {
	query := `
        SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
        FROM orders
        WHERE customer_id = $1
    `
	var stats domain.UserStats
	err := r.db.QueryRow(ctx, query, customerID).Scan(&stats.TotalSpent, &stats.OrdersCount)
	if err != nil {
		zap.L().Error("can't aggregate orders", zap.Error(err))
		return nil, err
	}
	if stats.OrdersCount == 0 {
		return &stats, nil
	}

	last := `
        SELECT id, created_at
        FROM orders
        WHERE customer_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `
	var (
		lastID int
		lastAt time.Time
	)
	err = r.db.QueryRow(ctx, last, customerID).Scan(&lastID, &lastAt)
	if err != nil {
		zap.L().Error("can't find latest order", zap.Error(err))
		return nil, err
	}
	stats.LastOrderID = &lastID
	stats.LastOrderAt = &lastAt
	return &stats, nil
}
