package userrepo

import (
	"context"
	"errors"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/internal/pg"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const userColumns = `id, email, name, password_hash, roles, refresh_tokens,
       total_spent, orders_count, last_order_id, last_order_at, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Roles,
		&user.RefreshTokens, &user.TotalSpent, &user.OrdersCount,
		&user.LastOrderID, &user.LastOrderAt, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := repo.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find user by email", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	row := repo.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find user by id", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, name, password_hash, roles)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query, user.Email, user.Name, user.PasswordHash, user.Roles).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, apperr.Conflict("email already registered")
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// UpdateRefreshTokens replaces the user's stored fingerprint list. A single
// statement per request: concurrent rotations are last-writer-wins.
func (repo *Repository) UpdateRefreshTokens(ctx context.Context, userID int, tokens []string) error {
	_, err := repo.db.Exec(ctx, `UPDATE users SET refresh_tokens = $1 WHERE id = $2`, tokens, userID)
	if err != nil {
		zap.L().Error("can't update refresh tokens", zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	_, err := repo.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
	if err != nil {
		zap.L().Error("can't update password", zap.Error(err))
		return err
	}
	return nil
}

// UpdateStats writes a freshly derived aggregate onto the user row.
func (repo *Repository) UpdateStats(ctx context.Context, userID int, stats *domain.UserStats) error {
	query := `
		UPDATE users
		SET total_spent = $1, orders_count = $2, last_order_id = $3, last_order_at = $4
		WHERE id = $5
	`
	_, err := repo.db.Exec(ctx, query,
		stats.TotalSpent, stats.OrdersCount, stats.LastOrderID, stats.LastOrderAt, userID)
	if err != nil {
		zap.L().Error("can't update user stats", zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := repo.db.Query(ctx, query, limit, offset)
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("can't scan user row", zap.Error(err))
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (repo *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		zap.L().Error("can't count users", zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (repo *Repository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := repo.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return false, apperr.Conflict("customer still has orders")
		}
		zap.L().Error("can't delete user", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
