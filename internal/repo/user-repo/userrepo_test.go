package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

var userRows = []string{
	"id", "email", "name", "password_hash", "roles", "refresh_tokens",
	"total_spent", "orders_count", "last_order_id", "last_order_at", "created_at",
}

func TestRepository_FindByEmail(t *testing.T) {
	repo, mock := NewMock(t)

	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		email     string
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:  "User found",
			email: "user@example.com",
			mockSetup: func() {
				rows := pgxmock.NewRows(userRows).
					AddRow(1, "user@example.com", "Test User", "hashed_password",
						[]string{"customer"}, []string{"fp-1"},
						100.50, 2, (*int)(nil), (*time.Time)(nil), createdAt)
				mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
					WithArgs("user@example.com").
					WillReturnRows(rows)
			},
			expectErr: false,
			result: &domain.User{
				ID:            1,
				Email:         "user@example.com",
				Name:          "Test User",
				PasswordHash:  "hashed_password",
				Roles:         []string{"customer"},
				RefreshTokens: []string{"fp-1"},
				TotalSpent:    100.50,
				OrdersCount:   2,
				CreatedAt:     createdAt,
			},
		},
		{
			name:  "User not found",
			email: "missing@example.com",
			mockSetup: func() {
				mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
					WithArgs("missing@example.com").
					WillReturnError(pgx.ErrNoRows)
			},
			expectErr: false,
			result:    nil,
		},
		{
			name:  "Database error",
			email: "user@example.com",
			mockSetup: func() {
				mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
					WithArgs("user@example.com").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
			result:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByEmail(context.Background(), tt.email)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
		})
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		user      *domain.User
		mockSetup func()
		expectErr error
	}{
		{
			name: "Create user successfully",
			user: &domain.User{
				Email:        "new@example.com",
				Name:         "New User",
				PasswordHash: "hashed_password",
				Roles:        []string{"customer"},
			},
			mockSetup: func() {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("new@example.com", "New User", "hashed_password", []string{"customer"}).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(1, createdAt))
			},
		},
		{
			name: "Duplicate email",
			user: &domain.User{
				Email:        "taken@example.com",
				PasswordHash: "hashed_password",
				Roles:        []string{"customer"},
			},
			mockSetup: func() {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("taken@example.com", "", "hashed_password", []string{"customer"}).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			expectErr: apperr.Conflict("email already registered"),
		},
		{
			name: "Database error",
			user: &domain.User{
				Email:        "new@example.com",
				PasswordHash: "hashed_password",
				Roles:        []string{"customer"},
			},
			mockSetup: func() {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("new@example.com", "", "hashed_password", []string{"customer"}).
					WillReturnError(errors.New("database error"))
			},
			expectErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Create(context.Background(), tt.user)
			if tt.expectErr != nil {
				assert.Nil(t, result)
				assert.Equal(t, tt.expectErr, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, result.ID)
				assert.Equal(t, createdAt, result.CreatedAt)
			}
		})
	}
}

func TestRepository_UpdateRefreshTokens(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET refresh_tokens = $1 WHERE id = $2`)).
		WithArgs([]string{"fp-1", "fp-2"}, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateRefreshTokens(context.Background(), 1, []string{"fp-1", "fp-2"})
	assert.NoError(t, err)
}

func TestRepository_UpdateStats(t *testing.T) {
	repo, mock := NewMock(t)

	lastOrderID := 7
	lastOrderAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		stats     *domain.UserStats
		mockSetup func()
		expectErr bool
	}{
		{
			name: "Write aggregate",
			stats: &domain.UserStats{
				TotalSpent:  120.50,
				OrdersCount: 3,
				LastOrderID: &lastOrderID,
				LastOrderAt: &lastOrderAt,
			},
			mockSetup: func() {
				mock.ExpectExec(`UPDATE users`).
					WithArgs(120.50, 3, &lastOrderID, &lastOrderAt, 1).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name:  "Zero orders reset",
			stats: &domain.UserStats{},
			mockSetup: func() {
				mock.ExpectExec(`UPDATE users`).
					WithArgs(0.0, 0, (*int)(nil), (*time.Time)(nil), 1).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name:  "Database error",
			stats: &domain.UserStats{},
			mockSetup: func() {
				mock.ExpectExec(`UPDATE users`).
					WithArgs(0.0, 0, (*int)(nil), (*time.Time)(nil), 1).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			err := repo.UpdateStats(context.Background(), 1, tt.stats)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		id        int
		mockSetup func()
		deleted   bool
		expectErr error
	}{
		{
			name: "Customer deleted",
			id:   1,
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
					WithArgs(1).
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
			deleted: true,
		},
		{
			name: "Unknown customer",
			id:   404,
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
					WithArgs(404).
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			deleted: false,
		},
		{
			name: "Customer still referenced by orders",
			id:   1,
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
					WithArgs(1).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
			},
			expectErr: apperr.Conflict("customer still has orders"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			deleted, err := repo.Delete(context.Background(), tt.id)
			if tt.expectErr != nil {
				assert.Equal(t, tt.expectErr, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.deleted, deleted)
			}
		})
	}
}
