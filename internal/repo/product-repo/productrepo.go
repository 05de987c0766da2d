package productrepo

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/dsolovey/gomarket/internal/apperr"
	"github.com/dsolovey/gomarket/internal/domain"
	"github.com/dsolovey/gomarket/internal/pg"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const productColumns = `id, title, category, description, price, image_name, image_original, created_at`

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Search   string
	Category string
}

type Repository struct {
	db pg.Database
	sb sq.StatementBuilderType
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Title, &p.Category, &p.Description, &p.Price,
		&p.ImageName, &p.ImageOriginal, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (title, category, description, price, image_name, image_original)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		product.Title, product.Category, product.Description, product.Price,
		product.ImageName, product.ImageOriginal,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, apperr.Conflict("product title already exists")
		}
		zap.L().Error("can't save product", zap.Error(err))
		return nil, err
	}
	return product, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find product", zap.Error(err))
		return nil, err
	}
	return product, nil
}

// FindByIDs returns the products for the given ids, unordered. Missing ids
// are simply absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []int) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		zap.L().Error("can't find products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			zap.L().Error("can't scan product row", zap.Error(err))
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func (r *Repository) List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Product, error) {
	builder := r.sb.Select(productColumns).
		From("products").
		OrderBy("id").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	builder = applyFilter(builder, filter)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			zap.L().Error("can't scan product row", zap.Error(err))
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func (r *Repository) Count(ctx context.Context, filter Filter) (int, error) {
	builder := applyFilter(r.sb.Select("COUNT(*)").From("products"), filter)
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		zap.L().Error("can't count products", zap.Error(err))
		return 0, err
	}
	return count, nil
}

func applyFilter(builder sq.SelectBuilder, filter Filter) sq.SelectBuilder {
	if filter.Search != "" {
		builder = builder.Where(sq.ILike{"title": "%" + filter.Search + "%"})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	return builder
}

func (r *Repository) Update(ctx context.Context, product *domain.Product) error {
	query := `
        UPDATE products
        SET title = $1, category = $2, description = $3, price = $4
        WHERE id = $5
    `
	_, err := r.db.Exec(ctx, query,
		product.Title, product.Category, product.Description, product.Price, product.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperr.Conflict("product title already exists")
		}
		zap.L().Error("can't update product", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) UpdateImage(ctx context.Context, id int, imageName, imageOriginal string) error {
	query := `UPDATE products SET image_name = $1, image_original = $2 WHERE id = $3`
	_, err := r.db.Exec(ctx, query, imageName, imageOriginal, id)
	if err != nil {
		zap.L().Error("can't update product image", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		zap.L().Error("can't delete product", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
