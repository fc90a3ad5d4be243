package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = `id, name, category, subcategory, unit_price::text, supplier, status, created_at, updated_at`

// ProductRepo реализует каталог товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// FindByName возвращает первое совпадение: точное имя, затем без учёта регистра, затем подстрока.
// Внутри одного уровня порядок — порядок каталога (id).
func (p *ProductRepo) FindByName(ctx context.Context, name string) (*domain.Product, bool, error) {
	name = domain.NormalizeName(name)
	if name == "" {
		return nil, false, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE strpos(lower(name), lower($1)) > 0
		ORDER BY
			CASE
				WHEN name = $1 THEN 0
				WHEN lower(name) = lower($1) THEN 1
				ELSE 2
			END,
			id
		LIMIT 1
	`

	product, err := p.scanOne(p.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return product, true, nil
}

// Search возвращает имена доступных товаров, содержащие запрос, в порядке каталога.
func (p *ProductRepo) Search(ctx context.Context, query string, limit int) ([]string, error) {
	sql := `
		SELECT name
		FROM products
		WHERE status = $1 AND strpos(lower(name), lower($2)) > 0
		ORDER BY id
		LIMIT $3
	`

	rows, err := p.pool.Query(ctx, sql, domain.StatusAvailable, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return names, nil
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := p.conv.ToModel(product)
	query := `
		INSERT INTO products (name, category, subcategory, unit_price, supplier, status)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		RETURNING ` + productColumns

	created, err := p.scanOne(p.pool.QueryRow(ctx, query,
		model.Name,
		model.Category,
		model.Subcategory,
		model.UnitPrice,
		model.Supplier,
		model.Status,
	))
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return created, nil
}

// Update меняет товар, найденный по имени без учёта регистра.
func (p *ProductRepo) Update(ctx context.Context, originalName string, product *domain.Product) (*domain.Product, bool, error) {
	model := p.conv.ToModel(product)
	query := `
		UPDATE products
		SET name = $2,
			category = $3,
			subcategory = $4,
			unit_price = $5::numeric,
			supplier = $6,
			status = $7,
			updated_at = NOW()
		WHERE lower(name) = lower($1)
		RETURNING ` + productColumns

	updated, err := p.scanOne(p.pool.QueryRow(ctx, query,
		domain.NormalizeName(originalName),
		model.Name,
		model.Category,
		model.Subcategory,
		model.UnitPrice,
		model.Supplier,
		model.Status,
	))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, false, nil
		case postgresDuplicate(err):
			return nil, false, e.Wrap(whereami.WhereAmI(), e.ErrProductExists)
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return updated, true, nil
}

func (p *ProductRepo) Delete(ctx context.Context, name string) (bool, error) {
	result, err := p.pool.Exec(ctx, `DELETE FROM products WHERE lower(name) = lower($1)`, domain.NormalizeName(name))
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		product, err := p.scanOne(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (p *ProductRepo) CountAvailable(ctx context.Context) (int64, error) {
	var n int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE status = $1`, domain.StatusAvailable).Scan(&n); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return n, nil
}

func (p *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return n, nil
}

func (p *ProductRepo) scanOne(row pgx.Row) (*domain.Product, error) {
	var model converter.ProductModel
	if err := row.Scan(
		&model.ID,
		&model.Name,
		&model.Category,
		&model.Subcategory,
		&model.UnitPrice,
		&model.Supplier,
		&model.Status,
		&model.CreatedAt,
		&model.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return p.conv.ToEntity(&model)
}
