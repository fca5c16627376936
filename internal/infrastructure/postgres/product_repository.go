package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo de productos y variantes sobre PostgreSQL (usable con pool o tx).
// Stock y costo no se persisten aquí: se derivan del kardex.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const (
	productColumns = `id, name, category, brand, notes, measurements, created_at, updated_at`
	variantColumns = `id, product_id, sku, name, retail_price, wholesale_price, reorder_level, enabled, created_at, updated_at`
)

// Create persiste el producto y sus variantes en una sola transacción.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	return runInTx(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			product.ID, product.Name, product.Category, product.Brand, product.Notes,
			nullJSON(product.Measurements), product.CreatedAt, product.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrInvalidInput
			}
			return fmt.Errorf("insert product: %w", err)
		}
		for i := range product.Variants {
			if err := insertVariant(ctx, tx, &product.Variants[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID obtiene un producto con sus variantes. nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	variants, err := r.queryVariants(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE product_id = $1 ORDER BY sku`, id)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		p.Variants = append(p.Variants, *v)
	}
	return p, nil
}

// List lista los productos con sus variantes, ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	byID := map[string]*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	variants, err := r.ListVariants(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, *v)
		}
	}
	return list, nil
}

// Update actualiza los atributos del producto (no toca variantes).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, category = $3, brand = $4, notes = $5, measurements = $6, updated_at = $7
		WHERE id = $1`,
		product.ID, product.Name, product.Category, product.Brand, product.Notes,
		nullJSON(product.Measurements), product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddVariant persiste una variante de un producto existente.
func (r *ProductRepo) AddVariant(ctx context.Context, variant *entity.Variant) error {
	return insertVariant(ctx, r.q, variant)
}

// GetVariant obtiene una variante por ID. nil si no existe.
func (r *ProductRepo) GetVariant(ctx context.Context, id string) (*entity.Variant, error) {
	return r.getVariant(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE id = $1`, id)
}

// GetVariantBySKU obtiene una variante por SKU. nil si no existe.
func (r *ProductRepo) GetVariantBySKU(ctx context.Context, sku string) (*entity.Variant, error) {
	return r.getVariant(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE sku = $1`, sku)
}

// UpdateVariant actualiza los atributos de catálogo de la variante.
func (r *ProductRepo) UpdateVariant(ctx context.Context, variant *entity.Variant) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE product_variants
		SET sku = $2, name = $3, retail_price = $4, wholesale_price = $5, reorder_level = $6, enabled = $7, updated_at = $8
		WHERE id = $1`,
		variant.ID, variant.SKU, variant.Name, variant.RetailPrice, variant.WholesalePrice,
		variant.ReorderLevel, variant.Enabled, variant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("update variant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteVariant elimina la variante del catálogo; sus movimientos quedan en el kardex.
func (r *ProductRepo) DeleteVariant(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListVariants todas las variantes ordenadas por SKU.
func (r *ProductRepo) ListVariants(ctx context.Context) ([]*entity.Variant, error) {
	return r.queryVariants(ctx, `SELECT `+variantColumns+` FROM product_variants ORDER BY sku`)
}

func (r *ProductRepo) getVariant(ctx context.Context, query string, arg string) (*entity.Variant, error) {
	v, err := scanVariant(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

func (r *ProductRepo) queryVariants(ctx context.Context, query string, args ...any) ([]*entity.Variant, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	var list []*entity.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func insertVariant(ctx context.Context, q Querier, v *entity.Variant) error {
	_, err := q.Exec(ctx, `
		INSERT INTO product_variants (`+variantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.ProductID, v.SKU, v.Name, v.RetailPrice, v.WholesalePrice,
		v.ReorderLevel, v.Enabled, v.CreatedAt, v.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicateSKU
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	default:
		return fmt.Errorf("insert variant: %w", err)
	}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Brand, &p.Notes, &p.Measurements, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanVariant(row pgx.Row) (*entity.Variant, error) {
	v := entity.Variant{StockByWarehouse: map[string]int{}}
	if err := row.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.RetailPrice, &v.WholesalePrice,
		&v.ReorderLevel, &v.Enabled, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// nullJSON guarda NULL en lugar de un JSON vacío.
func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
