package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"backend/internal/domain"
	"backend/internal/service"
)

const productColumns = `
	id,
	name,
	specs,
	color,
	quantity,
	unit_price::double precision,
	min_stock,
	category,
	created_at,
	updated_at
`

func (s *Store) ListProducts(ctx context.Context, filter service.ProductListFilter) ([]domain.Product, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)
	search := strings.TrimSpace(filter.Search)
	category := strings.TrimSpace(filter.Category)

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR specs ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
	`
	args := []any{search, category}
	if filter.LowStock {
		query += " AND quantity <= min_stock"
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

// FindProduct matches a product by name, specs and color, case-insensitive.
// Empty specs or color act as wildcards, which lets imported rows that only
// carry a model name and color resolve against the catalog.
func (s *Store) FindProduct(ctx context.Context, name, specs, color string) (*domain.Product, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE LOWER(name) = LOWER($1)
		  AND ($2 = '' OR LOWER(specs) = LOWER($2))
		  AND ($3 = '' OR LOWER(color) = LOWER($3))
		ORDER BY id ASC
		LIMIT 1
	`, strings.TrimSpace(name), strings.TrimSpace(specs), strings.TrimSpace(color))
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find product %q: %w", name, err)
	}
	return &product, nil
}

func (s *Store) InsertProduct(ctx context.Context, input service.ProductInput) (domain.Product, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO products (name, specs, color, quantity, unit_price, min_stock, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		strings.TrimSpace(input.Name),
		input.Specs,
		input.Color,
		input.Quantity,
		input.UnitPrice,
		input.MinStock,
		input.Category,
	)
	product, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

// UpdateProduct patches descriptive fields only. Quantity changes go
// through AdjustQuantity so the non-negativity check applies.
func (s *Store) UpdateProduct(ctx context.Context, id int64, patch service.ProductPatch) (*domain.Product, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE products
		SET
			name = COALESCE($2, name),
			specs = COALESCE($3, specs),
			color = COALESCE($4, color),
			unit_price = COALESCE($5, unit_price),
			min_stock = COALESCE($6, min_stock),
			category = COALESCE($7, category),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		id,
		patch.Name,
		patch.Specs,
		patch.Color,
		patch.UnitPrice,
		patch.MinStock,
		patch.Category,
	)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) LowStock(ctx context.Context) ([]domain.LowStockRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, specs, color, quantity, min_stock
		FROM products
		WHERE quantity <= min_stock
		ORDER BY quantity - min_stock ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("low stock query: %w", err)
	}
	defer rows.Close()

	list := make([]domain.LowStockRow, 0)
	for rows.Next() {
		var row domain.LowStockRow
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Specs, &row.Color, &row.Quantity, &row.MinStock); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		row.Needed = row.MinStock - row.Quantity
		if row.Needed < 0 {
			row.Needed = 0
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low stock rows: %w", err)
	}
	return list, nil
}

func (s *Store) ProductQuantity(ctx context.Context, id int64) (int, error) {
	var quantity int
	err := s.db.QueryRow(ctx, "SELECT quantity FROM products WHERE id = $1", id).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("product quantity %d: %w", id, err)
	}
	return quantity, nil
}

func (s *Store) ProductQuantities(ctx context.Context, ids []int64) (map[int64]int, error) {
	quantities := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return quantities, nil
	}
	rows, err := s.db.Query(ctx, "SELECT id, quantity FROM products WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("product quantities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       int64
			quantity int
		)
		if err := rows.Scan(&id, &quantity); err != nil {
			return nil, fmt.Errorf("scan product quantity: %w", err)
		}
		quantities[id] = quantity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product quantities: %w", err)
	}
	return quantities, nil
}

// AdjustQuantity applies a signed delta as a single conditional update, so
// two concurrent adjustments cannot both pass a stale check and drive the
// balance negative. The quantity >= 0 table constraint backs this up.
func (s *Store) AdjustQuantity(ctx context.Context, id int64, delta int) (int, error) {
	var quantity int
	err := s.db.QueryRow(ctx, `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING quantity
	`, id, delta).Scan(&quantity)
	if err == nil {
		return quantity, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("adjust quantity for product %d: %w", id, err)
	}

	// Either the product is missing or the delta would overdraw it.
	var (
		name      string
		available int
	)
	lookupErr := s.db.QueryRow(ctx, "SELECT name, quantity FROM products WHERE id = $1", id).
		Scan(&name, &available)
	if errors.Is(lookupErr, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if lookupErr != nil {
		return 0, fmt.Errorf("load product %d after failed adjust: %w", id, lookupErr)
	}
	return 0, &domain.InsufficientStockError{
		ProductID:   id,
		ProductName: name,
		Available:   available,
		Requested:   -delta,
	}
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Specs,
		&product.Color,
		&product.Quantity,
		&product.UnitPrice,
		&product.MinStock,
		&product.Category,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}
