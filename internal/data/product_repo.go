package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops/fieldops-api/internal/data/pgxutil"
	"github.com/fieldops/fieldops-api/internal/domain/model"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
)

// ProductRepo provides database operations for products.
type ProductRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProductRepo creates a new ProductRepo with real time provider.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const productColumns = "id, sku, name, description, price_cents, stock, created_at, updated_at"

// Create inserts a new product. A duplicate SKU surfaces as ErrProductSKUExists.
func (r *ProductRepo) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, errors.New("create product request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Product
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO products (id, sku, name, description, price_cents, stock, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING `+productColumns,
			uuid.NewString(),
			strings.TrimSpace(req.SKU),
			strings.TrimSpace(req.Name),
			req.Description,
			req.PriceCents,
			req.Stock,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Product])
		return err
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrProductSKUExists
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	return r.getByQuery(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetBySKU retrieves a product by SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	return r.getByQuery(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

// List retrieves products ordered by name, paginated.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*model.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Product
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+productColumns+` FROM products ORDER BY name, id LIMIT $1 OFFSET $2`,
			limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Product])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	res := make([]*model.Product, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update applies a partial update to a product.
func (r *ProductRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateProductRequest,
) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	appendSet := func(col string, val any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, val)
	}
	if req.Name != nil {
		appendSet("name", strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		appendSet("description", *req.Description)
	}
	if req.PriceCents != nil {
		appendSet("price_cents", *req.PriceCents)
	}
	if req.Stock != nil {
		appendSet("stock", *req.Stock)
	}
	appendSet("updated_at", r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE products SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING " + productColumns

	var out model.Product
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Product])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete deletes a product by ID. Returns true when a row was removed.
func (r *ProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return affected > 0, nil
}

func (r *ProductRepo) getByQuery(ctx context.Context, q string, args ...any) (*model.Product, error) {
	var out model.Product
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Product])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &out, nil
}
