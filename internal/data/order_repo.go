package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops/fieldops-api/internal/data/pgxutil"
	"github.com/fieldops/fieldops-api/internal/domain/model"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
)

// OrderRepo provides database operations for orders and their line items.
type OrderRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewOrderRepo creates a new OrderRepo with real time provider.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const orderColumns = "id, customer_id, status, placed_by, created_at, updated_at"

// CreateOrderParams carries the resolved order data for insertion. Item unit
// prices are snapshotted by the service before the write.
type CreateOrderParams struct {
	CustomerID string
	PlacedBy   string
	Items      []model.OrderItem
}

// Create inserts an order and its line items in a single transaction.
// The order is all-or-nothing: no partial order is ever visible.
func (r *OrderRepo) Create(ctx context.Context, params CreateOrderParams) (*model.Order, error) {
	if len(params.Items) == 0 {
		return nil, errors.New("order requires at least one line item")
	}

	id := uuid.NewString()
	now := r.timeProvider.Now().UTC()

	var out model.Order
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO orders (id, customer_id, status, placed_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			RETURNING `+orderColumns,
			id, params.CustomerID, string(model.OrderStatusPending), params.PlacedBy, now)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Order])
		rows.Close()
		if err != nil {
			return err
		}

		for _, it := range params.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents)
				VALUES ($1, $2, $3, $4)`,
				id, it.ProductID, it.Quantity, it.UnitPriceCents); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	out.Items = params.Items
	for i := range out.Items {
		out.Items[i].OrderID = id
	}
	return &out, nil
}

// GetByID retrieves an order with its line items.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var out model.Order
	var items []model.OrderItem
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Order])
		rows.Close()
		if err != nil {
			return err
		}

		itemRows, err := conn.Query(ctx, `
			SELECT order_id, product_id, quantity, unit_price_cents
			FROM order_items WHERE order_id = $1
			ORDER BY product_id`, id)
		if err != nil {
			return err
		}
		defer itemRows.Close()
		items, err = pgx.CollectRows(itemRows, pgx.RowToStructByName[model.OrderItem])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	out.Items = items
	return &out, nil
}

// ListOrdersOptions filters order listings.
type ListOrdersOptions struct {
	CustomerID string
	Status     model.OrderStatus
	Limit      int
	Offset     int
}

// List retrieves orders (without line items) matching the options, newest first.
func (r *OrderRepo) List(ctx context.Context, opts ListOrdersOptions) ([]*model.Order, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	conds := []string{}
	if opts.CustomerID != "" {
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)+1))
		args = append(args, opts.CustomerID)
	}
	if opts.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(opts.Status))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var rowsOut []model.Order
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Order])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	res := make([]*model.Order, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// UpdateStatus moves an order from one status to another. The allowed
// transitions are enforced by the service; the repo makes the write a
// compare-and-swap on the current status so two racing transitions cannot
// both land.
func (r *OrderRepo) UpdateStatus(
	ctx context.Context,
	id string,
	from, to model.OrderStatus,
) (*model.Order, error) {
	var out model.Order
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE orders SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
			RETURNING `+orderColumns,
			string(to), r.timeProvider.Now().UTC(), id, string(from))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Order])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row matched: either the order is gone or another writer
			// moved it off the expected status first.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrOrderStatusConflict
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}
