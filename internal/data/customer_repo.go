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

// CustomerRepo provides database operations for customers.
type CustomerRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCustomerRepo creates a new CustomerRepo with real time provider.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const customerColumns = "id, name, email, phone, address, note, created_at, updated_at"

// Create inserts a new customer.
func (r *CustomerRepo) Create(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error) {
	if req == nil {
		return nil, errors.New("create customer request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var out model.Customer
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO customers (id, name, email, phone, address, note, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING `+customerColumns,
			uuid.NewString(),
			strings.TrimSpace(req.Name),
			req.Email,
			req.Phone,
			req.Address,
			req.Note,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Customer])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	var out model.Customer
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Customer])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &out, nil
}

// List retrieves customers with optional name search and pagination.
func (r *CustomerRepo) List(ctx context.Context, q string, limit, offset int) ([]*model.Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + customerColumns + ` FROM customers`
	args := []any{}
	if strings.TrimSpace(q) != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+strings.TrimSpace(q)+"%")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var rowsOut []model.Customer
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Customer])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	res := make([]*model.Customer, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update applies a partial update to a customer.
func (r *CustomerRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateCustomerRequest,
) (*model.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 6)
	args := make([]any, 0, 7)
	nextIdx := func() int { return len(args) + 1 }

	appendSet := func(col string, val any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, nextIdx()))
		args = append(args, val)
	}
	if req.Name != nil {
		appendSet("name", strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		appendSet("email", *req.Email)
	}
	if req.Phone != nil {
		appendSet("phone", *req.Phone)
	}
	if req.Address != nil {
		appendSet("address", *req.Address)
	}
	if req.Note != nil {
		appendSet("note", *req.Note)
	}
	appendSet("updated_at", r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE customers SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING " + customerColumns

	var out model.Customer
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Customer])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete deletes a customer by ID. Returns true when a row was removed.
func (r *CustomerRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
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
