package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fieldops/fieldops-api/internal/data/pgxutil"
	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/ports"
)

// profileRow is the database shape of an access profile.
type profileRow struct {
	ID        string  `db:"id"`
	Role      string  `db:"role"`
	Name      string  `db:"name"`
	AvatarURL *string `db:"avatar_url"`
	Active    bool    `db:"active"`
}

func (r profileRow) toDomain() domainauth.AccessProfile {
	return domainauth.AccessProfile{
		ID:        r.ID,
		Role:      domainauth.Role(r.Role),
		Name:      r.Name,
		AvatarURL: r.AvatarURL,
		Active:    r.Active,
	}
}

// ProfileRepo provides database operations for access profiles. It implements
// ports.ProfileStore; InsertIfAbsent relies on the primary key on id so that
// concurrent first-time provisioning loses as a typed conflict.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

var _ ports.ProfileStore = (*ProfileRepo)(nil)

const profileGetQuery = `
	SELECT id, role, name, avatar_url, active
	FROM access_profiles
	WHERE id = $1`

// Get retrieves an access profile by identity id. A missing row is
// ports.ErrProfileNotFound; any other failure is a lookup error.
func (r *ProfileRepo) Get(ctx context.Context, id string) (domainauth.AccessProfile, error) {
	var row profileRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, profileGetQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[profileRow])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.AccessProfile{}, ports.ErrProfileNotFound
		}
		return domainauth.AccessProfile{}, fmt.Errorf("get access profile: %w", err)
	}
	return row.toDomain(), nil
}

// InsertIfAbsent inserts an access profile, keyed on id. A concurrent insert
// for the same id surfaces as ports.ErrProfileExists rather than a generic
// error so the resolver can re-read the winning row.
func (r *ProfileRepo) InsertIfAbsent(ctx context.Context, profile domainauth.AccessProfile) error {
	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO access_profiles (id, role, name, avatar_url, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			profile.ID,
			string(profile.Role),
			profile.Name,
			profile.AvatarURL,
			profile.Active,
			now,
		)
		return err
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return ports.ErrProfileExists
		}
		return fmt.Errorf("insert access profile: %w", err)
	}
	return nil
}

// List retrieves access profiles ordered by name, paginated.
func (r *ProfileRepo) List(ctx context.Context, limit, offset int) ([]domainauth.AccessProfile, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []profileRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, role, name, avatar_url, active
			FROM access_profiles
			ORDER BY name, id
			LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[profileRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list access profiles: %w", err)
	}

	res := make([]domainauth.AccessProfile, len(rowsOut))
	for i := range rowsOut {
		res[i] = rowsOut[i].toDomain()
	}
	return res, nil
}

// UpdateProfileRequest carries the administrative changes allowed on a
// profile. The id itself is immutable.
type UpdateProfileRequest struct {
	Role      *domainauth.Role
	Name      *string
	AvatarURL *string
	Active    *bool
}

// HasUpdates reports whether the request changes at least one field.
func (u UpdateProfileRequest) HasUpdates() bool {
	return u.Role != nil || u.Name != nil || u.AvatarURL != nil || u.Active != nil
}

// Update applies administrative role/name/active changes to a profile.
// A missing row is ports.ErrProfileNotFound.
func (r *ProfileRepo) Update(
	ctx context.Context,
	id string,
	req UpdateProfileRequest,
) (domainauth.AccessProfile, error) {
	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if req.Role != nil {
		setParts = append(setParts, fmt.Sprintf("role = $%d", nextIdx()))
		args = append(args, string(*req.Role))
	}
	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.AvatarURL != nil {
		if strings.TrimSpace(*req.AvatarURL) == "" {
			setParts = append(setParts, "avatar_url = NULL")
		} else {
			setParts = append(setParts, fmt.Sprintf("avatar_url = $%d", nextIdx()))
			args = append(args, *req.AvatarURL)
		}
	}
	if req.Active != nil {
		setParts = append(setParts, fmt.Sprintf("active = $%d", nextIdx()))
		args = append(args, *req.Active)
	}
	if len(setParts) == 0 {
		return r.Get(ctx, id)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE access_profiles SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING id, role, name, avatar_url, active"

	var row profileRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[profileRow])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.AccessProfile{}, ports.ErrProfileNotFound
		}
		return domainauth.AccessProfile{}, fmt.Errorf("update access profile: %w", err)
	}
	return row.toDomain(), nil
}
