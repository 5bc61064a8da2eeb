package repository

import (
	"context"
	"errors"
	"fmt"

	"address-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Effective postal code geography. Mirrors models.Address.PostalCodeCity and
// PostalCodeState so the fallback holds in queries too.
const (
	PostalCodeCityExpr  = "COALESCE(NULLIF(postal_code_city, ''), city)"
	PostalCodeStateExpr = "COALESCE(NULLIF(postal_code_state, ''), state)"
)

const addressColumns = `
	addr_id,
	when_updated,
	address,
	city,
	state,
	postal_code,
	country,
	postal_code_city,
	postal_code_state`

// Repository implements the repository interface for PostgreSQL
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateAddress inserts an address and returns the stored row.
func (r *Repository) CreateAddress(ctx context.Context, addr *models.Address) (*models.Address, error) {
	sql := `
		INSERT INTO addresses (
			address,
			city,
			state,
			postal_code,
			country,
			postal_code_city,
			postal_code_state
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING` + addressColumns

	stored, err := scanAddress(r.db.QueryRow(ctx, sql,
		addr.StreetAddress,
		addr.City,
		addr.State,
		addr.PostalCode,
		addr.Country,
		addr.DerivedCity,
		addr.DerivedState,
	))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert address: %w", err)
	}

	return stored, nil
}

// GetAddress returns the address with the given id, or nil if there is none.
func (r *Repository) GetAddress(ctx context.Context, id int64) (*models.Address, error) {
	sql := `SELECT` + addressColumns + `
		FROM addresses
		WHERE addr_id = $1
	`

	addr, err := scanAddress(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to get address: %w", err)
	}

	return addr, nil
}

// ListAddressesByPostalCodeState returns the addresses whose effective postal
// code state equals state.
func (r *Repository) ListAddressesByPostalCodeState(ctx context.Context, state string) ([]models.Address, error) {
	sql := `SELECT` + addressColumns + `
		FROM addresses
		WHERE ` + PostalCodeStateExpr + ` = $1
		ORDER BY addr_id
	`

	rows, err := r.db.Query(ctx, sql, state)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute state query: %w", err)
	}
	defer rows.Close()

	addrs := []models.Address{}
	for rows.Next() {
		addr, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan address: %w", err)
		}
		addrs = append(addrs, *addr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return addrs, nil
}

// UpdatePostalCodeGeography replaces the derived fields of an address. It
// returns nil if the address does not exist.
func (r *Repository) UpdatePostalCodeGeography(ctx context.Context, id int64, geo models.LookupResult) (*models.Address, error) {
	sql := `
		UPDATE addresses
		SET postal_code_city = $2,
			postal_code_state = $3,
			when_updated = now()
		WHERE addr_id = $1
		RETURNING` + addressColumns

	addr, err := scanAddress(r.db.QueryRow(ctx, sql, id, geo.City, geo.State))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to update address: %w", err)
	}

	return addr, nil
}

// CopyAddresses bulk inserts addresses and returns the number of rows written.
func (r *Repository) CopyAddresses(ctx context.Context, addrs []models.Address) (int64, error) {
	n, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"addresses"},
		[]string{"address", "city", "state", "postal_code", "country", "postal_code_city", "postal_code_state"},
		pgx.CopyFromSlice(len(addrs), func(i int) ([]any, error) {
			a := addrs[i]
			return []any{a.StreetAddress, a.City, a.State, a.PostalCode, a.Country, a.DerivedCity, a.DerivedState}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to copy addresses: %w", err)
	}

	return n, nil
}

func scanAddress(row pgx.Row) (*models.Address, error) {
	var addr models.Address
	err := row.Scan(
		&addr.ID,
		&addr.WhenUpdated,
		&addr.StreetAddress,
		&addr.City,
		&addr.State,
		&addr.PostalCode,
		&addr.Country,
		&addr.DerivedCity,
		&addr.DerivedState,
	)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}
