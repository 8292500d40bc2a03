package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/address"
)

type AddressStore struct {
	db *sql.DB
}

const addressColumns = `id, user_id, label, first_name, last_name, street, apartment, city, state, zip, country, created_at, updated_at`

func scanAddress(row interface{ Scan(...any) error }) (*address.Address, error) {
	var a address.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.FirstName, &a.LastName,
		&a.Street, &a.Apartment, &a.City, &a.State, &a.Zip, &a.Country,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AddressStore) Create(ctx context.Context, a *address.Address) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO addresses (id, user_id, label, first_name, last_name, street, apartment, city, state, zip, country, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.UserID, a.Label, a.FirstName, a.LastName, a.Street, a.Apartment,
		a.City, a.State, a.Zip, a.Country, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}
	return nil
}

func (s *AddressStore) Get(ctx context.Context, id string) (*address.Address, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id)
	a, err := scanAddress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, address.ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query address: %w", err)
	}
	return a, nil
}

func (s *AddressStore) ListByUser(ctx context.Context, userID string) ([]address.Address, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	addresses := []address.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, *a)
	}
	return addresses, rows.Err()
}

func (s *AddressStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return address.ErrAddressNotFound
	}
	return nil
}
