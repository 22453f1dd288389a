package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

const userColumns = `id, email, full_name, phone, country, address, password_hash,
	transfer_pin_hash, role, is_verified, is_active, created_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (
			id, email, full_name, phone, country, address, password_hash,
			transfer_pin_hash, role, is_verified, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		user.ID, user.Email, user.FullName, user.Phone, user.Country, user.Address,
		user.PasswordHash, user.TransferPinHash, user.Role,
		user.IsVerified, user.IsActive, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *UserRepository) ListCustomers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, domain.UserRoleCustomer,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("ListCustomers: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		WHERE role = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		domain.UserRoleCustomer, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("ListCustomers: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ListCustomers: scan: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListCustomers: rows: %w", err)
	}
	return users, total, nil
}

func (r *UserRepository) SetTransferPinHash(ctx context.Context, id uuid.UUID, pinHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET transfer_pin_hash = $1 WHERE id = $2`, pinHash, id,
	)
	if err != nil {
		return fmt.Errorf("SetTransferPinHash: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetTransferPinHash: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetTransferPinHash: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_verified = $1 WHERE id = $2`, verified, id,
	)
	if err != nil {
		return fmt.Errorf("SetVerified: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetVerified: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetVerified: %w", domain.ErrNotFound)
	}
	return nil
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	err := s.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Country, &u.Address,
		&u.PasswordHash, &u.TransferPinHash, &u.Role,
		&u.IsVerified, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
