package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/newsletter/internal/domain"
	"github.com/deppfellow/newsletter/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const usersTable = "users"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = @username
	`, pgx.NamedArgs{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[domain.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound(usersTable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect user: %w", err)
	}

	return user, nil
}

// Create inserts a user. A duplicate username surfaces as a unique
// violation from the driver.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		INSERT INTO users (id, username, password_hash)
		VALUES (@id, @username, @password_hash)
		RETURNING id, username, password_hash, created_at
	`, pgx.NamedArgs{
		"id":            uuid.New(),
		"username":      username,
		"password_hash": passwordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[domain.User])
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}
