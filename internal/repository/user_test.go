package repository

import (
	"context"
	"testing"

	"github.com/deppfellow/newsletter/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestPool(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, "admin", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA")
	require.NoError(t, err)

	got, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.PasswordHash, got.PasswordHash)

	_, err = repo.Create(ctx, "admin", "other")
	assert.Equal(t, sqlerr.UniqueViolation, sqlerr.ErrCode(err))

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
