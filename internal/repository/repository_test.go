package repository

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/deppfellow/newsletter/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// testDatabaseURLEnv points at a Postgres server the tests may create
// databases on. Tests are skipped when it is unset.
const testDatabaseURLEnv = "NEWSLETTER_TEST_DATABASE_URL"

// newTestPool creates a fresh, migrated database and drops it when the
// test ends.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	raw := os.Getenv(testDatabaseURLEnv)
	if raw == "" {
		t.Skipf("%s not set, skipping database test", testDatabaseURLEnv)
	}

	server, err := database.FromURL(raw)
	require.NoError(t, err)

	db := server.WithName("newsletter_test_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	ctx := context.Background()

	require.NoError(t, database.CreateDatabase(ctx, db))

	logger := zerolog.Nop()
	require.NoError(t, database.Migrate(ctx, &logger, db))

	pool, err := pgxpool.New(ctx, db.URL())
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = database.DropDatabase(context.Background(), db)
	})

	return pool
}
