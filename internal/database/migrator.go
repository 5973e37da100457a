package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// VersionTable records the applied migration version.
const VersionTable = "schema_version"

// Migrate applies every embedded migration that db has not seen yet.
func Migrate(ctx context.Context, logger *zerolog.Logger, db DB) error {
	conn, err := pgx.Connect(ctx, db.URL())
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, VersionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}

// CreateDatabase issues CREATE DATABASE for db.Name on db's server. Used by
// tests that want an isolated, throwaway database.
func CreateDatabase(ctx context.Context, db DB) error {
	conn, err := pgx.Connect(ctx, db.URLWithoutDB())
	if err != nil {
		return fmt.Errorf("connecting to server: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{db.Name}.Sanitize()); err != nil {
		return fmt.Errorf("creating database %s: %w", db.Name, err)
	}
	return nil
}

// DropDatabase removes a database created by CreateDatabase, terminating
// any connections still open on it.
func DropDatabase(ctx context.Context, db DB) error {
	conn, err := pgx.Connect(ctx, db.URLWithoutDB())
	if err != nil {
		return fmt.Errorf("connecting to server: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{db.Name}.Sanitize()+" WITH (FORCE)"); err != nil {
		return fmt.Errorf("dropping database %s: %w", db.Name, err)
	}
	return nil
}
