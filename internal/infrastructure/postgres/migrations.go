package postgres

import (
	"embed"

	pkgpostgres "github.com/bibbank/card-lifecycle/pkg/postgres"
)

// Migrations holds the schema for the card and outbox tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the SQL files.
const MigrationsDir = "migrations"

// Migrate brings the database at dsn up to the latest schema.
func Migrate(dsn string) error {
	return pkgpostgres.RunMigrations(dsn, Migrations, MigrationsDir)
}
