package agency

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all agency schema migrations
func GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create actors table",
			SQL: `
				CREATE TABLE IF NOT EXISTS actors (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(120) NOT NULL,
					age INT NOT NULL,
					gender VARCHAR(10) NOT NULL
				);
			`,
		},
		{
			Version:     2,
			Description: "Create movies table",
			SQL: `
				CREATE TABLE IF NOT EXISTS movies (
					id BIGSERIAL PRIMARY KEY,
					title VARCHAR(120) NOT NULL,
					release_date DATE NOT NULL
				);
			`,
		},
		{
			Version:     3,
			Description: "Create movie_actors association table",
			SQL: `
				CREATE TABLE IF NOT EXISTS movie_actors (
					movie_id BIGINT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
					actor_id BIGINT NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
					PRIMARY KEY (movie_id, actor_id)
				);

				CREATE INDEX idx_movie_actors_actor_id ON movie_actors(actor_id);
			`,
		},
	}
}

// RunMigrations executes all pending migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}

	appliedVersions := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		appliedVersions[version] = true
	}
	rows.Close()

	for _, migration := range GetMigrations() {
		if appliedVersions[migration.Version] {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO schema_migrations (version, description)
			VALUES ($1, $2)
		`, migration.Version, migration.Description)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
