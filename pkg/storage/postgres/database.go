package postgres

import (
	"database/sql"
	"fmt"

	"tornbot/config"

	"github.com/lib/pq"
)

// CreateDatabase connects to the postgres server and creates cfg.DBName if it doesn't exist.
func CreateDatabase(cfg config.PostgresConfig) error {
	// Connect to the maintenance 'postgres' DB
	db, err := sql.Open("postgres", cfg.ServerDSN())
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer db.Close()

	return createDatabase(db, cfg.DBName)
}

func createDatabase(db *sql.DB, name string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1);`
	if err := db.QueryRow(query, name).Scan(&exists); err != nil {
		return fmt.Errorf("check db exists failed: %w", err)
	}

	if exists {
		return nil
	}

	if _, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("create db failed: %w", err)
	}

	return nil
}
