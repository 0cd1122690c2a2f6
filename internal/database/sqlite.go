package database

import (
	"context"
	"database/sql"
	"log"

	"github.com/Radennn1/tutoring-backend/internal/repository/sqlite"
)

func ConnectSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Printf("Opened SQLite store at %s", path)
	return db, nil
}
