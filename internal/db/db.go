package db

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GetDSN returns the database DSN from environment.
func GetDSN() string {
	dsn := os.Getenv("CHECKOUT_DB_DSN")
	if dsn == "" {
		log.Fatal("CHECKOUT_DB_DSN not set")
	}
	return dsn
}

// MustOpen returns an open and verified connection pool.
func MustOpen(ctx context.Context) *pgxpool.Pool {
	dsn := GetDSN()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	return pool
}
