// Package main provides a CLI tool for preparing the database: it creates
// the schema, ensures a superadmin account exists, and installs the initial
// invoice numbering range.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"gaiafact/internal/domain/auth"
	"gaiafact/internal/domain/invoice"
	"gaiafact/internal/domain/numbering"
	"gaiafact/internal/infrastructure/storage/postgres"
	"gaiafact/pkg/logger"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS numbering_counters (
		prefix            TEXT PRIMARY KEY,
		current_number    BIGINT NOT NULL,
		range_end         BIGINT NOT NULL,
		authorization_ref TEXT NOT NULL DEFAULT '',
		reset_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id            UUID PRIMARY KEY,
		code          TEXT NOT NULL,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		price         NUMERIC(18,4) NOT NULL DEFAULT 0,
		quantity      NUMERIC(18,4) NOT NULL DEFAULT 0,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_products_code
		ON products (code) WHERE deletion_mark = FALSE`,
	`CREATE TABLE IF NOT EXISTS change_requests (
		id           UUID PRIMARY KEY,
		kind         TEXT NOT NULL,
		product_id   UUID NOT NULL REFERENCES products (id),
		requested_by UUID NOT NULL,
		approved_by  UUID,
		price_old    NUMERIC(18,4),
		price_new    NUMERIC(18,4),
		quantity_old NUMERIC(18,4),
		quantity_new NUMERIC(18,4),
		status       TEXT NOT NULL,
		requested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		resolved_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS ix_change_requests_status
		ON change_requests (status, requested_at DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_entries (
		id                 UUID PRIMARY KEY,
		product_id         UUID,
		acting_user        TEXT NOT NULL DEFAULT '',
		action_kind        TEXT NOT NULL,
		payload            BYTEA,
		payload_compressed BYTEA,
		compression_algo   TEXT NOT NULL DEFAULT 'none',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ix_audit_entries_product
		ON audit_entries (product_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL,
		verified      BOOLEAN NOT NULL DEFAULT FALSE,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id              UUID PRIMARY KEY,
		number          TEXT NOT NULL UNIQUE,
		customer_name   TEXT NOT NULL,
		customer_tax_id TEXT NOT NULL DEFAULT '',
		issued_by       UUID NOT NULL,
		subtotal        NUMERIC(18,4) NOT NULL,
		tax             NUMERIC(18,4) NOT NULL,
		total           NUMERIC(18,4) NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_lines (
		invoice_id UUID NOT NULL REFERENCES invoices (id),
		line_no    INTEGER NOT NULL,
		product_id UUID NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		quantity   NUMERIC(18,4) NOT NULL,
		unit_price NUMERIC(18,4) NOT NULL,
		amount     NUMERIC(18,4) NOT NULL,
		PRIMARY KEY (invoice_id, line_no)
	)`,
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := ensureSchema(ctx, pool); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema is up to date")

	if err := seedSuperadmin(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed superadmin", "error", err)
	}

	if err := seedNumberingRange(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed numbering range", "error", err)
	}

	log.Info("seeding completed successfully")
}

func ensureSchema(ctx context.Context, pool *postgres.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}

func seedSuperadmin(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	email := os.Getenv("SUPERADMIN_EMAIL")
	if email == "" {
		email = "superadmin@gaiafact.local"
	}
	password := os.Getenv("SUPERADMIN_PASSWORD")
	if password == "" {
		return errors.New("SUPERADMIN_PASSWORD environment variable is required")
	}

	var existing string
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`, email,
	).Scan(&existing)
	if err == nil {
		log.Infow("superadmin already exists", "email", email, "user_id", existing)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check superadmin exists: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u := auth.NewUser(email, string(hash), "Superadmin")
	u.Role = auth.RoleSuperadmin
	u.Verified = true

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, name, role,
			verified, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.Role,
		u.Verified, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert superadmin: %w", err)
	}

	log.Infow("superadmin created", "email", u.Email, "user_id", u.ID)
	return nil
}

func seedNumberingRange(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txm := postgres.NewTxManager(pool)
	counters := postgres.NewCounterRepo(txm)
	svc := numbering.NewService(counters)

	if state, err := svc.Peek(ctx, invoice.DefaultPrefix); err == nil {
		log.Infow("numbering counter already installed",
			"prefix", state.Prefix,
			"current_number", state.CurrentNumber,
			"range_end", state.RangeEnd,
		)
		return nil
	}

	start := envInt64("NUMBERING_RANGE_START", 0)
	end := envInt64("NUMBERING_RANGE_END", 100000)
	authRef := os.Getenv("NUMBERING_AUTHORIZATION_REF")
	if authRef == "" {
		authRef = "initial-seed"
	}

	state, err := svc.LoadNewRange(ctx, invoice.DefaultPrefix, start, end, authRef)
	if err != nil {
		return fmt.Errorf("install numbering range: %w", err)
	}

	log.Infow("numbering range installed",
		"prefix", state.Prefix,
		"start", start,
		"range_end", state.RangeEnd,
		"authorization_ref", state.AuthorizationRef,
	)
	return nil
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
