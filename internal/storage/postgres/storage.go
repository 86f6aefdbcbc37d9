package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/domain/repository"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage holds the fallback credential table.
type Storage struct {
	pool   pgxPool
	logger *zap.Logger
}

type credentialRepository struct {
	storage *Storage
}

// New connects to dsn and ensures the schema exists.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Credentials returns the fallback credential repository.
func (s *Storage) Credentials() repository.CredentialRepository {
	return &credentialRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fallback_credentials (
            user_id BIGINT PRIMARY KEY,
            email TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_fallback_credentials_email ON fallback_credentials(LOWER(email))`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// Seed upserts accounts in a single transaction.
func (s *Storage) Seed(ctx context.Context, accounts []model.FallbackAccount) error {
	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for _, a := range accounts {
			if _, err := tx.Exec(ctx, upsertCredential, a.UserID, normalizeEmail(a.Email), a.PasswordHash, string(a.Role), a.FirstName, a.LastName); err != nil {
				return fmt.Errorf("seed %s: %w", a.Email, err)
			}
		}
		return nil
	})
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// --- CredentialRepository implementation ---

const upsertCredential = `INSERT INTO fallback_credentials (user_id, email, password_hash, role, first_name, last_name)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   ON CONFLICT (user_id) DO UPDATE SET
                       email = EXCLUDED.email,
                       password_hash = EXCLUDED.password_hash,
                       role = EXCLUDED.role,
                       first_name = EXCLUDED.first_name,
                       last_name = EXCLUDED.last_name,
                       updated_at = NOW()`

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*model.FallbackAccount, error) {
	const query = `SELECT user_id, email, password_hash, role, first_name, last_name
                   FROM fallback_credentials WHERE LOWER(email) = $1`
	var (
		a    model.FallbackAccount
		role string
	)
	err := r.storage.pool.QueryRow(ctx, query, normalizeEmail(email)).Scan(&a.UserID, &a.Email, &a.PasswordHash, &role, &a.FirstName, &a.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	parsed, ok := model.ParseRole(role)
	if !ok {
		r.storage.logger.Error("fallback credential has unknown role", zap.Int64("user", a.UserID), zap.String("role", role))
		return nil, fmt.Errorf("credential %d: unknown role %q", a.UserID, role)
	}
	a.Role = parsed
	return &a, nil
}

func (r *credentialRepository) Upsert(ctx context.Context, account model.FallbackAccount) error {
	_, err := r.storage.pool.Exec(ctx, upsertCredential, account.UserID, normalizeEmail(account.Email), account.PasswordHash, string(account.Role), account.FirstName, account.LastName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("email %s already bound to another user: %w", account.Email, err)
		}
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
