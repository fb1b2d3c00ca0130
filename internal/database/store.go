package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrSymbolNotFound is returned when no symbol matches a code or name lookup.
var ErrSymbolNotFound = errors.New("symbol not found")

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// ReplaceSymbols replaces the whole symbol table atomically.
	ReplaceSymbols(ctx context.Context, symbols []Symbol) error

	// GetSymbolByCode retrieves one symbol by its exact stock code.
	GetSymbolByCode(ctx context.Context, code string) (*Symbol, error)

	// FindSymbolByName retrieves one symbol by company name, trying an exact
	// match before a substring match.
	FindSymbolByName(ctx context.Context, name string) (*Symbol, error)

	// CountSymbols returns the number of entries in the symbol table.
	CountSymbols(ctx context.Context) (int, error)
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// ReplaceSymbols deletes and reinserts the whole table in one transaction so
// readers never observe a partially refreshed listing.
func (s *sqlxStore) ReplaceSymbols(ctx context.Context, symbols []Symbol) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin symbol replace transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.ErrorContext(ctx, "Failed to rollback symbol replace", "error", rollbackErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols`); err != nil {
		return fmt.Errorf("failed to clear symbol table: %w", err)
	}

	now := time.Now().UTC()
	const insertQuery = `
		INSERT INTO symbols (code, name, symbol, updated_at)
		VALUES (:code, :name, :symbol, :updated_at)`

	for i := range symbols {
		symbols[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insertQuery, symbols[i]); err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", symbols[i].Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit symbol replace: %w", err)
	}

	s.logger.InfoContext(ctx, "Symbol table replaced", "count", len(symbols))
	return nil
}

func (s *sqlxStore) GetSymbolByCode(ctx context.Context, code string) (*Symbol, error) {
	var symbol Symbol
	err := s.db.GetContext(ctx, &symbol,
		`SELECT code, name, symbol, updated_at FROM symbols WHERE code = ?`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSymbolNotFound
		}
		return nil, fmt.Errorf("failed to get symbol by code: %w", err)
	}
	return &symbol, nil
}

func (s *sqlxStore) FindSymbolByName(ctx context.Context, name string) (*Symbol, error) {
	var symbol Symbol
	err := s.db.GetContext(ctx, &symbol,
		`SELECT code, name, symbol, updated_at FROM symbols WHERE name = ?`, name)
	if err == nil {
		return &symbol, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to find symbol by name: %w", err)
	}

	err = s.db.GetContext(ctx, &symbol,
		`SELECT code, name, symbol, updated_at FROM symbols
		 WHERE name LIKE ? ORDER BY code LIMIT 1`, "%"+name+"%")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSymbolNotFound
		}
		return nil, fmt.Errorf("failed to find symbol by name: %w", err)
	}
	return &symbol, nil
}

func (s *sqlxStore) CountSymbols(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM symbols`); err != nil {
		return 0, fmt.Errorf("failed to count symbols: %w", err)
	}
	return count, nil
}
