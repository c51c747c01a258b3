package database

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/session-ledger/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, session_id, title, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		transaction.ID,
		transaction.SessionID,
		transaction.Title,
		transaction.Amount).Scan(&transaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTransactionsBySessionID(ctx context.Context, sessionID string) ([]models.Transaction, error) {
	query := `
		SELECT id::text, session_id, title, amount, created_at
		FROM transactions
		WHERE session_id = $1
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Title, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error reading transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return transactions, nil
}

func (s *PostgresStore) GetTransactionByID(ctx context.Context, sessionID, id string) (*models.Transaction, error) {
	query := `
		SELECT id::text, session_id, title, amount, created_at
		FROM transactions
		WHERE id = $1 AND session_id = $2`

	t := &models.Transaction{}
	err := s.pool.QueryRow(ctx, query, id, sessionID).Scan(
		&t.ID,
		&t.SessionID,
		&t.Title,
		&t.Amount,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("error getting transaction %s: %w", id, err)
	}
	return t, nil
}

func (s *PostgresStore) GetSummary(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE session_id = $1`

	var amount decimal.Decimal
	if err := s.pool.QueryRow(ctx, query, sessionID).Scan(&amount); err != nil {
		return decimal.Zero, fmt.Errorf("error computing summary: %w", err)
	}
	return amount, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.pool)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
