package database

import (
	"context"
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/session-ledger/internal/config"
	"github.com/valeriaulyamaeva/session-ledger/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionStore is the storage accessor used by the HTTP handlers.
// Every read is scoped by session id.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
	GetTransactionsBySessionID(ctx context.Context, sessionID string) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, sessionID, id string) (*models.Transaction, error)
	GetSummary(ctx context.Context, sessionID string) (decimal.Decimal, error)
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// Open connects to the backend selected by cfg.DatabaseClient.
func Open(ctx context.Context, cfg config.Config) (TransactionStore, error) {
	switch cfg.DatabaseClient {
	case config.ClientPostgres:
		pool, err := ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil
	case config.ClientDynamoDB:
		client, err := ConnectDynamoDB(ctx, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, err
		}
		return NewDynamoDBStore(WithDynamoDBClient(client), WithTableName(cfg.DynamoDBTable)), nil
	default:
		return nil, fmt.Errorf("unsupported database client %q", cfg.DatabaseClient)
	}
}
