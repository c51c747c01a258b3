package database

import (
	"context"
	"errors"
	"fmt"
	"time"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/session-ledger/models"
)

// transactionItem is the DynamoDB shape of a transaction. Amount is kept
// as a DynamoDB number so precision survives the round trip.
type transactionItem struct {
	ID        string                `json:"id"`
	SessionID string                `json:"session_id"`
	Title     string                `json:"title"`
	Amount    attributevalue.Number `json:"amount"`
	CreatedAt string                `json:"created_at"`
}

func newTransactionItem(t *models.Transaction) transactionItem {
	return transactionItem{
		ID:        t.ID,
		SessionID: t.SessionID,
		Title:     t.Title,
		Amount:    attributevalue.Number(t.Amount.String()),
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (item transactionItem) toModel() (models.Transaction, error) {
	amount, err := decimal.NewFromString(string(item.Amount))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid amount %q on transaction %s: %w", item.Amount, item.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid created_at %q on transaction %s: %w", item.CreatedAt, item.ID, err)
	}
	return models.Transaction{
		ID:        item.ID,
		SessionID: item.SessionID,
		Title:     item.Title,
		Amount:    amount,
		CreatedAt: createdAt,
	}, nil
}

func jsonTags(opts *attributevalue.DecoderOptions) { opts.TagKey = "json" }

type DynamoDBStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoDBStore(opts ...func(*DynamoDBStore)) *DynamoDBStore {
	store := &DynamoDBStore{tableName: "transactions"}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func WithDynamoDBClient(client *dynamodb.Client) func(*DynamoDBStore) {
	return func(store *DynamoDBStore) {
		store.client = client
	}
}

func WithTableName(tableName string) func(*DynamoDBStore) {
	return func(store *DynamoDBStore) {
		store.tableName = tableName
	}
}

// ConnectDynamoDB loads the default AWS config. A non-empty endpoint
// points the client at DynamoDB Local or another compatible server.
func ConnectDynamoDB(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	var optFns []func(*config.LoadOptions) error
	if endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           endpoint,
				SigningRegion: region,
			}, nil
		})
		optFns = append(optFns, config.WithEndpointResolverWithOptions(resolver))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func (s *DynamoDBStore) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now().UTC()
	}

	av, err := attributevalue.MarshalMapWithOptions(newTransactionItem(transaction), func(opts *attributevalue.EncoderOptions) {
		opts.TagKey = "json"
	})
	if err != nil {
		return fmt.Errorf("error marshaling transaction: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("error inserting transaction: %w", err)
	}
	return nil
}

// querySession walks every page of the session's partition.
func (s *DynamoDBStore) querySession(ctx context.Context, sessionID string, fn func(transactionItem) error) error {
	keyExpr := expression.Key("session_id").Equal(expression.Value(sessionID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyExpr).Build()
	if err != nil {
		return err
	}

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 &s.tableName,
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		var items []transactionItem
		if err := attributevalue.UnmarshalListOfMapsWithOptions(page.Items, &items, jsonTags); err != nil {
			return err
		}
		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *DynamoDBStore) GetTransactionsBySessionID(ctx context.Context, sessionID string) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)
	err := s.querySession(ctx, sessionID, func(item transactionItem) error {
		t, err := item.toModel()
		if err != nil {
			return err
		}
		transactions = append(transactions, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return transactions, nil
}

func (s *DynamoDBStore) GetTransactionByID(ctx context.Context, sessionID, id string) (*models.Transaction, error) {
	output, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"session_id": &types.AttributeValueMemberS{Value: sessionID},
			"id":         &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error getting transaction %s: %w", id, err)
	}
	if output.Item == nil {
		return nil, ErrTransactionNotFound
	}

	var item transactionItem
	if err := attributevalue.UnmarshalMapWithOptions(output.Item, &item, jsonTags); err != nil {
		return nil, fmt.Errorf("error decoding transaction %s: %w", id, err)
	}
	t, err := item.toModel()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *DynamoDBStore) GetSummary(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := s.querySession(ctx, sessionID, func(item transactionItem) error {
		amount, err := decimal.NewFromString(string(item.Amount))
		if err != nil {
			return fmt.Errorf("invalid amount %q on transaction %s: %w", item.Amount, item.ID, err)
		}
		sum = sum.Add(amount)
		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("error computing summary: %w", err)
	}
	return sum, nil
}

// Migrate creates the table with session_id as hash key and id as range
// key. An existing table is left alone.
func (s *DynamoDBStore) Migrate(ctx context.Context) error {
	_, err := s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("session_id"),
				AttributeType: types.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String("id"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("session_id"),
				KeyType:       types.KeyTypeHash,
			},
			{
				AttributeName: aws.String("id"),
				KeyType:       types.KeyTypeRange,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	var inUse *types.ResourceInUseException
	if err != nil && !errors.As(err, &inUse) {
		return fmt.Errorf("error creating table %s: %w", s.tableName, err)
	}
	return nil
}

func (s *DynamoDBStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: &s.tableName})
	return err
}

func (s *DynamoDBStore) Close() {}
