package utils

import (
	"context"
	"fmt"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/session-ledger/internal/database"
	"github.com/valeriaulyamaeva/session-ledger/models"
)

// GenerateTestTransactions returns n random create requests.
func GenerateTestTransactions(faker *gofakeit.Faker, n int) []models.CreateTransactionRequest {
	out := make([]models.CreateTransactionRequest, 0, n)
	for i := 0; i < n; i++ {
		amount := faker.Price(1, 1000)
		out = append(out, models.CreateTransactionRequest{
			Title:  faker.Sentence(3),
			Amount: &amount,
			Type:   randomTransactionType(faker),
		})
	}
	return out
}

func randomTransactionType(faker *gofakeit.Faker) models.TransactionType {
	if faker.Bool() {
		return models.Credit
	}
	return models.Debit
}

// SeedSession stores the requests under sessionID the same way
// POST /transactions would.
func SeedSession(ctx context.Context, store database.TransactionStore, sessionID string, reqs []models.CreateTransactionRequest) error {
	for i, req := range reqs {
		transaction := models.Transaction{
			ID:        uuid.NewString(),
			Title:     req.Title,
			Amount:    models.SignedAmount(decimal.NewFromFloat(*req.Amount), req.Type),
			SessionID: sessionID,
		}
		if err := store.CreateTransaction(ctx, &transaction); err != nil {
			return fmt.Errorf("error seeding transaction %d: %w", i, err)
		}
	}
	return nil
}
