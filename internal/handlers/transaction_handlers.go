package handlers

import (
	"errors"
	"net/http"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/session-ledger/internal/database"
	"github.com/valeriaulyamaeva/session-ledger/internal/session"
	"github.com/valeriaulyamaeva/session-ledger/models"
)

type transactionURI struct {
	ID string `uri:"id" binding:"required"`
}

var errInvalidID = errors.New("id must be a UUID")

// canonicalID accepts the hyphenated UUID form in either case and returns
// it lowercased, the form ids are stored in.
func canonicalID(raw string) (string, error) {
	if len(raw) != 36 {
		return "", errInvalidID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errInvalidID
	}
	return id.String(), nil
}

type getTransactionResponse struct {
	Transactions *models.Transaction `json:"transactions,omitempty"`
}

func invalidInput(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input.", "details": err.Error()})
}

// serverError records err for the request logger and answers with a
// generic message.
func serverError(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func sessionID(c *gin.Context) (string, bool) {
	id, ok := session.ID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized."})
	}
	return id, ok
}

// CreateTransactionHandler stores a credit or debit for the caller's
// session, issuing the session cookie on first use.
func CreateTransactionHandler(store database.TransactionStore, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}

		transaction := models.Transaction{
			ID:        uuid.NewString(),
			Title:     req.Title,
			Amount:    models.SignedAmount(decimal.NewFromFloat(*req.Amount), req.Type),
			SessionID: session.Ensure(c, secureCookie),
		}
		if err := store.CreateTransaction(c.Request.Context(), &transaction); err != nil {
			serverError(c, err, "Failed to create transaction")
			return
		}
		c.Status(http.StatusCreated)
	}
}

func GetTransactionsHandler(store database.TransactionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}
		transactions, err := store.GetTransactionsBySessionID(c.Request.Context(), sid)
		if err != nil {
			serverError(c, err, "Failed to get transactions")
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": transactions})
	}
}

// GetTransactionHandler answers 200 with an empty object when the id does
// not belong to the session.
func GetTransactionHandler(store database.TransactionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri transactionURI
		if err := c.ShouldBindUri(&uri); err != nil {
			invalidInput(c, err)
			return
		}
		id, err := canonicalID(uri.ID)
		if err != nil {
			invalidInput(c, err)
			return
		}
		sid, ok := sessionID(c)
		if !ok {
			return
		}

		transaction, err := store.GetTransactionByID(c.Request.Context(), sid, id)
		if err != nil && !errors.Is(err, database.ErrTransactionNotFound) {
			serverError(c, err, "Failed to get transaction")
			return
		}
		c.JSON(http.StatusOK, getTransactionResponse{Transactions: transaction})
	}
}

func GetSummaryHandler(store database.TransactionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}
		amount, err := store.GetSummary(c.Request.Context(), sid)
		if err != nil {
			serverError(c, err, "Failed to get summary")
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": models.Summary{Amount: amount}})
	}
}

func HealthHandler(store database.TransactionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "Store unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
