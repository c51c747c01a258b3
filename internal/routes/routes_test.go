package routes_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/session-ledger/internal/config"
	"github.com/valeriaulyamaeva/session-ledger/internal/database"
	"github.com/valeriaulyamaeva/session-ledger/internal/routes"
	"github.com/valeriaulyamaeva/session-ledger/internal/session"
	"github.com/valeriaulyamaeva/session-ledger/models"
)

type memoryStore struct {
	mu   sync.Mutex
	rows []models.Transaction
}

func (m *memoryStore) CreateTransaction(_ context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = time.Now().UTC()
	m.rows = append(m.rows, *t)
	return nil
}

func (m *memoryStore) GetTransactionsBySessionID(_ context.Context, sessionID string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Transaction, 0)
	for _, t := range m.rows {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryStore) GetTransactionByID(_ context.Context, sessionID, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.ID == id && t.SessionID == sessionID {
			t := t
			return &t, nil
		}
	}
	return nil, database.ErrTransactionNotFound
}

func (m *memoryStore) GetSummary(_ context.Context, sessionID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, t := range m.rows {
		if t.SessionID == sessionID {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *memoryStore) Migrate(context.Context) error { return nil }
func (m *memoryStore) Ping(context.Context) error    { return nil }
func (m *memoryStore) Close()                        {}

func newServer(t *testing.T) (*gin.Engine, *memoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := &memoryStore{}
	cfg := config.Config{CORSOrigins: []string{"http://localhost:3000"}}
	return routes.SetupRouter(store, cfg, zerolog.Nop()), store
}

func do(t *testing.T, r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", session.CookieName)
	return nil
}

func createBody(title string, amount float64, typ string) map[string]any {
	return map[string]any{"title": title, "amount": amount, "type": typ}
}

type listResponse struct {
	Transactions []struct {
		ID        string  `json:"id"`
		Title     string  `json:"title"`
		Amount    float64 `json:"amount"`
		SessionID string  `json:"session_id"`
	} `json:"transactions"`
}

func list(t *testing.T, r http.Handler, cookie *http.Cookie) listResponse {
	t.Helper()
	w := do(t, r, http.MethodGet, "/transactions", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", w.Code, w.Body.String())
	}
	var resp listResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return resp
}

func summary(t *testing.T, r http.Handler, cookie *http.Cookie) string {
	t.Helper()
	w := do(t, r, http.MethodGet, "/transactions/summary", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", w.Code, w.Body.String())
	}
	return w.Body.String()
}

func TestCreateTransaction(t *testing.T) {
	r, store := newServer(t)

	w := do(t, r, http.MethodPost, "/transactions", createBody("New transaction", 5000, "credit"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}

	c := sessionCookie(t, w)
	if c.Path != "/" || c.MaxAge != 7*24*60*60 {
		t.Fatalf("unexpected cookie attributes: %+v", c)
	}
	if len(store.rows) != 1 || store.rows[0].SessionID != c.Value {
		t.Fatalf("row not stored under issued session: %+v", store.rows)
	}
	if _, err := uuid.Parse(store.rows[0].ID); err != nil {
		t.Fatalf("transaction id is not a uuid: %v", err)
	}
}

func TestCreateTransactionSignsAmount(t *testing.T) {
	r, store := newServer(t)

	w := do(t, r, http.MethodPost, "/transactions", createBody("salary", 120.5, "credit"))
	c := sessionCookie(t, w)
	do(t, r, http.MethodPost, "/transactions", createBody("rent", 80.25, "debit"), c)

	if len(store.rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(store.rows))
	}
	if !store.rows[0].Amount.Equal(decimal.RequireFromString("120.5")) {
		t.Errorf("credit stored as %s", store.rows[0].Amount)
	}
	if !store.rows[1].Amount.Equal(decimal.RequireFromString("-80.25")) {
		t.Errorf("debit stored as %s", store.rows[1].Amount)
	}
}

func TestCreateTransactionReusesSession(t *testing.T) {
	r, store := newServer(t)

	c := sessionCookie(t, do(t, r, http.MethodPost, "/transactions", createBody("a", 1, "credit")))
	w := do(t, r, http.MethodPost, "/transactions", createBody("b", 2, "credit"), c)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("existing session should not get a new cookie")
	}
	if store.rows[1].SessionID != c.Value {
		t.Fatalf("second row session = %q, want %q", store.rows[1].SessionID, c.Value)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	cases := map[string]any{
		"missing title":  map[string]any{"amount": 10, "type": "credit"},
		"empty title":    map[string]any{"title": "", "amount": 10, "type": "credit"},
		"missing amount": map[string]any{"title": "x", "type": "credit"},
		"string amount":  map[string]any{"title": "x", "amount": "10", "type": "credit"},
		"missing type":   map[string]any{"title": "x", "amount": 10},
		"unknown type":   map[string]any{"title": "x", "amount": 10, "type": "transfer"},
		"numeric title":  map[string]any{"title": 5, "amount": 10, "type": "debit"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			r, store := newServer(t)
			w := do(t, r, http.MethodPost, "/transactions", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body.String())
			}
			if len(store.rows) != 0 {
				t.Fatal("invalid request must not insert")
			}
		})
	}
}

func TestCreateTransactionZeroAmount(t *testing.T) {
	r, _ := newServer(t)
	w := do(t, r, http.MethodPost, "/transactions", createBody("nothing", 0, "debit"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r, _ := newServer(t)
	for _, path := range []string{
		"/transactions",
		"/transactions/summary",
		"/transactions/" + uuid.NewString(),
	} {
		w := do(t, r, http.MethodGet, path, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, w.Code)
		}
	}
}

func TestListTransactions(t *testing.T) {
	r, _ := newServer(t)

	c := sessionCookie(t, do(t, r, http.MethodPost, "/transactions", createBody("New transaction", 5000, "credit")))
	resp := list(t, r, c)

	if len(resp.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(resp.Transactions))
	}
	got := resp.Transactions[0]
	if got.Title != "New transaction" || got.Amount != 5000 || got.SessionID != c.Value {
		t.Fatalf("unexpected transaction: %+v", got)
	}
}

func TestListTransactionsEmptySession(t *testing.T) {
	r, _ := newServer(t)
	w := do(t, r, http.MethodGet, "/transactions", nil, &http.Cookie{Name: session.CookieName, Value: uuid.NewString()})
	if w.Body.String() != `{"transactions":[]}` {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestGetTransaction(t *testing.T) {
	r, _ := newServer(t)

	c := sessionCookie(t, do(t, r, http.MethodPost, "/transactions", createBody("New transaction", 5000, "credit")))
	id := list(t, r, c).Transactions[0].ID

	w := do(t, r, http.MethodGet, "/transactions/"+id, nil, c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Transactions struct {
			ID     string  `json:"id"`
			Title  string  `json:"title"`
			Amount float64 `json:"amount"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Transactions.ID != id || resp.Transactions.Title != "New transaction" || resp.Transactions.Amount != 5000 {
		t.Fatalf("unexpected transaction: %+v", resp.Transactions)
	}
}

func TestGetTransactionUppercaseID(t *testing.T) {
	r, _ := newServer(t)

	c := sessionCookie(t, do(t, r, http.MethodPost, "/transactions", createBody("Rent", 1200, "debit")))
	id := list(t, r, c).Transactions[0].ID

	w := do(t, r, http.MethodGet, "/transactions/"+strings.ToUpper(id), nil, c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Transactions struct {
			ID string `json:"id"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Transactions.ID != id {
		t.Fatalf("id = %q, want %q", resp.Transactions.ID, id)
	}
}

func TestGetTransactionUnknownID(t *testing.T) {
	r, _ := newServer(t)
	c := sessionCookie(t, do(t, r, http.MethodPost, "/transactions", createBody("x", 1, "credit")))

	w := do(t, r, http.MethodGet, "/transactions/"+uuid.NewString(), nil, c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "{}" {
		t.Fatalf("body = %s, want {}", w.Body.String())
	}
}

func TestGetTransactionInvalidID(t *testing.T) {
	r, _ := newServer(t)
	for _, id := range []string{"123", "not-a-uuid", "00000000-0000-0000-0000-00000000000g"} {
		c := &http.Cookie{Name: session.CookieName, Value: uuid.NewString()}
		w := do(t, r, http.MethodGet, "/transactions/"+id, nil, c)
		if w.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", id, w.Code)
		}
	}
}

func TestSummary(t *testing.T) {
	r, _ := newServer(t)

	c := sessionCookie(t, do(t, r, http.MethodPost, "/transactions", createBody("Credit transaction", 5000, "credit")))
	do(t, r, http.MethodPost, "/transactions", createBody("Debit transaction", 2000, "debit"), c)

	if got := summary(t, r, c); got != `{"summary":{"amount":3000}}` {
		t.Fatalf("summary = %s", got)
	}
}

func TestSummaryEmptySession(t *testing.T) {
	r, _ := newServer(t)
	c := &http.Cookie{Name: session.CookieName, Value: uuid.NewString()}
	if got := summary(t, r, c); got != `{"summary":{"amount":0}}` {
		t.Fatalf("summary = %s", got)
	}
}

func TestSummaryIsExactDecimal(t *testing.T) {
	r, _ := newServer(t)
	c := sessionCookie(t, do(t, r, http.MethodPost, "/transactions", createBody("a", 0.1, "credit")))
	do(t, r, http.MethodPost, "/transactions", createBody("b", 0.2, "credit"), c)

	if got := summary(t, r, c); got != `{"summary":{"amount":0.3}}` {
		t.Fatalf("summary = %s", got)
	}
}

func TestSessionIsolation(t *testing.T) {
	r, _ := newServer(t)

	s1 := sessionCookie(t, do(t, r, http.MethodPost, "/transactions", createBody("first", 100, "credit")))
	s2 := sessionCookie(t, do(t, r, http.MethodPost, "/transactions", createBody("second", 40, "debit")))
	if s1.Value == s2.Value {
		t.Fatal("sessions must differ")
	}

	l1, l2 := list(t, r, s1), list(t, r, s2)
	if len(l1.Transactions) != 1 || l1.Transactions[0].Title != "first" {
		t.Fatalf("session 1 sees %+v", l1.Transactions)
	}
	if len(l2.Transactions) != 1 || l2.Transactions[0].Title != "second" {
		t.Fatalf("session 2 sees %+v", l2.Transactions)
	}

	w := do(t, r, http.MethodGet, "/transactions/"+l1.Transactions[0].ID, nil, s2)
	if w.Body.String() != "{}" {
		t.Fatalf("session 2 fetched session 1 transaction: %s", w.Body.String())
	}

	if got := summary(t, r, s1); got != `{"summary":{"amount":100}}` {
		t.Errorf("session 1 summary = %s", got)
	}
	if got := summary(t, r, s2); got != `{"summary":{"amount":-40}}` {
		t.Errorf("session 2 summary = %s", got)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newServer(t)
	w := do(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"ok":true}` {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/transactions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("allow origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("credentials must be allowed for the session cookie")
	}
}
