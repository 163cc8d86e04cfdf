package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/bookhaven/bookstore-api/internal/book"
	"github.com/bookhaven/bookstore-api/internal/order"
	"github.com/bookhaven/bookstore-api/internal/restock"
	"github.com/bookhaven/bookstore-api/internal/user"
)

//
// ---------- STUBS & FAKES ----------
//

// asUser injects an authenticated identity the way httpx.Auth would.
func asUser(id int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Set("role", role)
		c.Next()
	}
}

type stubBook struct {
	price string
	stock int
}

// stubStore implements order.Store in memory with rollback-on-error.
type stubStore struct {
	mu     sync.Mutex
	books  map[string]stubBook
	orders int64
	items  int
}

func (s *stubStore) InTx(ctx context.Context, fn func(order.Inventory, order.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(map[string]stubBook, len(s.books))
	for k, v := range s.books {
		snap[k] = v
	}
	ordersSnap, itemsSnap := s.orders, s.items

	if err := fn(s, s); err != nil {
		s.books, s.orders, s.items = snap, ordersSnap, itemsSnap
		return err
	}
	return nil
}

func (s *stubStore) ReadStock(_ context.Context, isbns []string) (map[string]order.StockInfo, error) {
	out := map[string]order.StockInfo{}
	for _, isbn := range isbns {
		if b, ok := s.books[isbn]; ok {
			price, err := decimal.NewFromString(b.price)
			if err != nil {
				return nil, err
			}
			out[isbn] = order.StockInfo{Price: price, Stock: b.stock}
		}
	}
	return out, nil
}

func (s *stubStore) DecrementStock(_ context.Context, isbn string, quantity int) error {
	b, ok := s.books[isbn]
	if !ok || b.stock < quantity {
		return fmt.Errorf("%w: %s", order.ErrNegativeStock, isbn)
	}
	b.stock -= quantity
	s.books[isbn] = b
	return nil
}

func (s *stubStore) CreateOrder(_ context.Context, _ int64, _ decimal.Decimal, _ time.Time) (int64, error) {
	s.orders++
	return s.orders, nil
}

func (s *stubStore) AddItem(_ context.Context, _ int64, _ string, _ int, _ decimal.Decimal) error {
	s.items++
	return nil
}

// stubOrderRepo implements order.Repository in memory.
type stubOrderRepo struct {
	history    []order.HistoryRow
	all        []order.AdminOrder
	lastStatus string
	statusID   int64
}

func (s *stubOrderRepo) HistoryByCustomer(_ context.Context, _ int64) ([]order.HistoryRow, error) {
	return s.history, nil
}

func (s *stubOrderRepo) ListAll(_ context.Context) ([]order.AdminOrder, error) {
	return s.all, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	if s.statusID == 0 || s.statusID != id {
		return order.ErrNotFound
	}
	s.lastStatus = status
	return nil
}

// stubRestockRepo implements restock.Repository.
type stubRestockRepo struct {
	placeErr  error
	confirmed map[int64]bool
}

func (s *stubRestockRepo) ListAll(_ context.Context) ([]restock.Order, error) { return nil, nil }

func (s *stubRestockRepo) Place(_ context.Context, _ string) (int64, error) {
	if s.placeErr != nil {
		return 0, s.placeErr
	}
	return 1, nil
}

func (s *stubRestockRepo) Confirm(_ context.Context, id int64) error {
	if !s.confirmed[id] {
		return restock.ErrNotFound
	}
	return nil
}

// stubBookRepo implements book.Repository over a fixed result set.
type stubBookRepo struct {
	books []book.Book
}

func (s *stubBookRepo) Search(_ context.Context, q book.SearchQuery) (*book.SearchResult, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return &book.SearchResult{Books: s.books, Total: len(s.books), Page: 1, Limit: limit, TotalPages: 1}, nil
}

func (s *stubBookRepo) GetByISBN(_ context.Context, isbn string) (*book.Book, error) {
	for i := range s.books {
		if s.books[i].ISBN == isbn {
			return &s.books[i], nil
		}
	}
	return nil, book.ErrNotFound
}

func (s *stubBookRepo) ListAuthors(_ context.Context) ([]book.Author, error) { return nil, nil }

func (s *stubBookRepo) Create(_ context.Context, b *book.Book, _ []string) error {
	for i := range s.books {
		if s.books[i].ISBN == b.ISBN {
			return book.ErrAlreadyExist
		}
	}
	s.books = append(s.books, *b)
	return nil
}

func (s *stubBookRepo) Update(_ context.Context, _ string, _ book.ModifyBookRequest) error {
	return nil
}

func (s *stubBookRepo) Delete(_ context.Context, _ string) (bool, error) { return true, nil }

func (s *stubBookRepo) ListLowStock(_ context.Context) ([]book.Book, error) {
	var out []book.Book
	for _, b := range s.books {
		if b.Stock < b.Threshold {
			out = append(out, b)
		}
	}
	return out, nil
}

// stubUserRepo implements user.Repository with one account.
type stubUserRepo struct {
	u *user.User
}

func (s *stubUserRepo) Create(_ context.Context, username, hash string, p user.Profile) (int64, error) {
	if s.u != nil && s.u.Username == username {
		return 0, user.ErrAlreadyExist
	}
	s.u = &user.User{ID: 1, Username: username, Role: "CUSTOMER", PasswordHash: hash, Email: p.Email}
	return 1, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	if s.u == nil || s.u.ID != id {
		return nil, user.ErrNotFound
	}
	return s.u, nil
}

func (s *stubUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	if s.u == nil || s.u.Username != username {
		return nil, user.ErrNotFound
	}
	return s.u, nil
}

func (s *stubUserRepo) UpdateProfile(_ context.Context, _ int64, _ user.Profile, _ string) error {
	return nil
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestCheckout_HappyPath(t *testing.T) {
	t.Parallel()

	store := &stubStore{books: map[string]stubBook{"9780134190440": {price: "15.00", stock: 5}}}
	svc := order.NewService(store)

	r := gin.New()
	r.POST("/orders/checkout", asUser(7, "CUSTOMER"), checkoutHandler(svc))

	body := `{"cardNumber":"4111111111111111","cartItems":[{"isbn":"9780134190440","quantity":2}]}`
	w := doJSON(r, http.MethodPost, "/orders/checkout", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		OrderID int64  `json:"order_id"`
		Total   string `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.OrderID == 0 || resp.Total != "30.00" {
		t.Fatalf("order_id=%d total=%s, expected order_id>0 total=30.00", resp.OrderID, resp.Total)
	}
	if got := store.books["9780134190440"].stock; got != 3 {
		t.Fatalf("stock=%d, expected 3", got)
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	t.Parallel()

	store := &stubStore{books: map[string]stubBook{"X": {price: "10.00", stock: 1}}}
	svc := order.NewService(store)

	r := gin.New()
	r.POST("/orders/checkout", asUser(7, "CUSTOMER"), checkoutHandler(svc))

	body := `{"cardNumber":"4111111111111111","cartItems":[{"isbn":"X","quantity":2}]}`
	w := doJSON(r, http.MethodPost, "/orders/checkout", body)

	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s (expected 409)", w.Code, w.Body.String())
	}
	if got := store.books["X"].stock; got != 1 {
		t.Fatalf("stock=%d changed on a failed checkout", got)
	}
	if store.orders != 0 {
		t.Fatalf("order row created on a failed checkout")
	}
}

func TestCheckout_InvalidCard(t *testing.T) {
	t.Parallel()

	store := &stubStore{books: map[string]stubBook{"X": {price: "10.00", stock: 5}}}
	svc := order.NewService(store)

	r := gin.New()
	r.POST("/orders/checkout", asUser(7, "CUSTOMER"), checkoutHandler(svc))

	body := `{"cardNumber":"123","cartItems":[{"isbn":"X","quantity":1}]}`
	w := doJSON(r, http.MethodPost, "/orders/checkout", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	t.Parallel()

	svc := order.NewService(&stubStore{})
	r := gin.New()
	r.POST("/orders/checkout", asUser(7, "CUSTOMER"), checkoutHandler(svc))

	w := doJSON(r, http.MethodPost, "/orders/checkout", `{"cardNumber":"4111111111111111","cartItems":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func TestCheckout_UnknownBook(t *testing.T) {
	t.Parallel()

	svc := order.NewService(&stubStore{books: map[string]stubBook{}})
	r := gin.New()
	r.POST("/orders/checkout", asUser(7, "CUSTOMER"), checkoutHandler(svc))

	w := doJSON(r, http.MethodPost, "/orders/checkout",
		`{"cardNumber":"4111111111111111","cartItems":[{"isbn":"GHOST","quantity":1}]}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestOrderHistory_OK(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{history: []order.HistoryRow{{
		OrderID: 3, Status: "Pending", Total: "20.00",
		ISBN: "X", Title: "Some Book", Quantity: 2, Price: "10.00",
	}}}

	r := gin.New()
	r.GET("/orders/history", asUser(7, "CUSTOMER"), orderHistoryHandler(repo))

	w := doJSON(r, http.MethodGet, "/orders/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var rows []order.HistoryRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(rows) != 1 || rows[0].OrderID != 3 {
		t.Fatalf("unexpected history: %+v", rows)
	}
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{statusID: 5}
	r := gin.New()
	r.PUT("/orders/admin/status/:id", asUser(1, "ADMIN"), updateOrderStatusHandler(repo))

	w := doJSON(r, http.MethodPut, "/orders/admin/status/5", `{"status":"wtf"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func TestUpdateOrderStatus_OK(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{statusID: 5}
	r := gin.New()
	r.PUT("/orders/admin/status/:id", asUser(1, "ADMIN"), updateOrderStatusHandler(repo))

	w := doJSON(r, http.MethodPut, "/orders/admin/status/5", `{"status":"Shipped"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.lastStatus != "Shipped" {
		t.Fatalf("status=%s, expected Shipped", repo.lastStatus)
	}
}

func TestSearchBooks_OK(t *testing.T) {
	t.Parallel()

	repo := &stubBookRepo{books: []book.Book{{ISBN: "X", Title: "Some Book", Price: "10.00", Stock: 4}}}
	r := gin.New()
	r.GET("/books/search", searchBooksHandler(repo))

	w := doJSON(r, http.MethodGet, "/books/search?title=some", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var res book.SearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if res.Total != 1 || len(res.Books) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAddBook_DuplicateISBN(t *testing.T) {
	t.Parallel()

	repo := &stubBookRepo{books: []book.Book{{ISBN: "X", Title: "Some Book", Price: "10.00"}}}
	r := gin.New()
	r.POST("/books/add", asUser(1, "ADMIN"), addBookHandler(repo))

	w := doJSON(r, http.MethodPost, "/books/add", `{"isbn":"X","title":"Again","price":"9.99"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s (expected 409)", w.Code, w.Body.String())
	}
}

func TestPlacePublisherOrder_StockSufficient(t *testing.T) {
	t.Parallel()

	repo := &stubRestockRepo{placeErr: restock.ErrStockSufficient}
	r := gin.New()
	r.POST("/orders/admin/publisher-order", asUser(1, "ADMIN"), placePublisherOrderHandler(repo))

	w := doJSON(r, http.MethodPost, "/orders/admin/publisher-order", `{"isbn":"X"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func TestConfirmPublisherOrder_NotFound(t *testing.T) {
	t.Parallel()

	repo := &stubRestockRepo{confirmed: map[int64]bool{}}
	r := gin.New()
	r.PUT("/orders/admin/publisher-order/:id/confirm", asUser(1, "ADMIN"), confirmPublisherOrderHandler(repo))

	w := doJSON(r, http.MethodPut, "/orders/admin/publisher-order/9/confirm", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	hash, err := user.HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	repo := &stubUserRepo{u: &user.User{ID: 1, Username: "jdoe", Role: "CUSTOMER", PasswordHash: hash}}

	r := gin.New()
	r.POST("/auth/login", loginHandler(repo, "test-secret"))

	w := doJSON(r, http.MethodPost, "/auth/login", `{"username":"jdoe","password":"s3cret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("no token in response: %s", w.Body.String())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	hash, err := user.HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	repo := &stubUserRepo{u: &user.User{ID: 1, Username: "jdoe", Role: "CUSTOMER", PasswordHash: hash}}

	r := gin.New()
	r.POST("/auth/login", loginHandler(repo, "test-secret"))

	w := doJSON(r, http.MethodPost, "/auth/login", `{"username":"jdoe","password":"nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}
