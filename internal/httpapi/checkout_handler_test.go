package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/checkout"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/payment"
)

type fakeCheckout struct {
	resp    *checkout.Response
	err     error
	lastReq checkout.Request
}

func (f *fakeCheckout) Checkout(ctx context.Context, req checkout.Request) (*checkout.Response, error) {
	f.lastReq = req
	return f.resp, f.err
}

type stubOrderRepo struct {
	order  *order.Order
	orders []order.Order
	err    error
}

func (f *stubOrderRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	return nil
}

func (f *stubOrderRepo) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	return f.order, f.err
}

func (f *stubOrderRepo) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return f.orders, f.err
}

func newTestRouter(svc *fakeCheckout, repo order.Repository) http.Handler {
	h := NewHandler(svc, repo, log.New(io.Discard, "", 0))
	return NewRouter(h)
}

func checkoutBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(checkout.Request{
		AddressID:   "addr-a",
		PaymentType: payment.TypeCashOnDelivery,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestCheckoutHandler_Success(t *testing.T) {
	svc := &fakeCheckout{resp: &checkout.Response{
		OrdersCreated: 1,
		OrderIDs:      []string{"o-1"},
		GrandTotal:    90,
		PointsEarned:  900,
	}}
	router := newTestRouter(svc, &stubOrderRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", checkoutBody(t))
	req.Header.Set(HeaderUserID, "u1")
	req.Header.Set(HeaderIdempotencyKey, "key-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp checkout.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.OrdersCreated)
	require.Equal(t, []string{"o-1"}, resp.OrderIDs)

	require.Equal(t, "u1", svc.lastReq.UserID)
	require.Equal(t, "key-1", svc.lastReq.IdempotencyKey)
}

func TestCheckoutHandler_MissingUserHeader(t *testing.T) {
	router := newTestRouter(&fakeCheckout{}, &stubOrderRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", checkoutBody(t))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCheckoutHandler_InvalidJSON(t *testing.T) {
	router := newTestRouter(&fakeCheckout{}, &stubOrderRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString("{nope"))
	req.Header.Set(HeaderUserID, "u1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheckoutHandler_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		kind checkout.Kind
		want int
	}{
		{checkout.KindUnauthenticated, http.StatusUnauthorized},
		{checkout.KindVoucherNotFound, http.StatusNotFound},
		{checkout.KindVoucherExpired, http.StatusBadRequest},
		{checkout.KindVoucherExhausted, http.StatusBadRequest},
		{checkout.KindEmptyCart, http.StatusBadRequest},
		{checkout.KindInvalidAddress, http.StatusBadRequest},
		{checkout.KindInsufficientStock, http.StatusConflict},
		{checkout.KindConflict, http.StatusConflict},
		{checkout.KindPersistenceFailure, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		svc := &fakeCheckout{err: checkout.E(tc.kind, "boom")}
		router := newTestRouter(svc, &stubOrderRepo{})

		req := httptest.NewRequest(http.MethodPost, "/api/checkout", checkoutBody(t))
		req.Header.Set(HeaderUserID, "u1")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, tc.want, rr.Code, "kind %s", tc.kind)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, string(tc.kind), body["error"])
	}
}

func TestCheckoutHandler_InternalDetailRedacted(t *testing.T) {
	svc := &fakeCheckout{err: errors.New("pq: connection reset")}
	router := newTestRouter(svc, &stubOrderRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", checkoutBody(t))
	req.Header.Set(HeaderUserID, "u1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "settlement could not be completed", body["detail"])
	require.NotContains(t, body["detail"], "connection reset")
}

func TestGetOrderHandler(t *testing.T) {
	repo := &stubOrderRepo{order: &order.Order{ID: "o-1", UserID: "u1", TotalAmount: 90}}
	router := newTestRouter(&fakeCheckout{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/o-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got order.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, "o-1", got.ID)
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	router := newTestRouter(&fakeCheckout{}, &stubOrderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListOrdersHandler(t *testing.T) {
	repo := &stubOrderRepo{orders: []order.Order{{ID: "o-1"}, {ID: "o-2"}}}
	router := newTestRouter(&fakeCheckout{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1/orders", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got []order.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(&fakeCheckout{}, &stubOrderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}
