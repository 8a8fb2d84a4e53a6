package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/checkout"
	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/order"
)

// HeaderUserID carries the authenticated user id, resolved by the gateway.
const HeaderUserID = "X-User-Id"

// HeaderIdempotencyKey lets clients retry a checkout safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// CheckoutService is what the handler needs from the settlement engine.
type CheckoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (*checkout.Response, error)
}

type Handler struct {
	svc    CheckoutService
	orders order.Repository
	logger *log.Logger
}

func NewHandler(svc CheckoutService, orders order.Repository, logger *log.Logger) *Handler {
	return &Handler{svc: svc, orders: orders, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing required header: "+HeaderUserID)
		return
	}

	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.UserID = userID
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))

	resp, err := h.svc.Checkout(r.Context(), req)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing orderId")
		return
	}

	o, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		h.logger.Printf("get order %s: %v", orderID, err)
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) ListOrdersByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Printf("list orders for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// writeCheckoutError maps a checkout failure kind to an HTTP status. Internal
// causes stay in the log; the client only sees the kind and its message.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, err error) {
	kind := checkout.KindOf(err)

	status := http.StatusBadRequest
	switch kind {
	case checkout.KindUnauthenticated:
		status = http.StatusUnauthorized
	case checkout.KindVoucherNotFound:
		status = http.StatusNotFound
	case checkout.KindConflict, checkout.KindInsufficientStock:
		status = http.StatusConflict
	case checkout.KindPersistenceFailure:
		status = http.StatusInternalServerError
	}

	detail := "checkout failed"
	var ce *checkout.Error
	if errors.As(err, &ce) {
		detail = ce.Message()
	}
	if status == http.StatusInternalServerError {
		h.logger.Printf("checkout failed: %v", err)
		detail = "settlement could not be completed"
	}

	writeJSON(w, status, map[string]string{
		"error":  string(kind),
		"detail": detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
