package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/shwekart/preorder-backend/internal/domain/order"
)

// Handler serves the HTTP surface of the order engine. Business logic lives
// in the order service; the handler only decodes, delegates, and maps errors.
type Handler struct {
	orders *order.Service
}

// NewHandler constructs a Handler around the order service.
func NewHandler(orders *order.Service) *Handler {
	return &Handler{orders: orders}
}

// Routes mounts every API route on a fresh chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/{orderID}", h.getOrder)
		r.Post("/{orderID}/arrival", h.markArrived)
	})
	r.Post("/customer-orders/{customerOrderID}/payments", h.recordPayment)
	return r
}

type errorResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResp{Code: status, Message: msg})
}
