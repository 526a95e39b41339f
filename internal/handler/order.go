package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/shwekart/preorder-backend/internal/domain/customer"
	"github.com/shwekart/preorder-backend/internal/domain/exchange"
	"github.com/shwekart/preorder-backend/internal/domain/merchant"
	"github.com/shwekart/preorder-backend/internal/domain/order"
	"github.com/shwekart/preorder-backend/internal/repository"
)

// createOrder handles POST /orders: the full order creation flow.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MerchantID == "" {
		writeError(w, r, http.StatusBadRequest, "merchant_id required")
		return
	}

	domainReq, err := req.toDomain()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.CreateFullOrder(r.Context(), domainReq)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toOrderResp(o))
}

// getOrder handles GET /orders/{orderID}: reload one full graph.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResp(o))
}

// listOrders handles GET /orders?merchant_id=.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	merchantID := r.URL.Query().Get("merchant_id")
	if merchantID == "" {
		writeError(w, r, http.StatusBadRequest, "merchant_id required")
		return
	}

	list, err := h.orders.ListOrders(r.Context(), merchantID)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	resp := make([]orderResp, len(list))
	for i := range list {
		resp[i] = toOrderResp(&list[i])
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// markArrived handles POST /orders/{orderID}/arrival.
func (h *Handler) markArrived(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.MarkArrived(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResp(o))
}

// recordPayment handles POST /customer-orders/{customerOrderID}/payments.
func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.RecordCustomerPayment(r.Context(), chi.URLParam(r, "customerOrderID"), req.Amount)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResp(o))
}

// writeOrderError maps domain errors onto HTTP statuses: absent entities are
// 404, caller-input faults are 422, everything else is 500.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, merchant.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrCustomerOrderNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, order.ErrEmptyLines),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrNegativePrice),
		errors.Is(err, order.ErrNegativeDiscount),
		errors.Is(err, order.ErrInvalidAmount):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var (
		missingRate   *exchange.MissingRateError
		stockExceeded *order.StockExceededError
		lineIndex     *order.LineIndexError
		unknownType   *order.UnknownDiscountTypeError
	)
	switch {
	case errors.As(err, &missingRate),
		errors.As(err, &stockExceeded),
		errors.As(err, &lineIndex),
		errors.As(err, &unknownType):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		zctx.From(r.Context()).Error("order request failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
