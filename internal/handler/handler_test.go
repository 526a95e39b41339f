package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shwekart/preorder-backend/internal/domain/customer"
	"github.com/shwekart/preorder-backend/internal/domain/exchange"
	"github.com/shwekart/preorder-backend/internal/domain/merchant"
	"github.com/shwekart/preorder-backend/internal/domain/order"
	"github.com/shwekart/preorder-backend/internal/repository"
)

type memMerchants struct {
	merchants map[string]*merchant.Merchant
}

func (m *memMerchants) GetByID(_ context.Context, id string) (*merchant.Merchant, error) {
	mc, ok := m.merchants[id]
	if !ok {
		return nil, merchant.ErrNotFound
	}
	return mc, nil
}

type memCustomers struct {
	customers map[string]*customer.Customer
}

func (m *memCustomers) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return c, nil
}

type memRates struct {
	values map[exchange.RateType]decimal.Decimal
}

func (m *memRates) ActiveRate(_ context.Context, merchantID string, typ exchange.RateType, _ time.Time) (*exchange.Rate, error) {
	v, ok := m.values[typ]
	if !ok {
		return nil, exchange.ErrNoActiveRate
	}
	return &exchange.Rate{MerchantID: merchantID, Type: typ, Value: v}, nil
}

func (m *memRates) Upsert(_ context.Context, rate *exchange.Rate) error {
	m.values[rate.Type] = rate.Value
	return nil
}

type memOrders struct {
	orders         map[string]*order.Order
	items          map[string][]order.OrderItem
	customerOrders map[string]*order.CustomerOrder
	coByOrder      map[string][]string
	coItems        map[string][]order.CustomerOrderItem
}

func newMemOrders() *memOrders {
	return &memOrders{
		orders:         make(map[string]*order.Order),
		items:          make(map[string][]order.OrderItem),
		customerOrders: make(map[string]*order.CustomerOrder),
		coByOrder:      make(map[string][]string),
		coItems:        make(map[string][]order.CustomerOrderItem),
	}
}

func (m *memOrders) CreateOrder(_ context.Context, o *order.Order) error {
	cp := *o
	cp.Items = nil
	cp.CustomerOrders = nil
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrders) CreateItems(_ context.Context, items []order.OrderItem) error {
	for _, item := range items {
		m.items[item.OrderID] = append(m.items[item.OrderID], item)
	}
	return nil
}

func (m *memOrders) CreateCustomerOrder(_ context.Context, co *order.CustomerOrder) error {
	cp := *co
	cp.Items = nil
	m.customerOrders[co.ID] = &cp
	m.coByOrder[co.OrderID] = append(m.coByOrder[co.OrderID], co.ID)
	return nil
}

func (m *memOrders) CreateCustomerOrderItems(_ context.Context, items []order.CustomerOrderItem) error {
	for _, item := range items {
		m.coItems[item.CustomerOrderID] = append(m.coItems[item.CustomerOrderID], item)
	}
	return nil
}

func (m *memOrders) UpdateTotals(_ context.Context, o *order.Order) error {
	cp := *o
	cp.Items = nil
	cp.CustomerOrders = nil
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrders) GetOrder(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) GetGraph(ctx context.Context, id string) (*order.Order, error) {
	o, err := m.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = append([]order.OrderItem(nil), m.items[id]...)
	for _, coID := range m.coByOrder[id] {
		co := *m.customerOrders[coID]
		co.Items = append([]order.CustomerOrderItem(nil), m.coItems[coID]...)
		o.CustomerOrders = append(o.CustomerOrders, co)
	}
	return o, nil
}

func (m *memOrders) ListByMerchant(_ context.Context, merchantID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.orders {
		if o.MerchantID == merchantID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) UpdateArrival(_ context.Context, orderID string, status order.ArrivalStatus) error {
	o, ok := m.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.ArrivalStatus = status
	return nil
}

func (m *memOrders) GetCustomerOrder(_ context.Context, id string) (*order.CustomerOrder, error) {
	co, ok := m.customerOrders[id]
	if !ok {
		return nil, repository.ErrCustomerOrderNotFound
	}
	cp := *co
	return &cp, nil
}

func (m *memOrders) ListCustomerOrders(_ context.Context, orderID string) ([]order.CustomerOrder, error) {
	var out []order.CustomerOrder
	for _, coID := range m.coByOrder[orderID] {
		out = append(out, *m.customerOrders[coID])
	}
	return out, nil
}

func (m *memOrders) UpdateCustomerOrderPayment(_ context.Context, co *order.CustomerOrder) error {
	stored, ok := m.customerOrders[co.ID]
	if !ok {
		return repository.ErrCustomerOrderNotFound
	}
	stored.TotalPaid = co.TotalPaid
	stored.RemainingAmount = co.RemainingAmount
	stored.PaymentStatus = co.PaymentStatus
	return nil
}

func (m *memOrders) UpdateOrderPayment(_ context.Context, o *order.Order) error {
	stored, ok := m.orders[o.ID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	stored.TotalBillable = o.TotalBillable
	stored.PaidAmount = o.PaidAmount
	stored.RemainingAmount = o.RemainingAmount
	stored.PaymentStatus = o.PaymentStatus
	return nil
}

// passthroughTx hands the same stores to fn without transactional isolation.
// Handler tests only assert response mapping; rollback behavior is covered by
// the order service tests.
type passthroughTx struct {
	stores order.Stores
}

func (p *passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context, s order.Stores) error) error {
	return fn(ctx, p.stores)
}

func setupHandler(t *testing.T) http.Handler {
	t.Helper()

	stores := order.Stores{
		Merchants: &memMerchants{merchants: map[string]*merchant.Merchant{
			"m-demo": {ID: "m-demo", Name: "Shwe Kart Demo Shop", BaseCurrency: "MMK", PurchaseCurrency: "THB"},
		}},
		Customers: &memCustomers{customers: map[string]*customer.Customer{
			"c-aye": {ID: "c-aye", MerchantID: "m-demo", Name: "Aye Aye"},
		}},
		Rates: &memRates{values: map[exchange.RateType]decimal.Decimal{
			exchange.RateBuy:  decimal.NewFromInt(650),
			exchange.RateSell: decimal.NewFromInt(670),
		}},
		Orders: newMemOrders(),
	}

	svc := order.NewService(&passthroughTx{stores: stores}, stores)
	return NewHandler(svc).Routes()
}

func createOrderBody(t *testing.T, mutate func(req *createOrderReq)) []byte {
	t.Helper()

	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	req := createOrderReq{
		MerchantID: "m-demo",
		Code:       "ORD-2026-001",
		OrderDate:  "2026-08-30",
		Lines: []lineReq{
			{
				ProductName:       "iPhone 15 Pro",
				Quantity:          1,
				UnitPurchasePrice: price("100"),
				UnitShippingPrice: price("10"),
				Discount:          &discountReq{Type: "percent", Value: price("10")},
				UnitSellingPrice:  price("150"),
			},
		},
		CustomerOrders: []customerOrderReq{
			{CustomerID: "c-aye", Allocations: []allocationReq{{LineIndex: 0, Quantity: 1}}},
		},
	}
	if mutate != nil {
		mutate(&req)
	}

	body, err := json.Marshal(req)
	require.NoError(t, err)
	return body
}

func TestCreateOrder(t *testing.T) {
	router := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(createOrderBody(t, nil)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp orderResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "m-demo", resp.MerchantID)
	assert.Equal(t, "2026-08-30", resp.OrderDate)
	assert.Equal(t, "NOT_ARRIVED", resp.ArrivalStatus)
	assert.True(t, decimal.NewFromInt(7150).Equal(resp.TotalDiscount), "got %s", resp.TotalDiscount)
	assert.True(t, decimal.NewFromInt(64350).Equal(resp.TotalCost), "got %s", resp.TotalCost)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "PERCENT", resp.Items[0].DiscountType)
	require.Len(t, resp.CustomerOrders, 1)
	assert.Equal(t, "UNPAID", resp.CustomerOrders[0].PaymentStatus)
}

func TestCreateOrder_UnknownDiscountType(t *testing.T) {
	router := setupHandler(t)

	body := createOrderBody(t, func(req *createOrderReq) {
		req.Lines[0].Discount = &discountReq{Type: "COUPON", Value: decimal.NewFromInt(5)}
	})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_NegativeDiscountValue(t *testing.T) {
	router := setupHandler(t)

	body := createOrderBody(t, func(req *createOrderReq) {
		req.Lines[0].Discount = &discountReq{Type: "PERCENT", Value: decimal.NewFromInt(-5)}
	})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateOrder_NegativePriceOverride(t *testing.T) {
	router := setupHandler(t)

	override := decimal.NewFromInt(-50)
	body := createOrderBody(t, func(req *createOrderReq) {
		req.CustomerOrders[0].Allocations[0].SellingPriceOverride = &override
	})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateOrder_UnknownMerchant(t *testing.T) {
	router := setupHandler(t)

	body := createOrderBody(t, func(req *createOrderReq) {
		req.MerchantID = "m-other"
	})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrder_StockExceeded(t *testing.T) {
	router := setupHandler(t)

	body := createOrderBody(t, func(req *createOrderReq) {
		req.CustomerOrders[0].Allocations[0].Quantity = 5
	})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateOrder_BadBody(t *testing.T) {
	router := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	router := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/orders/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrders_RequiresMerchantID(t *testing.T) {
	router := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordPayment(t *testing.T) {
	router := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(createOrderBody(t, nil)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created orderResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.Len(t, created.CustomerOrders, 1)

	body, err := json.Marshal(paymentReq{Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost,
		"/customer-orders/"+created.CustomerOrders[0].ID+"/payments", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var paid orderResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&paid))
	assert.Equal(t, "PARTIAL", paid.PaymentStatus)
	assert.True(t, decimal.NewFromInt(50).Equal(paid.PaidAmount))
	assert.Equal(t, "PARTIAL", paid.CustomerOrders[0].PaymentStatus)
}

func TestRecordPayment_InvalidAmount(t *testing.T) {
	router := setupHandler(t)

	body, err := json.Marshal(paymentReq{Amount: decimal.NewFromInt(-10)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/customer-orders/whatever/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMarkArrived(t *testing.T) {
	router := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(createOrderBody(t, nil)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created orderResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	req = httptest.NewRequest(http.MethodPost, "/orders/"+created.ID+"/arrival", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var arrived orderResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&arrived))
	assert.Equal(t, "ARRIVED", arrived.ArrivalStatus)
}
