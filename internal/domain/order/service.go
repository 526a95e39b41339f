package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shwekart/preorder-backend/internal/domain/exchange"
)

// Sentinel errors for malformed service requests.
var (
	ErrEmptyLines    = errors.New("lines required")
	ErrInvalidAmount = errors.New("payment amount must be greater than 0")
)

// LineRequest is one purchased product line in a creation request.
type LineRequest struct {
	ProductName       string
	Variant           string
	Quantity          int
	UnitPurchasePrice decimal.Decimal
	UnitShippingPrice decimal.Decimal
	Discount          Discount
	UnitSellingPrice  decimal.Decimal
}

// CreateOrderRequest is the input for the full order creation flow.
type CreateOrderRequest struct {
	MerchantID     string
	Code           string
	OrderDate      time.Time
	Lines          []LineRequest
	CustomerOrders []CustomerOrderRequest
}

// Service runs the order flows. Every write path executes inside a single
// transaction supplied by the TxRunner; reads after commit use the pool-bound
// stores.
type Service struct {
	tx     TxRunner
	stores Stores
	now    func() time.Time
}

// NewService creates an order Service.
func NewService(tx TxRunner, stores Stores) *Service {
	return &Service{tx: tx, stores: stores, now: time.Now}
}

// CreateFullOrder executes the whole creation sequence atomically:
// validate merchant, resolve rates, create the order header, price and
// persist each line, validate stock allocation, materialize customer orders
// with their allocations, aggregate totals, persist them, and reload the
// full graph after commit. Any failure rolls back every write.
func (s *Service) CreateFullOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = s.now()
	}

	orderID := uuid.New().String()

	err := s.tx.RunInTx(ctx, func(ctx context.Context, st Stores) error {
		m, err := st.Merchants.GetByID(ctx, req.MerchantID)
		if err != nil {
			return errors.Wrap(err, "validate merchant")
		}

		rates, err := exchange.NewResolver(st.Rates).Resolve(ctx, m.ID, orderDate)
		if err != nil {
			return errors.Wrap(err, "resolve rates")
		}

		o := &Order{
			ID:            orderID,
			MerchantID:    m.ID,
			Code:          req.Code,
			OrderDate:     orderDate,
			ArrivalStatus: NotArrived,
			BuyRate:       rates.Buy,
			SellRate:      rates.Sell,
			PaymentStatus: PaymentUnpaid,
		}
		zeroTotals(o)
		if err := st.Orders.CreateOrder(ctx, o); err != nil {
			return errors.Wrap(err, "create order header")
		}

		items, err := buildItems(orderID, req.Lines, *rates)
		if err != nil {
			return err
		}
		if err := st.Orders.CreateItems(ctx, items); err != nil {
			return errors.Wrap(err, "create order items")
		}

		if err := ValidateStockAllocation(items, req.CustomerOrders); err != nil {
			return err
		}

		customerOrders := make([]CustomerOrder, 0, len(req.CustomerOrders))
		for _, coReq := range req.CustomerOrders {
			c, err := st.Customers.GetByID(ctx, coReq.CustomerID)
			if err != nil {
				return errors.Wrapf(err, "validate customer %s", coReq.CustomerID)
			}

			co := AllocateCustomerOrder(items, coReq)
			co.ID = uuid.New().String()
			co.OrderID = orderID
			co.CustomerID = c.ID
			for i := range co.Items {
				co.Items[i].ID = uuid.New().String()
				co.Items[i].CustomerOrderID = co.ID
			}

			if err := st.Orders.CreateCustomerOrder(ctx, &co); err != nil {
				return errors.Wrapf(err, "create customer order for %s", c.ID)
			}
			if err := st.Orders.CreateCustomerOrderItems(ctx, co.Items); err != nil {
				return errors.Wrapf(err, "create allocations for %s", c.ID)
			}

			customerOrders = append(customerOrders, co)
		}

		Aggregate(o, items, customerOrders)
		if err := st.Orders.UpdateTotals(ctx, o); err != nil {
			return errors.Wrap(err, "persist totals")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	graph, err := s.stores.Orders.GetGraph(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "reload order graph")
	}
	return graph, nil
}

// GetOrder reloads one full order graph.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.stores.Orders.GetGraph(ctx, orderID)
}

// ListOrders returns a merchant's order headers.
func (s *Service) ListOrders(ctx context.Context, merchantID string) ([]Order, error) {
	if _, err := s.stores.Merchants.GetByID(ctx, merchantID); err != nil {
		return nil, err
	}
	return s.stores.Orders.ListByMerchant(ctx, merchantID)
}

// MarkArrived records the arrival of an order's goods.
func (s *Service) MarkArrived(ctx context.Context, orderID string) (*Order, error) {
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st Stores) error {
		if _, err := st.Orders.GetOrder(ctx, orderID); err != nil {
			return err
		}
		return st.Orders.UpdateArrival(ctx, orderID, Arrived)
	})
	if err != nil {
		return nil, err
	}
	return s.stores.Orders.GetGraph(ctx, orderID)
}

// RecordCustomerPayment applies a payment to a customer order and recomputes
// the parent order's payment rollup, all in one transaction.
func (s *Service) RecordCustomerPayment(ctx context.Context, customerOrderID string, amount decimal.Decimal) (*Order, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	var orderID string
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st Stores) error {
		co, err := st.Orders.GetCustomerOrder(ctx, customerOrderID)
		if err != nil {
			return err
		}
		orderID = co.OrderID

		co.TotalPaid = co.TotalPaid.Add(amount).Round(4)
		co.RemainingAmount = co.TotalBillable.Sub(co.TotalPaid)
		co.PaymentStatus = PaymentStatusFor(co.TotalBillable, co.TotalPaid)
		if err := st.Orders.UpdateCustomerOrderPayment(ctx, co); err != nil {
			return errors.Wrap(err, "update customer order payment")
		}

		o, err := st.Orders.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		customerOrders, err := st.Orders.ListCustomerOrders(ctx, orderID)
		if err != nil {
			return errors.Wrap(err, "list customer orders")
		}

		billable, paid := SumPayments(customerOrders)
		o.TotalBillable = billable
		o.PaidAmount = paid
		o.RemainingAmount = billable.Sub(paid)
		o.PaymentStatus = PaymentStatusFor(billable, paid)
		return errors.Wrap(st.Orders.UpdateOrderPayment(ctx, o), "update order payment")
	})
	if err != nil {
		return nil, err
	}
	return s.stores.Orders.GetGraph(ctx, orderID)
}

// buildItems prices every requested line under the frozen rate snapshot.
func buildItems(orderID string, lines []LineRequest, rates exchange.Snapshot) ([]OrderItem, error) {
	items := make([]OrderItem, len(lines))
	for i, line := range lines {
		cost, err := CostLine(LineInput{
			Quantity:          line.Quantity,
			UnitPurchasePrice: line.UnitPurchasePrice,
			UnitShippingPrice: line.UnitShippingPrice,
			Discount:          line.Discount,
			UnitSellingPrice:  line.UnitSellingPrice,
		}, rates)
		if err != nil {
			return nil, errors.Wrapf(err, "price line %d (%s)", i, line.ProductName)
		}
		cost = cost.Rounded()

		items[i] = OrderItem{
			ID:                 uuid.New().String(),
			OrderID:            orderID,
			Index:              i,
			ProductName:        line.ProductName,
			Variant:            line.Variant,
			Quantity:           line.Quantity,
			UnitPurchasePrice:  line.UnitPurchasePrice,
			UnitShippingPrice:  line.UnitShippingPrice,
			Discount:           line.Discount,
			UnitSellingPrice:   line.UnitSellingPrice,
			PurchaseTotal:      cost.PurchaseTotal,
			PurchaseTotalBase:  cost.PurchaseTotalBase,
			ShippingBase:       cost.ShippingBase,
			CostBeforeDiscount: cost.CostBeforeDiscount,
			DiscountAmount:     cost.DiscountAmount,
			FinalCost:          cost.FinalCost,
			SellingTotal:       cost.SellingTotal,
			SellingTotalBase:   cost.SellingTotalBase,
			Profit:             cost.Profit,
			ProfitBase:         cost.ProfitBase,
			BuyRate:            rates.Buy,
			SellRate:           rates.Sell,
		}
	}
	return items, nil
}

// zeroTotals initializes every aggregate on a fresh order header.
func zeroTotals(o *Order) {
	o.TotalPurchase = decimal.Zero
	o.TotalShipping = decimal.Zero
	o.TotalCostBeforeDiscount = decimal.Zero
	o.TotalDiscount = decimal.Zero
	o.TotalCost = decimal.Zero
	o.TotalSelling = decimal.Zero
	o.TotalProfit = decimal.Zero
	o.TotalBillable = decimal.Zero
	o.PaidAmount = decimal.Zero
	o.RemainingAmount = decimal.Zero
}
