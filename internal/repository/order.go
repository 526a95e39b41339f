package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/shwekart/preorder-backend/internal/domain/order"
)

// ErrOrderNotFound is returned when a requested order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrCustomerOrderNotFound is returned when a requested customer order does
// not exist.
var ErrCustomerOrderNotFound = errors.New("customer order not found")

const (
	createOrderSQL = `INSERT INTO orders (
		id, merchant_id, code, order_date, arrival_status, buy_rate, sell_rate,
		total_purchase, total_shipping, total_cost_before_discount, total_discount,
		total_cost, total_selling, total_profit,
		total_billable, paid_amount, remaining_amount, payment_status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	createOrderItemSQL = `INSERT INTO order_items (
		id, order_id, line_index, product_name, variant, quantity,
		unit_purchase_price, unit_shipping_price, discount_type, discount_value,
		unit_selling_price, purchase_total, purchase_total_base, shipping_base,
		cost_before_discount, discount_amount, final_cost,
		selling_total, selling_total_base, profit, profit_base, buy_rate, sell_rate
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20, $21, $22, $23)`

	createCustomerOrderSQL = `INSERT INTO customer_orders (
		id, order_id, customer_id, total_billable, total_paid, remaining_amount, payment_status
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	createCustomerOrderItemSQL = `INSERT INTO customer_order_items (
		id, customer_order_id, order_item_id, line_index, quantity,
		selling_price, selling_total, allocated_cost, profit
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateOrderTotalsSQL = `UPDATE orders SET
		total_purchase = $2, total_shipping = $3, total_cost_before_discount = $4,
		total_discount = $5, total_cost = $6, total_selling = $7, total_profit = $8,
		total_billable = $9, paid_amount = $10, remaining_amount = $11, payment_status = $12
	WHERE id = $1`

	getOrderSQL = `SELECT id, merchant_id, code, order_date, arrival_status, buy_rate, sell_rate,
		total_purchase, total_shipping, total_cost_before_discount, total_discount,
		total_cost, total_selling, total_profit,
		total_billable, paid_amount, remaining_amount, payment_status, created_at
	FROM orders WHERE id = $1`

	listOrdersByMerchantSQL = `SELECT id, merchant_id, code, order_date, arrival_status, buy_rate, sell_rate,
		total_purchase, total_shipping, total_cost_before_discount, total_discount,
		total_cost, total_selling, total_profit,
		total_billable, paid_amount, remaining_amount, payment_status, created_at
	FROM orders WHERE merchant_id = $1 ORDER BY order_date DESC, created_at DESC`

	listOrderItemsSQL = `SELECT id, order_id, line_index, product_name, variant, quantity,
		unit_purchase_price, unit_shipping_price, discount_type, discount_value,
		unit_selling_price, purchase_total, purchase_total_base, shipping_base,
		cost_before_discount, discount_amount, final_cost,
		selling_total, selling_total_base, profit, profit_base, buy_rate, sell_rate
	FROM order_items WHERE order_id = $1 ORDER BY line_index`

	getCustomerOrderSQL = `SELECT id, order_id, customer_id, total_billable, total_paid, remaining_amount, payment_status
	FROM customer_orders WHERE id = $1`

	listCustomerOrdersSQL = `SELECT id, order_id, customer_id, total_billable, total_paid, remaining_amount, payment_status
	FROM customer_orders WHERE order_id = $1 ORDER BY id`

	listCustomerOrderItemsSQL = `SELECT coi.id, coi.customer_order_id, coi.order_item_id, coi.line_index, coi.quantity,
		coi.selling_price, coi.selling_total, coi.allocated_cost, coi.profit
	FROM customer_order_items coi
	JOIN customer_orders co ON co.id = coi.customer_order_id
	WHERE co.order_id = $1 ORDER BY coi.customer_order_id, coi.line_index`

	updateArrivalSQL = `UPDATE orders SET arrival_status = $2 WHERE id = $1`

	updateCustomerOrderPaymentSQL = `UPDATE customer_orders SET
		total_paid = $2, remaining_amount = $3, payment_status = $4
	WHERE id = $1`

	updateOrderPaymentSQL = `UPDATE orders SET
		total_billable = $2, paid_amount = $3, remaining_amount = $4, payment_status = $5
	WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	db Querier
}

// NewOrderRepository returns an OrderRepository bound to the given querier.
func NewOrderRepository(db Querier) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder persists a new order header.
func (r *OrderRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx, createOrderSQL,
		o.ID, o.MerchantID, o.Code, o.OrderDate, string(o.ArrivalStatus), o.BuyRate, o.SellRate,
		o.TotalPurchase, o.TotalShipping, o.TotalCostBeforeDiscount, o.TotalDiscount,
		o.TotalCost, o.TotalSelling, o.TotalProfit,
		o.TotalBillable, o.PaidAmount, o.RemainingAmount, string(o.PaymentStatus),
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// CreateItems persists every line of an order.
func (r *OrderRepository) CreateItems(ctx context.Context, items []order.OrderItem) error {
	for _, item := range items {
		_, err := r.db.Exec(ctx, createOrderItemSQL,
			item.ID, item.OrderID, item.Index, item.ProductName, item.Variant, item.Quantity,
			item.UnitPurchasePrice, item.UnitShippingPrice,
			string(item.Discount.Type), item.Discount.Value,
			item.UnitSellingPrice, item.PurchaseTotal, item.PurchaseTotalBase, item.ShippingBase,
			item.CostBeforeDiscount, item.DiscountAmount, item.FinalCost,
			item.SellingTotal, item.SellingTotalBase, item.Profit, item.ProfitBase,
			item.BuyRate, item.SellRate,
		)
		if err != nil {
			return fmt.Errorf("creating order item %d of order %q: %w", item.Index, item.OrderID, err)
		}
	}
	return nil
}

// CreateCustomerOrder persists one customer sub-order.
func (r *OrderRepository) CreateCustomerOrder(ctx context.Context, co *order.CustomerOrder) error {
	_, err := r.db.Exec(ctx, createCustomerOrderSQL,
		co.ID, co.OrderID, co.CustomerID,
		co.TotalBillable, co.TotalPaid, co.RemainingAmount, string(co.PaymentStatus),
	)
	if err != nil {
		return fmt.Errorf("creating customer order %q: %w", co.ID, err)
	}
	return nil
}

// CreateCustomerOrderItems persists the allocations of one customer order.
func (r *OrderRepository) CreateCustomerOrderItems(ctx context.Context, items []order.CustomerOrderItem) error {
	for _, item := range items {
		_, err := r.db.Exec(ctx, createCustomerOrderItemSQL,
			item.ID, item.CustomerOrderID, item.OrderItemID, item.LineIndex, item.Quantity,
			item.SellingPrice, item.SellingTotal, item.AllocatedCost, item.Profit,
		)
		if err != nil {
			return fmt.Errorf("creating allocation %q: %w", item.ID, err)
		}
	}
	return nil
}

// UpdateTotals writes the aggregated totals onto the order header.
func (r *OrderRepository) UpdateTotals(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx, updateOrderTotalsSQL,
		o.ID,
		o.TotalPurchase, o.TotalShipping, o.TotalCostBeforeDiscount, o.TotalDiscount,
		o.TotalCost, o.TotalSelling, o.TotalProfit,
		o.TotalBillable, o.PaidAmount, o.RemainingAmount, string(o.PaymentStatus),
	)
	if err != nil {
		return fmt.Errorf("updating totals of order %q: %w", o.ID, err)
	}
	return nil
}

// GetOrder returns one order header without its relations.
func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.db.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// GetGraph returns an order with its lines, customer orders, and allocations.
func (r *OrderRepository) GetGraph(ctx context.Context, id string) (*order.Order, error) {
	o, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	itemRows, err := r.db.Query(ctx, listOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("listing items of order %q: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("listing items of order %q: %w", id, err)
	}

	o.CustomerOrders, err = r.ListCustomerOrders(ctx, id)
	if err != nil {
		return nil, err
	}

	allocRows, err := r.db.Query(ctx, listCustomerOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("listing allocations of order %q: %w", id, err)
	}
	allocs, err := pgx.CollectRows(allocRows, scanCustomerOrderItem)
	if err != nil {
		return nil, fmt.Errorf("listing allocations of order %q: %w", id, err)
	}

	byCustomerOrder := make(map[string][]order.CustomerOrderItem, len(o.CustomerOrders))
	for _, a := range allocs {
		byCustomerOrder[a.CustomerOrderID] = append(byCustomerOrder[a.CustomerOrderID], a)
	}
	for i := range o.CustomerOrders {
		o.CustomerOrders[i].Items = byCustomerOrder[o.CustomerOrders[i].ID]
	}

	return o, nil
}

// ListByMerchant returns a merchant's order headers, newest first.
func (r *OrderRepository) ListByMerchant(ctx context.Context, merchantID string) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, listOrdersByMerchantSQL, merchantID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of merchant %q: %w", merchantID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateArrival sets the order's arrival status.
func (r *OrderRepository) UpdateArrival(ctx context.Context, orderID string, status order.ArrivalStatus) error {
	_, err := r.db.Exec(ctx, updateArrivalSQL, orderID, string(status))
	if err != nil {
		return fmt.Errorf("updating arrival of order %q: %w", orderID, err)
	}
	return nil
}

// GetCustomerOrder returns one customer order without its allocations.
func (r *OrderRepository) GetCustomerOrder(ctx context.Context, id string) (*order.CustomerOrder, error) {
	rows, err := r.db.Query(ctx, getCustomerOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer order %q: %w", id, err)
	}
	co, err := pgx.CollectExactlyOneRow(rows, scanCustomerOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerOrderNotFound
		}
		return nil, fmt.Errorf("getting customer order %q: %w", id, err)
	}
	return &co, nil
}

// ListCustomerOrders returns every customer order of one order.
func (r *OrderRepository) ListCustomerOrders(ctx context.Context, orderID string) ([]order.CustomerOrder, error) {
	rows, err := r.db.Query(ctx, listCustomerOrdersSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing customer orders of %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanCustomerOrder)
}

// UpdateCustomerOrderPayment writes a customer order's payment figures.
func (r *OrderRepository) UpdateCustomerOrderPayment(ctx context.Context, co *order.CustomerOrder) error {
	_, err := r.db.Exec(ctx, updateCustomerOrderPaymentSQL,
		co.ID, co.TotalPaid, co.RemainingAmount, string(co.PaymentStatus),
	)
	if err != nil {
		return fmt.Errorf("updating payment of customer order %q: %w", co.ID, err)
	}
	return nil
}

// UpdateOrderPayment writes an order's payment rollup.
func (r *OrderRepository) UpdateOrderPayment(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx, updateOrderPaymentSQL,
		o.ID, o.TotalBillable, o.PaidAmount, o.RemainingAmount, string(o.PaymentStatus),
	)
	if err != nil {
		return fmt.Errorf("updating payment of order %q: %w", o.ID, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                      order.Order
		arrival, paymentStatus string
	)
	err := row.Scan(
		&o.ID, &o.MerchantID, &o.Code, &o.OrderDate, &arrival, &o.BuyRate, &o.SellRate,
		&o.TotalPurchase, &o.TotalShipping, &o.TotalCostBeforeDiscount, &o.TotalDiscount,
		&o.TotalCost, &o.TotalSelling, &o.TotalProfit,
		&o.TotalBillable, &o.PaidAmount, &o.RemainingAmount, &paymentStatus, &o.CreatedAt,
	)
	o.ArrivalStatus = order.ArrivalStatus(arrival)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.OrderItem, error) {
	var (
		item         order.OrderItem
		discountType string
	)
	err := row.Scan(
		&item.ID, &item.OrderID, &item.Index, &item.ProductName, &item.Variant, &item.Quantity,
		&item.UnitPurchasePrice, &item.UnitShippingPrice, &discountType, &item.Discount.Value,
		&item.UnitSellingPrice, &item.PurchaseTotal, &item.PurchaseTotalBase, &item.ShippingBase,
		&item.CostBeforeDiscount, &item.DiscountAmount, &item.FinalCost,
		&item.SellingTotal, &item.SellingTotalBase, &item.Profit, &item.ProfitBase,
		&item.BuyRate, &item.SellRate,
	)
	item.Discount.Type = order.DiscountType(discountType)
	return item, err
}

func scanCustomerOrder(row pgx.CollectableRow) (order.CustomerOrder, error) {
	var (
		co            order.CustomerOrder
		paymentStatus string
	)
	err := row.Scan(
		&co.ID, &co.OrderID, &co.CustomerID,
		&co.TotalBillable, &co.TotalPaid, &co.RemainingAmount, &paymentStatus,
	)
	co.PaymentStatus = order.PaymentStatus(paymentStatus)
	return co, err
}

func scanCustomerOrderItem(row pgx.CollectableRow) (order.CustomerOrderItem, error) {
	var item order.CustomerOrderItem
	err := row.Scan(
		&item.ID, &item.CustomerOrderID, &item.OrderItemID, &item.LineIndex, &item.Quantity,
		&item.SellingPrice, &item.SellingTotal, &item.AllocatedCost, &item.Profit,
	)
	return item, err
}
