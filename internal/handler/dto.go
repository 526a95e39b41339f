package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shwekart/preorder-backend/internal/domain/order"
)

// orderDate is the wire format for order and effective dates.
const orderDateLayout = "2006-01-02"

type discountReq struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type lineReq struct {
	ProductName       string          `json:"product_name"`
	Variant           string          `json:"variant,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPurchasePrice decimal.Decimal `json:"unit_purchase_price"`
	UnitShippingPrice decimal.Decimal `json:"unit_shipping_price"`
	Discount          *discountReq    `json:"discount,omitempty"`
	UnitSellingPrice  decimal.Decimal `json:"unit_selling_price"`
}

type allocationReq struct {
	LineIndex            int              `json:"line_index"`
	Quantity             int              `json:"quantity"`
	SellingPriceOverride *decimal.Decimal `json:"selling_price_override,omitempty"`
}

type customerOrderReq struct {
	CustomerID  string          `json:"customer_id"`
	Allocations []allocationReq `json:"allocations"`
}

type createOrderReq struct {
	MerchantID     string             `json:"merchant_id"`
	Code           string             `json:"code"`
	OrderDate      string             `json:"order_date,omitempty"`
	Lines          []lineReq          `json:"lines"`
	CustomerOrders []customerOrderReq `json:"customer_orders"`
}

type paymentReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// toDomain normalizes the request into a domain creation request. Discount
// tags from either legacy vocabulary are parsed here; unknown tags fail.
func (req createOrderReq) toDomain() (order.CreateOrderRequest, error) {
	out := order.CreateOrderRequest{
		MerchantID: req.MerchantID,
		Code:       req.Code,
	}

	if req.OrderDate != "" {
		d, err := time.Parse(orderDateLayout, req.OrderDate)
		if err != nil {
			return order.CreateOrderRequest{}, err
		}
		out.OrderDate = d
	}

	out.Lines = make([]order.LineRequest, len(req.Lines))
	for i, line := range req.Lines {
		discount := order.NoDiscount()
		if line.Discount != nil {
			var err error
			discount, err = order.ParseDiscount(line.Discount.Type, line.Discount.Value)
			if err != nil {
				return order.CreateOrderRequest{}, err
			}
		}
		out.Lines[i] = order.LineRequest{
			ProductName:       line.ProductName,
			Variant:           line.Variant,
			Quantity:          line.Quantity,
			UnitPurchasePrice: line.UnitPurchasePrice,
			UnitShippingPrice: line.UnitShippingPrice,
			Discount:          discount,
			UnitSellingPrice:  line.UnitSellingPrice,
		}
	}

	out.CustomerOrders = make([]order.CustomerOrderRequest, len(req.CustomerOrders))
	for i, co := range req.CustomerOrders {
		allocs := make([]order.AllocationRequest, len(co.Allocations))
		for j, a := range co.Allocations {
			allocs[j] = order.AllocationRequest{
				LineIndex:            a.LineIndex,
				Quantity:             a.Quantity,
				SellingPriceOverride: a.SellingPriceOverride,
			}
		}
		out.CustomerOrders[i] = order.CustomerOrderRequest{
			CustomerID:  co.CustomerID,
			Allocations: allocs,
		}
	}

	return out, nil
}

type orderItemResp struct {
	ID                 string          `json:"id"`
	Index              int             `json:"index"`
	ProductName        string          `json:"product_name"`
	Variant            string          `json:"variant,omitempty"`
	Quantity           int             `json:"quantity"`
	UnitPurchasePrice  decimal.Decimal `json:"unit_purchase_price"`
	UnitShippingPrice  decimal.Decimal `json:"unit_shipping_price"`
	DiscountType       string          `json:"discount_type"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	UnitSellingPrice   decimal.Decimal `json:"unit_selling_price"`
	PurchaseTotal      decimal.Decimal `json:"purchase_total"`
	PurchaseTotalBase  decimal.Decimal `json:"purchase_total_base"`
	ShippingBase       decimal.Decimal `json:"shipping_base"`
	CostBeforeDiscount decimal.Decimal `json:"cost_before_discount"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	FinalCost          decimal.Decimal `json:"final_cost"`
	SellingTotal       decimal.Decimal `json:"selling_total"`
	SellingTotalBase   decimal.Decimal `json:"selling_total_base"`
	Profit             decimal.Decimal `json:"profit"`
	ProfitBase         decimal.Decimal `json:"profit_base"`
}

type customerOrderItemResp struct {
	ID            string          `json:"id"`
	OrderItemID   string          `json:"order_item_id"`
	LineIndex     int             `json:"line_index"`
	Quantity      int             `json:"quantity"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	SellingTotal  decimal.Decimal `json:"selling_total"`
	AllocatedCost decimal.Decimal `json:"allocated_cost"`
	Profit        decimal.Decimal `json:"profit"`
}

type customerOrderResp struct {
	ID              string                  `json:"id"`
	CustomerID      string                  `json:"customer_id"`
	TotalBillable   decimal.Decimal         `json:"total_billable"`
	TotalPaid       decimal.Decimal         `json:"total_paid"`
	RemainingAmount decimal.Decimal         `json:"remaining_amount"`
	PaymentStatus   string                  `json:"payment_status"`
	Items           []customerOrderItemResp `json:"items"`
}

type orderResp struct {
	ID                      string              `json:"id"`
	MerchantID              string              `json:"merchant_id"`
	Code                    string              `json:"code"`
	OrderDate               string              `json:"order_date"`
	ArrivalStatus           string              `json:"arrival_status"`
	BuyRate                 decimal.Decimal     `json:"buy_rate"`
	SellRate                decimal.Decimal     `json:"sell_rate"`
	TotalPurchase           decimal.Decimal     `json:"total_purchase"`
	TotalShipping           decimal.Decimal     `json:"total_shipping"`
	TotalCostBeforeDiscount decimal.Decimal     `json:"total_cost_before_discount"`
	TotalDiscount           decimal.Decimal     `json:"total_discount"`
	TotalCost               decimal.Decimal     `json:"total_cost"`
	TotalSelling            decimal.Decimal     `json:"total_selling"`
	TotalProfit             decimal.Decimal     `json:"total_profit"`
	TotalBillable           decimal.Decimal     `json:"total_billable"`
	PaidAmount              decimal.Decimal     `json:"paid_amount"`
	RemainingAmount         decimal.Decimal     `json:"remaining_amount"`
	PaymentStatus           string              `json:"payment_status"`
	Items                   []orderItemResp     `json:"items,omitempty"`
	CustomerOrders          []customerOrderResp `json:"customer_orders,omitempty"`
}

func toOrderResp(o *order.Order) orderResp {
	resp := orderResp{
		ID:                      o.ID,
		MerchantID:              o.MerchantID,
		Code:                    o.Code,
		OrderDate:               o.OrderDate.Format(orderDateLayout),
		ArrivalStatus:           string(o.ArrivalStatus),
		BuyRate:                 o.BuyRate,
		SellRate:                o.SellRate,
		TotalPurchase:           o.TotalPurchase,
		TotalShipping:           o.TotalShipping,
		TotalCostBeforeDiscount: o.TotalCostBeforeDiscount,
		TotalDiscount:           o.TotalDiscount,
		TotalCost:               o.TotalCost,
		TotalSelling:            o.TotalSelling,
		TotalProfit:             o.TotalProfit,
		TotalBillable:           o.TotalBillable,
		PaidAmount:              o.PaidAmount,
		RemainingAmount:         o.RemainingAmount,
		PaymentStatus:           string(o.PaymentStatus),
	}

	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResp{
			ID:                 item.ID,
			Index:              item.Index,
			ProductName:        item.ProductName,
			Variant:            item.Variant,
			Quantity:           item.Quantity,
			UnitPurchasePrice:  item.UnitPurchasePrice,
			UnitShippingPrice:  item.UnitShippingPrice,
			DiscountType:       string(item.Discount.Type),
			DiscountValue:      item.Discount.Value,
			UnitSellingPrice:   item.UnitSellingPrice,
			PurchaseTotal:      item.PurchaseTotal,
			PurchaseTotalBase:  item.PurchaseTotalBase,
			ShippingBase:       item.ShippingBase,
			CostBeforeDiscount: item.CostBeforeDiscount,
			DiscountAmount:     item.DiscountAmount,
			FinalCost:          item.FinalCost,
			SellingTotal:       item.SellingTotal,
			SellingTotalBase:   item.SellingTotalBase,
			Profit:             item.Profit,
			ProfitBase:         item.ProfitBase,
		})
	}

	for _, co := range o.CustomerOrders {
		coResp := customerOrderResp{
			ID:              co.ID,
			CustomerID:      co.CustomerID,
			TotalBillable:   co.TotalBillable,
			TotalPaid:       co.TotalPaid,
			RemainingAmount: co.RemainingAmount,
			PaymentStatus:   string(co.PaymentStatus),
		}
		for _, item := range co.Items {
			coResp.Items = append(coResp.Items, customerOrderItemResp{
				ID:            item.ID,
				OrderItemID:   item.OrderItemID,
				LineIndex:     item.LineIndex,
				Quantity:      item.Quantity,
				SellingPrice:  item.SellingPrice,
				SellingTotal:  item.SellingTotal,
				AllocatedCost: item.AllocatedCost,
				Profit:        item.Profit,
			})
		}
		resp.CustomerOrders = append(resp.CustomerOrders, coResp)
	}

	return resp
}
