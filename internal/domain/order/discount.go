package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported line discount strategies.
type DiscountType string

const (
	// DiscountNone applies no discount.
	DiscountNone DiscountType = "NONE"
	// DiscountFixed subtracts a fixed native-currency amount, valued into
	// the base currency through the BUY rate.
	DiscountFixed DiscountType = "FIXED"
	// DiscountPercent subtracts a percentage of the pre-discount cost.
	DiscountPercent DiscountType = "PERCENT"
)

// Discount is a tagged variant: no discount, a fixed amount, or a percent
// rate. The zero value means no discount.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// NoDiscount returns the none variant.
func NoDiscount() Discount {
	return Discount{Type: DiscountNone}
}

// FixedDiscount returns a fixed-amount discount.
func FixedDiscount(amount decimal.Decimal) Discount {
	return Discount{Type: DiscountFixed, Value: amount}
}

// PercentDiscount returns a percent-rate discount.
func PercentDiscount(rate decimal.Decimal) Discount {
	return Discount{Type: DiscountPercent, Value: rate}
}

// IsZero reports whether the discount is absent.
func (d Discount) IsZero() bool {
	return d.Type == "" || d.Type == DiscountNone
}

// UnknownDiscountTypeError indicates a request carried a discount tag that
// matches neither vocabulary accepted at the boundary. Unknown tags are
// rejected rather than silently treated as "no discount".
type UnknownDiscountTypeError struct {
	Tag string
}

func (e *UnknownDiscountTypeError) Error() string {
	return fmt.Sprintf("unknown discount type %q", e.Tag)
}

// ParseDiscount normalizes the discount tags seen on the write path into the
// tagged variant. Historically two vocabularies were in use: PERCENT/FIX on
// stored rows and percent/cash on request payloads. Both are accepted here.
func ParseDiscount(tag string, value decimal.Decimal) (Discount, error) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "", "NONE":
		return NoDiscount(), nil
	case "PERCENT", "PERCENTAGE":
		return PercentDiscount(value), nil
	case "FIX", "FIXED", "CASH":
		return FixedDiscount(value), nil
	default:
		return Discount{}, &UnknownDiscountTypeError{Tag: tag}
	}
}
