package pricing

import (
	"foodzz/internal/money"
)

// Policy holds the pricing constants. They are configuration, not derived.
type Policy struct {
	TaxRate               money.Amount `yaml:"tax_rate" json:"tax_rate"`
	DeliveryFee           money.Amount `yaml:"delivery_fee" json:"delivery_fee"`
	FreeDeliveryThreshold money.Amount `yaml:"free_delivery_threshold" json:"free_delivery_threshold"`
	// WaiveFeeOnEmpty drops the delivery fee for an empty cart. Off by
	// default: the fee applies to any subtotal below the threshold.
	WaiveFeeOnEmpty bool `yaml:"waive_fee_on_empty" json:"waive_fee_on_empty"`
}

func DefaultPolicy() Policy {
	return Policy{
		TaxRate:               money.MustParse("0.08"),
		DeliveryFee:           money.New(500),
		FreeDeliveryThreshold: money.New(3000),
	}
}

// Line is anything that contributes price × quantity to a subtotal.
type Line interface {
	LinePrice() money.Amount
	LineQuantity() int
}

type Totals struct {
	Subtotal    money.Amount `json:"subtotal"`
	Tax         money.Amount `json:"tax"`
	DeliveryFee money.Amount `json:"delivery_fee"`
	Total       money.Amount `json:"total"`
}

func Subtotal[L Line](lines []L) money.Amount {
	sum := money.Zero
	for _, l := range lines {
		sum = sum.Add(l.LinePrice().Mul(money.FromInt(int64(l.LineQuantity()))))
	}
	return sum
}

// Compute applies the policy to a list of lines.
func Compute[L Line](lines []L, p Policy) Totals {
	return p.Apply(Subtotal(lines))
}

// Apply derives tax, delivery fee and total from a subtotal.
func (p Policy) Apply(subtotal money.Amount) Totals {
	tax := money.Round2(subtotal.Mul(p.TaxRate))
	fee := p.DeliveryFeeFor(subtotal)

	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Total:       subtotal.Add(tax).Add(fee),
	}
}

func (p Policy) DeliveryFeeFor(subtotal money.Amount) money.Amount {
	if p.WaiveFeeOnEmpty && !subtotal.IsPositive() {
		return money.Zero
	}
	if subtotal.LessThan(p.FreeDeliveryThreshold) {
		return p.DeliveryFee
	}
	return money.Zero
}
