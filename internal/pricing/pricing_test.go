package pricing

import (
	"testing"

	"foodzz/internal/money"

	"github.com/stretchr/testify/assert"
)

type line struct {
	price string
	qty   int
}

func (l line) LinePrice() money.Amount { return money.MustParse(l.price) }
func (l line) LineQuantity() int       { return l.qty }

func TestCompute(t *testing.T) {
	p := DefaultPolicy()

	t.Run("Reference cart", func(t *testing.T) {
		totals := Compute([]line{{"10", 2}, {"5", 1}}, p)

		assert.Equal(t, "25.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "2.00", totals.Tax.StringFixed(2))
		assert.Equal(t, "5.00", totals.DeliveryFee.StringFixed(2))
		assert.Equal(t, "32.00", totals.Total.StringFixed(2))
	})

	t.Run("Empty cart still pays delivery", func(t *testing.T) {
		totals := Compute([]line{}, p)

		assert.Equal(t, "0.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "5.00", totals.DeliveryFee.StringFixed(2))
	})

	t.Run("Threshold is exclusive", func(t *testing.T) {
		totals := Compute([]line{{"15", 2}}, p)

		assert.Equal(t, "30.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "0.00", totals.DeliveryFee.StringFixed(2))
		assert.Equal(t, "2.40", totals.Tax.StringFixed(2))
		assert.Equal(t, "32.40", totals.Total.StringFixed(2))
	})

	t.Run("Just below threshold", func(t *testing.T) {
		totals := Compute([]line{{"29.99", 1}}, p)
		assert.Equal(t, "5.00", totals.DeliveryFee.StringFixed(2))
	})

	t.Run("Tax rounded to cents", func(t *testing.T) {
		totals := Compute([]line{{"12.99", 1}}, p)
		// 12.99 * 0.08 = 1.0392
		assert.Equal(t, "1.04", totals.Tax.StringFixed(2))
	})
}

func TestDeliveryFeeFor_WaiveOnEmpty(t *testing.T) {
	p := DefaultPolicy()
	p.WaiveFeeOnEmpty = true

	assert.True(t, p.DeliveryFeeFor(money.Zero).IsZero())
	assert.Equal(t, "5.00", p.DeliveryFeeFor(money.New(100)).StringFixed(2))
}

func TestCustomPolicy(t *testing.T) {
	p := Policy{
		TaxRate:               money.MustParse("0.10"),
		DeliveryFee:           money.New(250),
		FreeDeliveryThreshold: money.New(1000),
	}

	totals := p.Apply(money.New(900))
	assert.Equal(t, "0.90", totals.Tax.StringFixed(2))
	assert.Equal(t, "2.50", totals.DeliveryFee.StringFixed(2))
	assert.Equal(t, "12.40", totals.Total.StringFixed(2))
}
