package order

import (
	"testing"
	"time"

	"foodzz/internal/cart"
	"foodzz/internal/money"
	"foodzz/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from Status
		want Status
		ok   bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusDelivered, true},
		{StatusDelivered, "", false},
		{Status("bogus"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, ok := tt.from.Next()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCanTransition(t *testing.T) {
	for i, from := range Sequence {
		for j, to := range Sequence {
			assert.Equal(t, j == i+1, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestNextAction(t *testing.T) {
	label, next, ok := NextAction(Order{Status: StatusPending})
	assert.True(t, ok)
	assert.Equal(t, "Mark as Preparing", label)
	assert.Equal(t, StatusPreparing, next)

	label, _, _ = NextAction(Order{Status: StatusReady})
	assert.Equal(t, "Mark as Delivered", label)

	_, _, ok = NextAction(Order{Status: StatusDelivered})
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Ready ")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, st)

	_, err = ParseStatus("cancelled")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestValidateCustomer(t *testing.T) {
	valid := Customer{Name: "Ana", Email: "ana@example.com", Phone: "555", Address: "1 Main St", PaymentMethod: PaymentCash}

	t.Run("Valid cash", func(t *testing.T) {
		assert.NoError(t, ValidateCustomer(valid, nil))
	})

	t.Run("Missing fields are listed", func(t *testing.T) {
		c := valid
		c.Name = "  "
		c.Address = ""

		err := ValidateCustomer(c, nil)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"name", "address"}, ve.Fields)
	})

	t.Run("Card needs card fields", func(t *testing.T) {
		c := valid
		c.PaymentMethod = PaymentCard

		err := ValidateCustomer(c, &Card{Number: "4111"})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"card expiry", "card cvv"}, ve.Fields)
		assert.NoError(t, ValidateCustomer(c, &Card{Number: "4111", Expiry: "12/30", CVV: "123"}))
	})

	t.Run("Unknown payment method", func(t *testing.T) {
		c := valid
		c.PaymentMethod = "crypto"
		assert.ErrorIs(t, ValidateCustomer(c, nil), ErrInvalidPaymentMethod)
	})
}

func TestSubmission_Validate(t *testing.T) {
	customer := Customer{Name: "a", Email: "b", Phone: "c", Address: "d", PaymentMethod: PaymentCash}
	items := []cart.Line{{ItemID: 1, Name: "Pizza", Price: money.FromInt(10), Quantity: 1}}

	t.Run("Empty cart", func(t *testing.T) {
		assert.ErrorIs(t, Submission{Customer: customer}.Validate(), ErrEmptyCart)
	})

	t.Run("Card order without card details", func(t *testing.T) {
		c := customer
		c.PaymentMethod = PaymentCard

		assert.NoError(t, Submission{Customer: c, Items: items}.Validate())
	})

	t.Run("Missing contact field", func(t *testing.T) {
		c := customer
		c.PaymentMethod = PaymentCard
		c.Phone = ""

		var ve *ValidationError
		require.ErrorAs(t, Submission{Customer: c, Items: items}.Validate(), &ve)
		assert.Equal(t, []string{"phone"}, ve.Fields)
	})

	t.Run("Zero quantity", func(t *testing.T) {
		bad := []cart.Line{{ItemID: 1, Quantity: 0}}
		assert.ErrorIs(t, Submission{Customer: customer, Items: bad}.Validate(), cart.ErrInvalidQuantity)
	})
}

func TestComputeStats(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var orders []Order
	for i := 1; i <= 7; i++ {
		st := StatusPending
		if i%2 == 0 {
			st = StatusDelivered
		}
		orders = append(orders, Order{
			ID:        i,
			Status:    st,
			Totals:    pricing.Totals{Total: money.MustParse("10.005")},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	st := ComputeStats(orders)

	assert.Equal(t, 7, st.TotalOrders)
	assert.Equal(t, "70.04", st.TotalRevenue.StringFixed(2))
	assert.Equal(t, 4, st.OrdersByStatus[StatusPending])
	assert.Equal(t, 3, st.OrdersByStatus[StatusDelivered])
	require.Len(t, st.RecentOrders, RecentOrdersLimit)
	assert.Equal(t, 7, st.RecentOrders[0].ID)
	assert.Equal(t, 3, st.RecentOrders[4].ID)
	// input order untouched
	assert.Equal(t, 1, orders[0].ID)
}

func TestFilterByStatus(t *testing.T) {
	orders := []Order{{ID: 1, Status: StatusPending}, {ID: 2, Status: StatusReady}, {ID: 3, Status: StatusPending}}

	assert.Len(t, FilterByStatus(orders, StatusAll), 3)
	assert.Len(t, FilterByStatus(orders, "pending"), 2)
	assert.Empty(t, FilterByStatus(orders, "delivered"))
}

func TestOrder_Label(t *testing.T) {
	assert.Equal(t, "#0007", Order{ID: 7}.Label())
	assert.Equal(t, "#12345", Order{ID: 12345}.Label())
}
