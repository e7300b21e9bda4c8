package order

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"foodzz/internal/cart"
	"foodzz/internal/money"
	"foodzz/internal/pricing"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCard
}

type Customer struct {
	Name          string        `json:"customer_name"`
	Email         string        `json:"customer_email"`
	Phone         string        `json:"phone"`
	Address       string        `json:"delivery_address"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// Card details are checked for presence on the client and never sent.
type Card struct {
	Number string
	Expiry string
	CVV    string
}

// Submission is the checkout request body.
type Submission struct {
	Customer
	Items []cart.Line `json:"items"`
}

type Order struct {
	ID int `json:"id"`
	Customer
	Items []cart.Line `json:"items"`
	pricing.Totals
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Label renders the zero-padded id shown on the dashboard, e.g. "#0007".
func (o Order) Label() string {
	return fmt.Sprintf("#%04d", o.ID)
}

// Receipt is what a successful checkout returns.
type Receipt struct {
	Success bool `json:"success"`
	OrderID int  `json:"order_id"`
	pricing.Totals
	Status Status `json:"status"`
}

func (o Order) Receipt() Receipt {
	return Receipt{Success: true, OrderID: o.ID, Totals: o.Totals, Status: o.Status}
}

type Stats struct {
	TotalOrders    int            `json:"total_orders"`
	TotalRevenue   money.Amount   `json:"total_revenue"`
	OrdersByStatus map[Status]int `json:"orders_by_status"`
	RecentOrders   []Order        `json:"recent_orders"`
}

const RecentOrdersLimit = 5

// ValidateCustomer checks the contact fields, and the card fields when
// paying by card. It never looks at the cart.
func ValidateCustomer(c Customer, card *Card) error {
	missing := missingContact(c)
	if c.PaymentMethod == PaymentCard {
		if card == nil {
			card = &Card{}
		}
		missing = appendBlank(missing, "card number", card.Number)
		missing = appendBlank(missing, "card expiry", card.Expiry)
		missing = appendBlank(missing, "card cvv", card.CVV)
	}
	return contactError(c, missing)
}

// validateContact is the check for submissions that reach a store. Card
// details never leave the client, so only the contact fields and the
// payment method are looked at.
func validateContact(c Customer) error {
	return contactError(c, missingContact(c))
}

func missingContact(c Customer) []string {
	var missing []string
	missing = appendBlank(missing, "name", c.Name)
	missing = appendBlank(missing, "email", c.Email)
	missing = appendBlank(missing, "phone", c.Phone)
	missing = appendBlank(missing, "address", c.Address)
	return missing
}

func appendBlank(missing []string, name, v string) []string {
	if strings.TrimSpace(v) == "" {
		return append(missing, name)
	}
	return missing
}

func contactError(c Customer, missing []string) error {
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if !c.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, c.PaymentMethod)
	}
	return nil
}

// Validate is the server-side check of a submission.
func (s Submission) Validate() error {
	if len(s.Items) == 0 {
		return ErrEmptyCart
	}
	for _, l := range s.Items {
		if l.Quantity <= 0 {
			return cart.ErrInvalidQuantity
		}
	}
	return validateContact(s.Customer)
}

// FilterByStatus keeps orders in the given status; "all" or empty keeps
// everything.
func FilterByStatus(orders []Order, status string) []Order {
	if status == "" || status == StatusAll {
		return orders
	}

	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if string(o.Status) == status {
			out = append(out, o)
		}
	}
	return out
}

// SortNewestFirst orders by creation time, newest first, ties by id.
func SortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// ComputeStats builds dashboard stats from a full order list.
func ComputeStats(orders []Order) Stats {
	st := Stats{
		TotalOrders:    len(orders),
		TotalRevenue:   money.Zero,
		OrdersByStatus: make(map[Status]int),
	}
	for _, o := range orders {
		st.TotalRevenue = st.TotalRevenue.Add(o.Total)
		st.OrdersByStatus[o.Status]++
	}
	st.TotalRevenue = money.Round2(st.TotalRevenue)

	recent := make([]Order, len(orders))
	copy(recent, orders)
	SortNewestFirst(recent)
	if len(recent) > RecentOrdersLimit {
		recent = recent[:RecentOrdersLimit]
	}
	st.RecentOrders = recent
	return st
}
