package cart

import (
	"foodzz/internal/food"
	"foodzz/internal/money"
)

// Line is one cart entry. A cart holds at most one line per ItemID.
type Line struct {
	ItemID   int          `json:"id"`
	Name     string       `json:"name"`
	Price    money.Amount `json:"price"`
	Quantity int          `json:"quantity"`
	Image    string       `json:"image,omitempty"`
}

func (l Line) LinePrice() money.Amount { return l.Price }
func (l Line) LineQuantity() int       { return l.Quantity }

// Total is price times quantity.
func (l Line) Total() money.Amount {
	return l.Price.Mul(money.FromInt(int64(l.Quantity)))
}

func lineFrom(item food.Item, qty int) Line {
	return Line{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: qty,
		Image:    item.Image,
	}
}

// Add merges qty of item into lines. A repeat add increments the
// existing line instead of appending a second one.
func Add(lines []Line, item food.Item, qty int) ([]Line, error) {
	if qty <= 0 {
		return lines, ErrInvalidQuantity
	}

	for i := range lines {
		if lines[i].ItemID == item.ID {
			out := clone(lines)
			out[i].Quantity += qty
			return out, nil
		}
	}
	return append(clone(lines), lineFrom(item, qty)), nil
}

// SetQuantity sets the quantity of the line for id. A quantity of zero or
// less removes the line. Unknown ids leave the cart unchanged.
func SetQuantity(lines []Line, id, qty int) []Line {
	if qty <= 0 {
		return Remove(lines, id)
	}

	out := clone(lines)
	for i := range out {
		if out[i].ItemID == id {
			out[i].Quantity = qty
			break
		}
	}
	return out
}

func Remove(lines []Line, id int) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ItemID != id {
			out = append(out, l)
		}
	}
	return out
}

func Contains(lines []Line, id int) bool {
	for _, l := range lines {
		if l.ItemID == id {
			return true
		}
	}
	return false
}

// Count is the total number of units, shown as the cart badge.
func Count(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func clone(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
