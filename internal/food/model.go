package food

import (
	"fmt"
	"strings"
	"time"

	"foodzz/internal/money"
)

type Item struct {
	ID          int          `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Price       money.Amount `json:"price" yaml:"price"`
	Category    string       `json:"category" yaml:"category"`
	Image       string       `json:"image" yaml:"image"`
	CreatedAt   *time.Time   `json:"created_at,omitempty" yaml:"-"`
}

// Patch is a field-level overwrite; nil fields are left untouched.
type Patch struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Price       *money.Amount `json:"price,omitempty"`
	Category    *string       `json:"category,omitempty"`
	Image       *string       `json:"image,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.Price == nil &&
		p.Category == nil &&
		p.Image == nil
}

// Apply returns a copy of item with the patch applied.
func (p Patch) Apply(item Item) Item {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Image != nil {
		item.Image = *p.Image
	}
	return item
}

func (p Patch) Validate() error {
	if p.IsEmpty() {
		return ErrNoUpdate
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFood, ErrEmptyName)
	}
	if p.Price != nil && p.Price.IsNegative() {
		return fmt.Errorf("%w: %w", ErrInvalidFood, ErrInvalidPrice)
	}
	return nil
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFood, ErrEmptyName)
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("%w: %w", ErrInvalidFood, ErrInvalidPrice)
	}
	return nil
}

// NextID is max(existing id)+1, or 1 for an empty catalog.
func NextID(items []Item) int {
	next := 1
	for _, it := range items {
		if it.ID >= next {
			next = it.ID + 1
		}
	}
	return next
}

func FindByID(items []Item, id int) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// DefaultMenu seeds an empty local catalog.
func DefaultMenu() []Item {
	return []Item{
		{ID: 1, Name: "Ice Cream", Price: money.FromInt(120), Category: "Desserts", Image: "images/icecream.png"},
		{ID: 2, Name: "Momos", Price: money.FromInt(150), Category: "Snacks", Image: "images/momo.png"},
		{ID: 3, Name: "Burger", Price: money.FromInt(199), Category: "Burgers", Image: "images/burger.png"},
		{ID: 4, Name: "Chicken Roll", Price: money.FromInt(180), Category: "Snacks", Image: "images/chicken-roll.png"},
		{ID: 5, Name: "Pizza", Price: money.FromInt(399), Category: "Pizza", Image: "images/pizza.png"},
		{ID: 6, Name: "Sandwich", Price: money.FromInt(120), Category: "Snacks", Image: "images/sandwich.png"},
		{ID: 7, Name: "Fried Chicken", Price: money.FromInt(250), Category: "Chicken", Image: "images/fried-chicken.png"},
		{ID: 8, Name: "Lasagna", Price: money.FromInt(299), Category: "Pasta", Image: "images/lasagna.png"},
		{ID: 9, Name: "Spring Roll", Price: money.FromInt(160), Category: "Snacks", Image: "images/spring-roll.png"},
		{ID: 10, Name: "Spaghetti", Price: money.FromInt(220), Category: "Pasta", Image: "images/spaghetti.png"},
	}
}

// DefaultFeaturedCount is how many leading items count as featured when
// no featured set was ever saved.
const DefaultFeaturedCount = 6
