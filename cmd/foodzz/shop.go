package main

import (
	"fmt"
	"strconv"
	"strings"

	"foodzz/internal/money"
	"foodzz/internal/order"

	"github.com/spf13/cobra"
)

func newMenuCmd(c *cli) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "List the menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := c.app.Menu(category, search)
			if len(items) == 0 {
				c.printf("No items found\n")
				return nil
			}
			renderFoods(c.out, items)
			c.printf("\nCategories: %s\n", strings.Join(c.app.Categories(), ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only show this category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name search")
	return cmd
}

func newFeaturedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "List featured items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.isRemote() {
				if err := c.login(ctx); err != nil {
					return err
				}
			}

			items, err := c.app.Featured(ctx)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				c.printf("Nothing is featured\n")
				return nil
			}
			renderFoods(c.out, items)
			return nil
		},
	}
}

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show cart lines and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := c.app.Cart()
			renderCart(c.out, m.Lines(), m.Totals())
			return nil
		},
	}

	var qty int
	add := &cobra.Command{
		Use:   "add ID",
		Short: "Add an item to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.AddToCart(cmd.Context(), id, qty); err != nil {
				return err
			}
			it, _ := c.app.Food(id)
			c.printf("✓ Added %s x%d (%d items in cart)\n", it.Name, qty, c.app.Cart().Count())
			return nil
		},
	}
	add.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")

	update := &cobra.Command{
		Use:   "update ID QTY",
		Short: "Set a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			if err := c.app.Cart().UpdateQuantity(cmd.Context(), id, n); err != nil {
				return err
			}
			c.printf("✓ Cart updated (%d items)\n", c.app.Cart().Count())
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an item from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Cart().RemoveFromCart(cmd.Context(), id); err != nil {
				return err
			}
			c.printf("✓ Removed item %d\n", id)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Cart().Clear(cmd.Context()); err != nil {
				return err
			}
			c.printf("✓ Cart cleared\n")
			return nil
		},
	}

	cmd.AddCommand(show, add, update, remove, clearCmd)
	return cmd
}

func newCheckoutCmd(c *cli) *cobra.Command {
	var (
		cust    order.Customer
		payment string
		card    order.Card
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cust.PaymentMethod = order.PaymentMethod(strings.ToLower(payment))

			var cardPtr *order.Card
			if cust.PaymentMethod == order.PaymentCard {
				cardPtr = &card
			}

			r, err := c.app.Checkout(cmd.Context(), cust, cardPtr)
			if err != nil {
				return err
			}

			c.printf("✓ Order #%04d placed (%s)\n\n", r.OrderID, r.Status.Title())
			renderTotals(c.out, r.Totals)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cust.Name, "name", "", "customer name")
	f.StringVar(&cust.Email, "email", "", "customer email")
	f.StringVar(&cust.Phone, "phone", "", "phone number")
	f.StringVar(&cust.Address, "address", "", "delivery address")
	f.StringVar(&payment, "payment", string(order.PaymentCash), "payment method: cash or card")
	f.StringVar(&card.Number, "card-number", "", "card number (card payments)")
	f.StringVar(&card.Expiry, "card-expiry", "", "card expiry, MM/YY (card payments)")
	f.StringVar(&card.CVV, "card-cvv", "", "card CVV (card payments)")
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseAmount(s string) (money.Amount, error) {
	return money.Parse(strings.TrimPrefix(s, "$"))
}
