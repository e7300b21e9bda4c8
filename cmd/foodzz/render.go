package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"foodzz/internal/cart"
	"foodzz/internal/food"
	"foodzz/internal/money"
	"foodzz/internal/order"
	"foodzz/internal/pricing"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderFoods(w io.Writer, items []food.Item) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\t")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", it.ID, it.Name, it.Category, money.Format(it.Price))
	}
	tw.Flush()
}

func renderCart(w io.Writer, lines []cart.Line, t pricing.Totals) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tITEM\tQTY\tPRICE\tTOTAL\t")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t\n",
			l.ItemID, l.Name, l.Quantity, money.Format(l.Price), money.Format(l.Total()))
	}
	tw.Flush()
	fmt.Fprintln(w)
	renderTotals(w, t)
}

func renderTotals(w io.Writer, t pricing.Totals) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Subtotal:\t%s\n", money.Format(t.Subtotal))
	fmt.Fprintf(tw, "Tax:\t%s\n", money.Format(t.Tax))
	fmt.Fprintf(tw, "Delivery:\t%s\n", money.Format(t.DeliveryFee))
	fmt.Fprintf(tw, "Total:\t%s\n", money.Format(t.Total))
	tw.Flush()
}

func renderOrders(w io.Writer, orders []order.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ORDER\tCUSTOMER\tITEMS\tTOTAL\tSTATUS\tNEXT\tPLACED\t")
	for _, o := range orders {
		next, _, _ := order.NextAction(o)
		if next == "" {
			next = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			o.Label(),
			o.Name,
			itemSummary(o.Items),
			money.Format(o.Total),
			o.Status.Title(),
			next,
			o.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	tw.Flush()
}

// itemSummary renders "Burger x2, Pizza x1".
func itemSummary(lines []cart.Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s x%d", l.Name, l.Quantity))
	}
	return strings.Join(parts, ", ")
}

func renderStats(w io.Writer, st order.Stats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total orders:\t%d\n", st.TotalOrders)
	fmt.Fprintf(tw, "Revenue:\t%s\n", money.Format(st.TotalRevenue))
	for _, s := range order.Sequence {
		fmt.Fprintf(tw, "%s:\t%d\n", s.Title(), st.OrdersByStatus[s])
	}
	tw.Flush()

	if len(st.RecentOrders) > 0 {
		fmt.Fprintln(w, "\nRecent orders")
		renderOrders(w, st.RecentOrders)
	}
}
