package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"foodzz/internal/app"
	"foodzz/internal/food"
	"foodzz/internal/money"
	"foodzz/internal/order"

	"github.com/spf13/cobra"
)

// adminRun signs in before running fn. Every admin command is a separate
// process, so there is no session to reuse.
func adminRun(c *cli, fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := c.login(ctx); err != nil {
			return err
		}
		return fn(ctx, args)
	}
}

func newAdminCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Dashboard and menu management",
	}
	cmd.PersistentFlags().StringVarP(&c.username, "username", "u", "", "admin username (default ADMIN_USERNAME)")
	cmd.PersistentFlags().StringVarP(&c.password, "password", "p", "", "admin password (default ADMIN_PASSWORD)")

	cmd.AddCommand(
		newOrdersCmd(c),
		newAdvanceCmd(c),
		newStatsCmd(c),
		newWatchCmd(c),
		newFoodCmd(c),
	)
	return cmd
}

func newOrdersCmd(c *cli) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: adminRun(c, func(ctx context.Context, args []string) error {
			if status != order.StatusAll {
				if _, err := order.ParseStatus(status); err != nil {
					return err
				}
			}
			if err := c.app.RefreshDashboard(ctx); err != nil {
				return err
			}
			renderOrders(c.out, c.app.Orders(status))
			return nil
		}),
	}
	cmd.Flags().StringVar(&status, "status", order.StatusAll, "all, pending, preparing, ready or delivered")
	return cmd
}

func newAdvanceCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "advance ORDER_ID",
		Short: "Move an order to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(c, func(ctx context.Context, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			o, err := c.app.AdvanceOrder(ctx, id)
			if err != nil {
				return err
			}
			c.printf("✓ Order #%04d is now %s\n", o.ID, o.Status.Title())
			return nil
		}),
	}
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show order totals",
		Args:  cobra.NoArgs,
		RunE: adminRun(c, func(ctx context.Context, args []string) error {
			if err := c.app.RefreshDashboard(ctx); err != nil {
				return err
			}
			renderStats(c.out, c.app.Stats())
			return nil
		}),
	}
}

func newWatchCmd(c *cli) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the dashboard fresh until interrupted",
		Args:  cobra.NoArgs,
		RunE: adminRun(c, func(ctx context.Context, args []string) error {
			if interval <= 0 {
				interval = c.cfg.RefreshInterval
			}

			r := app.NewRefresher(c.app.RefreshDashboard, interval)
			r.OnRefresh = func(err error) {
				if err != nil {
					if ctx.Err() == nil {
						c.printf("✗ refresh failed: %s\n", err)
					}
					return
				}
				st := c.app.Stats()
				c.printf("[%s] %d orders, %s revenue, %d pending\n",
					time.Now().Format("15:04:05"),
					st.TotalOrders,
					money.Format(st.TotalRevenue),
					st.OrdersByStatus[order.StatusPending],
				)
			}

			return r.Run(ctx, c.sub)
		}),
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default REFRESH_INTERVAL)")
	return cmd
}

func newFoodCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "food",
		Short: "Add, edit, delete or feature menu items",
	}
	cmd.AddCommand(
		newFoodAddCmd(c),
		newFoodEditCmd(c),
		newFoodDeleteCmd(c),
		newFoodFeatureCmd(c),
	)
	return cmd
}

func newFoodAddCmd(c *cli) *cobra.Command {
	var (
		item  food.Item
		price string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a menu item",
		Args:  cobra.NoArgs,
		RunE: adminRun(c, func(ctx context.Context, args []string) error {
			p, err := parseAmount(price)
			if err != nil {
				return err
			}
			item.Price = p

			created, err := c.app.CreateFood(ctx, item)
			if err != nil {
				return err
			}
			c.printf("✓ Added %s as item %d\n", created.Name, created.ID)
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&item.Name, "name", "", "item name")
	f.StringVar(&price, "price", "", "price, e.g. 12.99")
	f.StringVar(&item.Category, "category", "", "menu category")
	f.StringVar(&item.Description, "description", "", "short description")
	f.StringVar(&item.Image, "image", "", "image path or URL")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newFoodEditCmd(c *cli) *cobra.Command {
	var name, price, category, description, image string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a menu item",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = adminRun(c, func(ctx context.Context, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		f := cmd.Flags()
		var patch food.Patch
		if f.Changed("name") {
			patch.Name = &name
		}
		if f.Changed("description") {
			patch.Description = &description
		}
		if f.Changed("category") {
			patch.Category = &category
		}
		if f.Changed("image") {
			patch.Image = &image
		}
		if f.Changed("price") {
			p, err := parseAmount(price)
			if err != nil {
				return err
			}
			patch.Price = &p
		}

		updated, err := c.app.UpdateFood(ctx, id, patch)
		if err != nil {
			return err
		}
		c.printf("✓ Updated %s (%s)\n", updated.Name, money.Format(updated.Price))
		return nil
	})

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "new name")
	f.StringVar(&price, "price", "", "new price")
	f.StringVar(&category, "category", "", "new category")
	f.StringVar(&description, "description", "", "new description")
	f.StringVar(&image, "image", "", "new image")
	return cmd
}

func newFoodDeleteCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(c, func(ctx context.Context, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			err = c.app.DeleteFood(ctx, id, func(it food.Item) bool {
				return yes || c.confirm("Delete "+it.Name+"?")
			})
			if errors.Is(err, app.ErrNotConfirmed) {
				c.printf("Cancelled\n")
				return nil
			}
			if err != nil {
				return err
			}
			c.printf("✓ Deleted item %d\n", id)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newFoodFeatureCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "feature ID",
		Short: "Toggle whether an item is featured",
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(c, func(ctx context.Context, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			featured, err := c.app.ToggleFeatured(ctx, id)
			if err != nil {
				return err
			}
			it, _ := c.app.Food(id)
			if featured {
				c.printf("★ %s is now featured\n", it.Name)
			} else {
				c.printf("☆ %s is no longer featured\n", it.Name)
			}
			return nil
		}),
	}
}

// confirm asks a yes/no question on the CLI's input. Anything but y/yes
// is a no, including EOF.
func (c *cli) confirm(question string) bool {
	c.printf("%s [y/N]: ", question)
	answer, _ := c.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
