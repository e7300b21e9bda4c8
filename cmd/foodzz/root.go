package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"foodzz/internal/app"
	"foodzz/internal/auth"
	"foodzz/internal/cart"
	"foodzz/internal/config"
	"foodzz/internal/logger"
	"foodzz/internal/store/local"
	"foodzz/internal/store/remote"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries what every command needs. It is filled in by the root
// command's PersistentPreRunE.
type cli struct {
	in  *bufio.Reader
	out io.Writer

	loadConfig func() (*config.Config, error)

	verbose  bool
	username string
	password string

	cfg   *config.Config
	app   *app.App
	sub   app.Subscriber
	close func() error
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{
		in:         bufio.NewReader(in),
		out:        out,
		loadConfig: config.LoadConfig,
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "foodzz",
		Short:         "Order food from the foodzz menu and manage the shop",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(cmd.Context()); err != nil {
				return err
			}
			cmd.SetContext(logger.WithFields(cmd.Context(), zap.String("store", c.cfg.StoreMode)))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newMenuCmd(c),
		newFeaturedCmd(c),
		newCartCmd(c),
		newCheckoutCmd(c),
		newAdminCmd(c),
	)
	return root
}

// setup loads config, opens the store picked by STORE_MODE and loads the
// cart and the menu.
func (c *cli) setup(ctx context.Context) error {
	logger.InitCLI(c.verbose)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(config.RoleClient); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.cfg = cfg

	store, carts, err := c.openStore(ctx)
	if err != nil {
		return err
	}

	c.app = app.New(store, cart.NewManager(carts, cfg.Policy))
	if err := c.app.Start(ctx); err != nil {
		_ = c.teardown()
		return err
	}

	logger.L().Debug("store ready",
		zap.String("mode", cfg.StoreMode),
		zap.Int("menu_items", len(c.app.Menu("", ""))),
	)
	return nil
}

// openStore dials Redis for the cart in both modes. In local mode the same
// connection also holds the catalog and the orders.
func (c *cli) openStore(ctx context.Context) (app.Store, cart.Store, error) {
	cfg := c.cfg

	rdb, err := local.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	c.close = rdb.Close

	switch cfg.StoreMode {
	case config.StoreRemote:
		client := remote.New(cfg.APIURL, remote.WithTimeout(cfg.RequestTimeout))
		c.sub = client
		return client, local.NewCartStore(rdb, cfg.KVPrefix), nil
	default:
		creds, err := auth.NewCredentials(cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return nil, nil, fmt.Errorf("hash admin password: %w", err)
		}
		st := local.New(rdb, local.Options{
			Prefix:      cfg.KVPrefix,
			Policy:      cfg.Policy,
			Seed:        cfg.Menu,
			Credentials: creds,
		})
		c.sub = st
		return st, st, nil
	}
}

func (c *cli) teardown() error {
	if c.close == nil {
		return nil
	}
	err := c.close()
	c.close = nil
	return err
}

// login signs in with --username/--password, falling back to
// ADMIN_USERNAME/ADMIN_PASSWORD.
func (c *cli) login(ctx context.Context) error {
	username, password := c.username, c.password
	if username == "" {
		username = c.cfg.AdminUsername
	}
	if password == "" {
		password = c.cfg.AdminPassword
	}
	return c.app.Login(ctx, username, password)
}

// isRemote reports whether admin-only reads need a login first.
func (c *cli) isRemote() bool {
	return c.cfg.StoreMode == config.StoreRemote
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
