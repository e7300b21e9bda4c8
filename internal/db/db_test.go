package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"os/exec"
	"testing"

	"foodzz/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock drivers ---
// fakeDriver hands out connections whose Ping returns pingErr.

type fakeDriver struct{ pingErr error }

func (d fakeDriver) Open(string) (driver.Conn, error) { return fakeConn(d), nil }

type fakeConn struct{ pingErr error }

func (c fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c fakeConn) Close() error                        { return nil }
func (c fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }
func (c fakeConn) Ping(ctx context.Context) error      { return c.pingErr }

func init() {
	sql.Register("foodzz_ping_ok", fakeDriver{})
	sql.Register("foodzz_ping_down", fakeDriver{pingErr: errors.New("connection refused")})
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "Defaults to sslmode disable",
			cfg:  config.Config{DBHost: "localhost", DBUser: "foodzz", DBPassword: "secret", DBName: "foodzz", DBPort: "5432"},
			want: "host=localhost user=foodzz password=secret dbname=foodzz port=5432 sslmode=disable",
		},
		{
			name: "Explicit sslmode",
			cfg:  config.Config{DBHost: "db.internal", DBUser: "app", DBName: "orders", DBPort: "6432", DBSSLMode: "require"},
			want: "host=db.internal user=app password= dbname=orders port=6432 sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(&tt.cfg))
		})
	}
}

func TestNewDatabase(t *testing.T) {
	cfg := &config.Config{DBHost: "localhost", DBName: "foodzz"}

	t.Run("Success", func(t *testing.T) {
		db, err := newDatabaseWithDriver(cfg, "foodzz_ping_ok")
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, 20, db.Stats().MaxOpenConnections)
	})

	t.Run("Ping fails", func(t *testing.T) {
		db, err := newDatabaseWithDriver(cfg, "foodzz_ping_down")

		assert.Nil(t, db)
		assert.ErrorContains(t, err, "failed to ping DB")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("Unknown driver", func(t *testing.T) {
		db, err := newDatabaseWithDriver(cfg, "no_such_driver")

		assert.Nil(t, db)
		assert.ErrorContains(t, err, "failed to connect to DB")
	})
}

func TestInitDB_ExitsWhenUnreachable(t *testing.T) {
	// InitDB calls Fatal, so run it in a child process.
	if os.Getenv("FOODZZ_DB_CRASHER") == "1" {
		InitDB(&config.Config{DBHost: "127.0.0.1", DBPort: "1", DBName: "foodzz"})
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestInitDB_ExitsWhenUnreachable")
	cmd.Env = append(os.Environ(), "FOODZZ_DB_CRASHER=1")
	err := cmd.Run()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.False(t, exitErr.Success())
}
