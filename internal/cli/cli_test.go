package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders-management/internal/apperr"
	"orders-management/internal/datastore"
	"orders-management/internal/testutil"
)

type harness struct {
	app      *App
	out, err *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.db")
	log, _ := testutil.NullLog()
	h := &harness{out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.app = &App{
		Open: func(ctx context.Context) (datastore.DataStore, error) {
			return datastore.NewDataStore(ctx, datastore.Config{
				Type:             datastore.SQLiteStore,
				ConnectionString: path,
				Logger:           log,
			})
		},
		ConnectionString: path,
		Out:              h.out,
		Err:              h.err,
	}
	require.Equal(t, ExitSuccess, h.run("init-db"))
	return h
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.err.Reset()
	return h.app.Execute(context.Background(), args)
}

func TestCLI_ClientLifecycle(t *testing.T) {
	h := newHarness(t)

	code := h.run("client", "create", "--name", "Ana", "--address", "Main St 1",
		"--email", "ana@example.com", "--age", "30", "--phone", "0711111111")
	require.Equal(t, ExitSuccess, code, h.err.String())
	assert.Equal(t, "Created client: Ana (ID: 1)\n", h.out.String())

	code = h.run("client", "update", "1", "--address", "Side St 2")
	require.Equal(t, ExitSuccess, code, h.err.String())

	code = h.run("--format", "json", "client", "get", "1")
	require.Equal(t, ExitSuccess, code)
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Address string `json:"address"`
			Email   string `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Side St 2", resp.Data.Address)
	assert.Equal(t, "ana@example.com", resp.Data.Email)

	code = h.run("client", "create", "--name", "Kid", "--address", "x", "--email", "kid@example.com", "--age", "9", "--phone", "1")
	assert.Equal(t, ExitRejected, code)
	assert.Contains(t, h.err.String(), "clients must be at least 18 years old")

	require.Equal(t, ExitSuccess, h.run("client", "delete", "1"))
	assert.Equal(t, ExitRejected, h.run("client", "get", "1"))
	assert.Contains(t, h.err.String(), "the client with id = 1 was not found")

	require.Equal(t, ExitSuccess, h.run("client", "list"))
	assert.Equal(t, "No clients found.\n", h.out.String())
}

func TestCLI_SeedAndOrder(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, ExitSuccess, h.run("seed-catalog", "--file", filepath.Join("testdata", "catalog.yaml")))
	assert.Equal(t, "Catalog seeded: 2 of 2 products added.\n", h.out.String())

	require.Equal(t, ExitSuccess, h.run("product", "get", "2"))
	assert.Contains(t, h.out.String(), "Price: 1,234.50")

	require.Equal(t, ExitSuccess, h.run("client", "create", "--name", "Ana", "--address", "Main St 1",
		"--email", "ana@example.com", "--age", "30", "--phone", "0711111111"))

	code := h.run("order", "place", "--client", "1", "--product", "1", "--quantity", "3")
	require.Equal(t, ExitSuccess, code, h.err.String())
	assert.Contains(t, h.out.String(), "Order 1 placed: 3 x Widget\n")
	assert.Contains(t, h.out.String(), "Bill 1: 30.00")

	code = h.run("--format", "json", "order", "place", "--client", "1", "--product", "1", "--quantity", "3")
	assert.Equal(t, ExitRejected, code)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "insufficient_stock", resp.Error.Code)

	require.Equal(t, ExitSuccess, h.run("bill", "list", "--order", "1"))
	assert.Contains(t, h.out.String(), "Total: 30.00")

	require.Equal(t, ExitSuccess, h.run("order", "list"))
	assert.Contains(t, h.out.String(), "ID: 1  Client: 1  Product: 1  Quantity: 3")

	require.Equal(t, ExitSuccess, h.run("product", "update", "1", "--stock", "10"))
	require.Equal(t, ExitSuccess, h.run("--format", "json", "product", "list"))
	assert.Contains(t, h.out.String(), `"stock":10`)
}

func TestCLI_UsageErrors(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, ExitCommandError, h.run("client", "get", "abc"))
	assert.Contains(t, h.err.String(), `invalid id "abc"`)

	assert.Equal(t, ExitCommandError, h.run("--format", "yaml", "client", "list"))
	assert.Equal(t, ExitCommandError, h.run("order", "place", "--client", "1"))
	assert.Equal(t, ExitCommandError, h.run("seed-catalog", "--file", "does-not-exist.yaml"))
	assert.Equal(t, ExitCommandError, h.run("frobnicate"))
}

func TestCLI_OpenFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	app := &App{
		Open: func(context.Context) (datastore.DataStore, error) {
			return nil, errors.New("connection refused")
		},
		Out: &out,
		Err: &errOut,
	}
	assert.Equal(t, ExitCommandError, app.Execute(context.Background(), []string{"client", "list"}))
	assert.Contains(t, errOut.String(), "failed to initialize data store: connection refused")
}

func TestWrapExitError(t *testing.T) {
	assert.Equal(t, ExitRejected, WrapExitError("x", apperr.ErrInsufficientStock).Code)
	assert.Equal(t, ExitRejected, WrapExitError("x", &apperr.NotFoundError{Entity: "client", ID: 1}).Code)
	assert.Equal(t, ExitCommandError, WrapExitError("x", &apperr.PersistenceError{Op: "select", Table: "client", Err: errors.New("io")}).Code)
	consistency := &apperr.ConsistencyError{Step: "create bill", Err: apperr.Invalid("bill", "createdAt", "date cannot be in the future")}
	assert.Equal(t, ExitCommandError, WrapExitError("x", consistency).Code)
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("plain")))
}

func TestMaskConnectionString(t *testing.T) {
	assert.Equal(t, "***", maskConnectionString("short"))
	assert.Equal(t, "postgres:/...de=disable", maskConnectionString("postgres://user:secret@db:5432/orders?sslmode=disable"))
}
