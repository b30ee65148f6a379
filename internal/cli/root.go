// Package cli implements the ordersctl commands on top of the business
// layer in internal/datastore.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"orders-management/internal/datastore"
)

// Opener opens the data store a command runs against.
type Opener func(ctx context.Context) (datastore.DataStore, error)

// App holds what the commands need from the process.
type App struct {
	Open Opener
	// ConnectionString is only shown, masked, by init-db.
	ConnectionString string
	Out              io.Writer
	Err              io.Writer

	format string
	out    *OutputFormatter
}

// Execute runs the command line and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	a.out = nil
	root := a.Command()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if a.out == nil {
		a.out = NewOutputFormatter("text", a.Out, a.Err)
	}
	a.out.Error(err)
	return GetExitCode(err)
}

// Command builds the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "ordersctl",
		Short:         "Manage clients, products, orders and bills",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.format != "text" && a.format != "json" {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("unknown output format %q", a.format)}
			}
			a.out = NewOutputFormatter(a.format, a.Out, a.Err)
			return nil
		},
	}
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	root.PersistentFlags().StringVar(&a.format, "format", "text", "Output format: text or json")

	root.AddCommand(
		a.initDBCommand(),
		a.seedCatalogCommand(),
		a.clientCommand(),
		a.productCommand(),
		a.orderCommand(),
		a.billCommand(),
	)
	return root
}

// withStore opens the data store around fn.
func (a *App) withStore(fn func(cmd *cobra.Command, args []string, ds datastore.DataStore) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ds, err := a.Open(cmd.Context())
		if err != nil {
			return &ExitError{Code: ExitCommandError, Message: "failed to initialize data store", Err: err}
		}
		defer ds.Close()
		return fn(cmd, args, ds)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid id %q", s)}
	}
	return id, nil
}

// clean puts free text into canonical composed form so equal-looking names
// and emails compare equal in uniqueness checks.
func clean(s string) string {
	return norm.NFC.String(s)
}
