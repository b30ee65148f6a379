package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"orders-management/internal/datastore"
)

func (a *App) initDBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, _ []string, ds datastore.DataStore) error {
			if err := ds.InitDB(cmd.Context()); err != nil {
				return WrapExitError("failed to initialize database", err)
			}
			return a.out.Success(map[string]string{"database": "initialized"}, func(p *message.Printer) {
				fmt.Fprintf(a.Out, "Database initialized successfully (%s).\n", maskConnectionString(a.ConnectionString))
			})
		}),
	}
}

func (a *App) seedCatalogCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-catalog",
		Short: "Add the products listed in a YAML catalog",
		Long: `Add the products listed in a YAML catalog file. Products whose name is
already stored are skipped, so seeding twice is harmless.

Example catalog:
  products:
    - name: Widget
      price: 10.0
      stock: 5`,
		Args: cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, _ []string, ds datastore.DataStore) error {
			products, err := datastore.LoadCatalog(file)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "failed to read catalog", Err: err}
			}
			added, err := ds.SeedCatalog(cmd.Context(), products)
			if err != nil {
				return WrapExitError("failed to seed catalog", err)
			}
			return a.out.Success(map[string]int{"added": added, "listed": len(products)}, func(p *message.Printer) {
				fmt.Fprintf(a.Out, "Catalog seeded: %d of %d products added.\n", added, len(products))
			})
		}),
	}
	cmd.Flags().StringVar(&file, "file", "catalog.yaml", "Path to the YAML catalog")
	return cmd
}
