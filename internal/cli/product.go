package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"orders-management/internal/datastore"
	"orders-management/internal/model"
)

func (a *App) productCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products",
	}
	cmd.AddCommand(
		a.productCreateCommand(),
		a.productListCommand(),
		a.productGetCommand(),
		a.productUpdateCommand(),
		a.productDeleteCommand(),
	)
	return cmd
}

func bindProductFlags(cmd *cobra.Command, p *model.Product) {
	cmd.Flags().StringVar(&p.Name, "name", "", "Product name")
	cmd.Flags().Float64Var(&p.Price, "price", 0, "Unit price")
	cmd.Flags().IntVar(&p.Stock, "stock", 0, "Units in stock")
}

func (a *App) printProduct(p *message.Printer, pr model.Product) {
	fmt.Fprintf(a.Out, "  ID: %d\n", pr.ID)
	fmt.Fprintf(a.Out, "  Name: %s\n", pr.Name)
	fmt.Fprintf(a.Out, "  Price: %s\n", Amount(p, pr.Price))
	fmt.Fprintf(a.Out, "  Stock: %d\n", pr.Stock)
}

func (a *App) productCreateCommand() *cobra.Command {
	var pr model.Product
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, _ []string, ds datastore.DataStore) error {
			pr.Name = clean(pr.Name)
			created, err := ds.CreateProduct(cmd.Context(), pr)
			if err != nil {
				return WrapExitError("failed to create product", err)
			}
			return a.out.Success(created, func(p *message.Printer) {
				fmt.Fprintf(a.Out, "Created product: %s (ID: %d)\n", created.Name, created.ID)
			})
		}),
	}
	bindProductFlags(cmd, &pr)
	return cmd
}

func (a *App) productListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, _ []string, ds datastore.DataStore) error {
			products, err := ds.ListProducts(cmd.Context())
			if err != nil {
				return WrapExitError("failed to list products", err)
			}
			return a.out.Success(products, func(p *message.Printer) {
				if len(products) == 0 {
					fmt.Fprintln(a.Out, "No products found.")
					return
				}
				fmt.Fprintln(a.Out, "Products:")
				for _, pr := range products {
					a.printProduct(p, pr)
					fmt.Fprintln(a.Out, "  ---")
				}
			})
		}),
	}
}

func (a *App) productGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, ds datastore.DataStore) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pr, err := ds.GetProduct(cmd.Context(), id)
			if err != nil {
				return WrapExitError("failed to get product", err)
			}
			return a.out.Success(pr, func(p *message.Printer) {
				fmt.Fprintln(a.Out, "Product Details:")
				a.printProduct(p, pr)
			})
		}),
	}
}

func (a *App) productUpdateCommand() *cobra.Command {
	var pr model.Product
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, ds datastore.DataStore) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := ds.GetProduct(cmd.Context(), id)
			if err != nil {
				return WrapExitError("failed to get product", err)
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				current.Name = clean(pr.Name)
			}
			if flags.Changed("price") {
				current.Price = pr.Price
			}
			if flags.Changed("stock") {
				current.Stock = pr.Stock
			}
			if err := ds.UpdateProduct(cmd.Context(), current); err != nil {
				return WrapExitError("failed to update product", err)
			}
			return a.out.Success(current, func(p *message.Printer) {
				fmt.Fprintf(a.Out, "Updated product %d\n", current.ID)
			})
		}),
	}
	bindProductFlags(cmd, &pr)
	return cmd
}

func (a *App) productDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, ds datastore.DataStore) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := ds.DeleteProduct(cmd.Context(), id); err != nil {
				return WrapExitError("failed to delete product", err)
			}
			return a.out.Success(map[string]int64{"deleted": id}, func(p *message.Printer) {
				fmt.Fprintf(a.Out, "Deleted product %d\n", id)
			})
		}),
	}
}
