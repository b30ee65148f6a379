package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"orders-management/internal/datastore"
	"orders-management/internal/fulfillment"
	"orders-management/internal/model"
)

func (a *App) orderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place and list orders",
	}
	cmd.AddCommand(a.orderPlaceCommand(), a.orderListCommand())
	return cmd
}

// placedOrder is the JSON shape of a fulfilled order.
type placedOrder struct {
	RunID string      `json:"run_id"`
	State string      `json:"state"`
	Order model.Order `json:"order"`
	Bill  model.Bill  `json:"bill"`
}

func (a *App) orderPlaceCommand() *cobra.Command {
	var req fulfillment.Request
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place an order and bill it",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, _ []string, ds datastore.DataStore) error {
			res, err := ds.PlaceOrder(cmd.Context(), req)
			if err != nil {
				return WrapExitError("failed to place order", err)
			}
			out := placedOrder{RunID: res.RunID.String(), State: string(res.State), Order: res.Order, Bill: res.Bill}
			return a.out.Success(out, func(p *message.Printer) {
				fmt.Fprintf(a.Out, "Order %d placed: %d x %s\n", res.Order.ID, res.Order.Quantity, res.Product.Name)
				fmt.Fprintf(a.Out, "Bill %d: %s (%s)\n", res.Bill.ID, Amount(p, res.Bill.TotalAmount), res.Bill.CreatedAt.Format(time.RFC3339))
			})
		}),
	}
	cmd.Flags().Int64Var(&req.ClientID, "client", 0, "Client id")
	cmd.Flags().Int64Var(&req.ProductID, "product", 0, "Product id")
	cmd.Flags().IntVar(&req.Quantity, "quantity", 1, "Units to order")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func (a *App) orderListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all orders",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, _ []string, ds datastore.DataStore) error {
			orders, err := ds.ListOrders(cmd.Context())
			if err != nil {
				return WrapExitError("failed to list orders", err)
			}
			return a.out.Success(orders, func(p *message.Printer) {
				if len(orders) == 0 {
					fmt.Fprintln(a.Out, "No orders found.")
					return
				}
				fmt.Fprintln(a.Out, "Orders:")
				for _, o := range orders {
					fmt.Fprintf(a.Out, "  ID: %d  Client: %d  Product: %d  Quantity: %d\n", o.ID, o.ClientID, o.ProductID, o.Quantity)
				}
			})
		}),
	}
}

func (a *App) billCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Inspect bills",
	}
	cmd.AddCommand(a.billListCommand())
	return cmd
}

func (a *App) billListCommand() *cobra.Command {
	var orderID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills, optionally for one order",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, _ []string, ds datastore.DataStore) error {
			var (
				bills []model.Bill
				err   error
			)
			if cmd.Flags().Changed("order") {
				bills, err = ds.BillsForOrder(cmd.Context(), orderID)
			} else {
				bills, err = ds.ListBills(cmd.Context())
			}
			if err != nil {
				return WrapExitError("failed to list bills", err)
			}
			return a.out.Success(bills, func(p *message.Printer) {
				if len(bills) == 0 {
					fmt.Fprintln(a.Out, "No bills found.")
					return
				}
				fmt.Fprintln(a.Out, "Bills:")
				for _, b := range bills {
					fmt.Fprintf(a.Out, "  ID: %d  Order: %d  Total: %s  Created: %s\n",
						b.ID, b.OrderID, Amount(p, b.TotalAmount), b.CreatedAt.Format(time.RFC3339))
				}
			})
		}),
	}
	cmd.Flags().Int64Var(&orderID, "order", 0, "Only bills for this order id")
	return cmd
}
