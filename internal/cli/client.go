package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"orders-management/internal/datastore"
	"orders-management/internal/model"
)

func (a *App) clientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(
		a.clientCreateCommand(),
		a.clientListCommand(),
		a.clientGetCommand(),
		a.clientUpdateCommand(),
		a.clientDeleteCommand(),
	)
	return cmd
}

func bindClientFlags(cmd *cobra.Command, c *model.Client) {
	cmd.Flags().StringVar(&c.Name, "name", "", "Client name")
	cmd.Flags().StringVar(&c.Address, "address", "", "Postal address")
	cmd.Flags().StringVar(&c.Email, "email", "", "Email address")
	cmd.Flags().IntVar(&c.Age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&c.Phone, "phone", "", "Phone number")
}

func cleanClient(c model.Client) model.Client {
	c.Name = clean(c.Name)
	c.Address = clean(c.Address)
	c.Email = clean(c.Email)
	c.Phone = clean(c.Phone)
	return c
}

func (a *App) printClient(c model.Client) {
	fmt.Fprintf(a.Out, "  ID: %d\n", c.ID)
	fmt.Fprintf(a.Out, "  Name: %s\n", c.Name)
	fmt.Fprintf(a.Out, "  Address: %s\n", c.Address)
	fmt.Fprintf(a.Out, "  Email: %s\n", c.Email)
	fmt.Fprintf(a.Out, "  Age: %d\n", c.Age)
	fmt.Fprintf(a.Out, "  Phone: %s\n", c.Phone)
}

func (a *App) clientCreateCommand() *cobra.Command {
	var c model.Client
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, _ []string, ds datastore.DataStore) error {
			created, err := ds.CreateClient(cmd.Context(), cleanClient(c))
			if err != nil {
				return WrapExitError("failed to create client", err)
			}
			return a.out.Success(created, func(p *message.Printer) {
				fmt.Fprintf(a.Out, "Created client: %s (ID: %d)\n", created.Name, created.ID)
			})
		}),
	}
	bindClientFlags(cmd, &c)
	return cmd
}

func (a *App) clientListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all clients",
		Args:  cobra.NoArgs,
		RunE: a.withStore(func(cmd *cobra.Command, _ []string, ds datastore.DataStore) error {
			clients, err := ds.ListClients(cmd.Context())
			if err != nil {
				return WrapExitError("failed to list clients", err)
			}
			return a.out.Success(clients, func(p *message.Printer) {
				if len(clients) == 0 {
					fmt.Fprintln(a.Out, "No clients found.")
					return
				}
				fmt.Fprintln(a.Out, "Clients:")
				for _, c := range clients {
					a.printClient(c)
					fmt.Fprintln(a.Out, "  ---")
				}
			})
		}),
	}
}

func (a *App) clientGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, ds datastore.DataStore) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := ds.GetClient(cmd.Context(), id)
			if err != nil {
				return WrapExitError("failed to get client", err)
			}
			return a.out.Success(c, func(p *message.Printer) {
				fmt.Fprintln(a.Out, "Client Details:")
				a.printClient(c)
			})
		}),
	}
}

func (a *App) clientUpdateCommand() *cobra.Command {
	var c model.Client
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a client",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, ds datastore.DataStore) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := ds.GetClient(cmd.Context(), id)
			if err != nil {
				return WrapExitError("failed to get client", err)
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				current.Name = c.Name
			}
			if flags.Changed("address") {
				current.Address = c.Address
			}
			if flags.Changed("email") {
				current.Email = c.Email
			}
			if flags.Changed("age") {
				current.Age = c.Age
			}
			if flags.Changed("phone") {
				current.Phone = c.Phone
			}
			current = cleanClient(current)
			if err := ds.UpdateClient(cmd.Context(), current); err != nil {
				return WrapExitError("failed to update client", err)
			}
			return a.out.Success(current, func(p *message.Printer) {
				fmt.Fprintf(a.Out, "Updated client %d\n", current.ID)
			})
		}),
	}
	bindClientFlags(cmd, &c)
	return cmd
}

func (a *App) clientDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(func(cmd *cobra.Command, args []string, ds datastore.DataStore) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := ds.DeleteClient(cmd.Context(), id); err != nil {
				return WrapExitError("failed to delete client", err)
			}
			return a.out.Success(map[string]int64{"deleted": id}, func(p *message.Printer) {
				fmt.Fprintf(a.Out, "Deleted client %d\n", id)
			})
		}),
	}
}
