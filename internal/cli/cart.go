package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the cart kept on this machine",
	}
	cmd.AddCommand(a.cartListCmd(), a.cartAddCmd(), a.cartSetCmd(), a.cartRemoveCmd(), a.cartClearCmd())
	return cmd
}

func (a *app) showCart(cmd *cobra.Command) {
	writeCart(cmd.OutOrStdout(), a.cart.Items(), a.cart.Count(), a.cart.Total())
}

func (a *app) cartListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the cart",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.showCart(cmd)
		},
	}
}

func (a *app) cartAddCmd() *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Add copies of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			book, err := a.api.Book(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := a.cart.Add(book, qty); err != nil {
				return err
			}
			writeOK(cmd.OutOrStdout(), "added %d x %s", qty, book.Title)
			a.showCart(cmd)
			return nil
		},
	}
	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "number of copies")
	return cmd
}

func (a *app) cartSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <book-id> <qty>",
		Short: "Change the quantity of a book, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			if err := a.cart.SetQuantity(id, qty); err != nil {
				return err
			}
			a.showCart(cmd)
			return nil
		},
	}
}

func (a *app) cartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <book-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a book from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			if err := a.cart.Remove(id); err != nil {
				return err
			}
			a.showCart(cmd)
			return nil
		},
	}
}

func (a *app) cartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cart.Clear(); err != nil {
				return err
			}
			writeOK(cmd.OutOrStdout(), "cart cleared")
			return nil
		},
	}
}
