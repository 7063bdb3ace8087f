package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/azaliaz/bookshop/internal/catalog"
	"github.com/azaliaz/bookshop/internal/client"
)

func (a *app) homeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show featured books and new releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.api.Highlights(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeBooks(out, "Featured", h.Featured)
			fmt.Fprintln(out)
			writeBooks(out, "New releases", h.NewReleases)
			return nil
		},
	}
}

// floatFlag returns the flag value only when the user set it.
func floatFlag(cmd *cobra.Command, name string) (*float64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (a *app) catalogCmd() *cobra.Command {
	var p client.ListParams
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List books with filters, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if p.MinPrice, err = floatFlag(cmd, "min-price"); err != nil {
				return err
			}
			if p.MaxPrice, err = floatFlag(cmd, "max-price"); err != nil {
				return err
			}
			if p.MinRating, err = floatFlag(cmd, "min-rating"); err != nil {
				return err
			}
			if _, err := catalog.ParseSortKey(p.Sort); err != nil {
				return fmt.Errorf("%w %q", err, p.Sort)
			}
			page, err := a.api.ListBooks(cmd.Context(), p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeBooks(out, "Catalog", page.Books)
			pages := (page.Total + page.Limit - 1) / max(page.Limit, 1)
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d book(s)", page.Page, max(pages, 1), page.Total)))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Genre, "genre", "", "only books tagged with this genre")
	f.Float64("min-price", 0, "minimum price")
	f.Float64("max-price", 0, "maximum price")
	f.Float64("min-rating", 0, "minimum rating")
	f.StringVar(&p.Sort, "sort", "", "price-asc, price-desc, rating-desc or newest")
	f.IntVar(&p.Page, "page", 1, "page number")
	f.IntVar(&p.Limit, "limit", 0, "books per page")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search books by title, author or genre",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := catalog.ParseSearchField(by)
			if err != nil {
				return fmt.Errorf("%w %q", err, by)
			}
			minRating, err := floatFlag(cmd, "min-rating")
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			res, err := a.api.SearchBooks(cmd.Context(), query, field, minRating)
			if err != nil {
				return err
			}
			writeBooks(cmd.OutOrStdout(), fmt.Sprintf("Results for %q (%d)", query, res.Total), res.Books)
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", string(catalog.ByAll), "all, title, author or genre")
	cmd.Flags().Float64("min-rating", 0, "minimum rating")
	return cmd
}

func (a *app) bookCmd() *cobra.Command {
	var asc bool
	cmd := &cobra.Command{
		Use:   "book <id>",
		Short: "Show a book with its reviews and similar titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			book, err := a.api.Book(ctx, id)
			if err != nil {
				return err
			}
			reviews, err := a.api.BookReviews(ctx, id, asc)
			if err != nil {
				return err
			}
			similar, err := a.api.SimilarBooks(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeBook(out, book)
			fmt.Fprintln(out)
			writeReviews(out, reviews)
			fmt.Fprintln(out)
			writeBooks(out, "You may also like", similar)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asc, "oldest-first", false, "list reviews oldest first")
	return cmd
}
