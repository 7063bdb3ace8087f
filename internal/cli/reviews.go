package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/azaliaz/bookshop/internal/domain/models"
)

func (a *app) reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Write and manage your book reviews",
	}
	cmd.AddCommand(a.reviewAddCmd(), a.reviewEditCmd(), a.reviewDeleteCmd())
	return cmd
}

func (a *app) reviewAddCmd() *cobra.Command {
	var (
		rating  int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Review a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "book")
			if err != nil {
				return err
			}
			review, err := a.api.AddReview(cmd.Context(), id, rating, comment)
			if err != nil {
				return err
			}
			writeOK(cmd.OutOrStdout(), "review %d posted", review.ID)
			return nil
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating from 1 to 5")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "review text")
	return cmd
}

func (a *app) reviewEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <review-id>",
		Short: "Change the rating or text of your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "review")
			if err != nil {
				return err
			}
			upd := models.ReviewUpdate{Rating: intFlag(cmd, "rating"), Comment: stringFlag(cmd, "comment")}
			if upd.Rating == nil && upd.Comment == nil {
				return errors.New("nothing to change, pass --rating or --comment")
			}
			review, err := a.api.UpdateReview(cmd.Context(), id, upd)
			if err != nil {
				return err
			}
			writeReviews(cmd.OutOrStdout(), []models.Review{review})
			return nil
		},
	}
	cmd.Flags().IntP("rating", "r", 0, "rating from 1 to 5")
	cmd.Flags().StringP("comment", "c", "", "review text")
	return cmd
}

func (a *app) reviewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Delete your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseID(args[0], "review")
			if err != nil {
				return err
			}
			if err := a.api.DeleteReview(cmd.Context(), id); err != nil {
				return err
			}
			writeOK(cmd.OutOrStdout(), "review %d deleted", id)
			return nil
		},
	}
}
