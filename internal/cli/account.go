package cli

import (
	"github.com/spf13/cobra"

	"github.com/azaliaz/bookshop/internal/client"
	"github.com/azaliaz/bookshop/internal/domain/models"
)

func (a *app) registerCmd() *cobra.Command {
	var r client.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.api.Register(cmd.Context(), r)
			if err != nil {
				return err
			}
			if err := a.remember(s); err != nil {
				return err
			}
			writeOK(cmd.OutOrStdout(), "welcome, %s", s.User.FullName())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&r.Email, "email", "", "email address")
	f.StringVar(&r.Password, "password", "", "password, at least 6 characters")
	f.StringVar(&r.FirstName, "first-name", "", "first name")
	f.StringVar(&r.LastName, "last-name", "", "last name")
	f.StringVar(&r.Avatar, "avatar", "", "avatar URL")
	f.StringVar(&r.Country, "country", "", "country")
	f.StringVar(&r.City, "city", "", "city")
	f.IntVar(&r.Age, "age", 0, "age")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.remember(s); err != nil {
				return err
			}
			writeOK(cmd.OutOrStdout(), "logged in as %s", s.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.forget(); err != nil {
				return err
			}
			writeOK(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user and their reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			user, err := a.api.Me(ctx)
			if err != nil {
				return err
			}
			reviews, err := a.api.UserReviews(ctx, user.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeUser(out, user)
			writeReviews(out, reviews)
			return nil
		},
	}
}

// stringFlag returns the flag value only when the user set it.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}
	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields, unset flags stay as they are",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			user, err := a.api.UpdateProfile(cmd.Context(), models.ProfileUpdate{
				FirstName: stringFlag(cmd, "first-name"),
				LastName:  stringFlag(cmd, "last-name"),
				Avatar:    stringFlag(cmd, "avatar"),
				Country:   stringFlag(cmd, "country"),
				City:      stringFlag(cmd, "city"),
				Age:       intFlag(cmd, "age"),
			})
			if err != nil {
				return err
			}
			a.login.User = user
			if err := a.saveLogin(); err != nil {
				return err
			}
			writeUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
	f := update.Flags()
	f.String("first-name", "", "first name")
	f.String("last-name", "", "last name")
	f.String("avatar", "", "avatar URL")
	f.String("country", "", "country")
	f.String("city", "", "city")
	f.Int("age", 0, "age")
	cmd.AddCommand(update)
	return cmd
}

func (a *app) passwordCmd() *cobra.Command {
	var current, next string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.api.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			writeOK(cmd.OutOrStdout(), "password changed")
			return nil
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "current password")
	cmd.Flags().StringVar(&next, "new", "", "new password, at least 6 characters")
	return cmd
}
