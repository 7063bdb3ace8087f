// Package cli is the bookshop terminal front end: it browses the catalog
// through the bookstore API and keeps the cart and login on the local disk.
package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/azaliaz/bookshop/internal/cart"
	"github.com/azaliaz/bookshop/internal/client"
	"github.com/azaliaz/bookshop/internal/domain/consts"
	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/localstore"
	"github.com/azaliaz/bookshop/internal/logger"
)

var errNotLoggedIn = errors.New("not logged in, run `bookshop login` first")

// savedLogin is what the CLI remembers between runs under the user key.
type savedLogin struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type app struct {
	apiURL string
	dir    string
	debug  bool

	files *localstore.FileStore
	api   *client.Client
	cart  *cart.Cart
	login savedLogin
}

func (a *app) open() error {
	logger.Get(a.debug)
	dir := a.dir
	if dir == "" {
		var err error
		if dir, err = localstore.DefaultDir(); err != nil {
			return fmt.Errorf("locate state dir: %w", err)
		}
	}
	a.files = localstore.New(dir)
	a.api = client.New(a.apiURL)
	a.cart = cart.Open(cart.NewLocalStore(a.files))

	if _, err := a.files.Load(consts.UserKey, &a.login); err != nil {
		logger.Get().Warn().Err(err).Msg("stored login is unreadable, ignoring it")
		a.login = savedLogin{}
	}
	if a.login.Token != "" {
		a.api.SetToken(a.login.Token)
	}
	return nil
}

func (a *app) remember(s client.Session) error {
	a.login = savedLogin{Token: s.Token, User: s.User}
	a.api.SetToken(s.Token)
	return a.saveLogin()
}

func (a *app) saveLogin() error {
	return a.files.Save(consts.UserKey, a.login)
}

func (a *app) forget() error {
	a.login = savedLogin{}
	return a.files.Delete(consts.UserKey)
}

func (a *app) requireLogin() error {
	if a.login.Token == "" {
		return errNotLoggedIn
	}
	return nil
}

func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "bookshop",
		Short:         "Browse the bookstore, manage your cart and reviews",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api",
		cmp.Or(os.Getenv("BOOKSHOP_API"), consts.DefaultAPIAddr), "bookstore API base URL")
	root.PersistentFlags().StringVar(&a.dir, "dir", os.Getenv("BOOKSHOP_DIR"), "state directory (default ~/.bookshop)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		a.homeCmd(),
		a.catalogCmd(),
		a.searchCmd(),
		a.bookCmd(),
		a.cartCmd(),
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.profileCmd(),
		a.passwordCmd(),
		a.reviewCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code. Any
// failure is printed to stderr as a banner.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, Banner(err))
		return 1
	}
	return 0
}

func parseID(raw, what string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s id %q", what, raw)
	}
	return id, nil
}
