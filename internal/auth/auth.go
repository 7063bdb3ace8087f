// Package auth is the username/password gateway of the demo server. A
// session id is the only proof of identity once a user has logged in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/logger"
	"github.com/azaliaz/bookshop/internal/session"
	storerrors "github.com/azaliaz/bookshop/internal/storage/errors"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUsernameLength     = errors.New("username must be 3 to 20 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrAccountNotFound    = errors.New("user data not found")
)

type Accounts interface {
	SaveAccount(ctx context.Context, acc models.Account) error
	GetAccount(ctx context.Context, username string) (models.Account, error)
	TouchLogin(ctx context.Context, username string, at time.Time) error
}

type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=6"`
}

type Gateway struct {
	accounts  Accounts
	sessions  session.Store
	valid     *validator.Validate
	hashCost  int
	dummyHash []byte
	now       func() time.Time
}

func NewGateway(accounts Accounts, sessions session.Store, hashCost int) (*Gateway, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), hashCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Gateway{
		accounts:  accounts,
		sessions:  sessions,
		valid:     validator.New(),
		hashCost:  hashCost,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// policy maps the first violated rule to its error. Missing fields win over
// length rules.
func (g *Gateway) policy(creds Credentials) error {
	err := g.valid.Struct(creds)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return ErrMissingCredentials
		}
	}
	switch verrs[0].Field() {
	case "Username":
		return ErrUsernameLength
	default:
		return ErrPasswordTooShort
	}
}

func (g *Gateway) Register(ctx context.Context, creds Credentials) error {
	if err := g.policy(creds); err != nil {
		return err
	}
	if err := g.save(ctx, creds); err != nil {
		return err
	}
	logger.Get().Info().Str("username", creds.Username).Msg("user registered")
	return nil
}

// SeedAccount stores an account without applying the registration policy.
func (g *Gateway) SeedAccount(ctx context.Context, creds Credentials) error {
	return g.save(ctx, creds)
}

func (g *Gateway) save(ctx context.Context, creds Credentials) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), g.hashCost)
	if err != nil {
		return err
	}
	err = g.accounts.SaveAccount(ctx, models.Account{
		Username:  creds.Username,
		Email:     creds.Username + "@example.com",
		PassHash:  string(hash),
		CreatedAt: g.now().UTC(),
	})
	if errors.Is(err, storerrors.ErrAccountExists) {
		return ErrUserExists
	}
	return err
}

// Login checks the credentials and opens a session. Unknown users and wrong
// passwords fail the same way and cost the same bcrypt comparison.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (models.SessionUser, string, error) {
	log := logger.Get()
	if creds.Username == "" || creds.Password == "" {
		return models.SessionUser{}, "", ErrMissingCredentials
	}
	acc, err := g.accounts.GetAccount(ctx, creds.Username)
	if err != nil {
		if !errors.Is(err, storerrors.ErrAccountNotFound) {
			return models.SessionUser{}, "", err
		}
		_ = bcrypt.CompareHashAndPassword(g.dummyHash, []byte(creds.Password))
		log.Warn().Str("username", creds.Username).Msg("login for unknown user")
		return models.SessionUser{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PassHash), []byte(creds.Password)); err != nil {
		log.Warn().Str("username", creds.Username).Msg("wrong password")
		return models.SessionUser{}, "", ErrInvalidCredentials
	}
	if err := g.accounts.TouchLogin(ctx, acc.Username, g.now().UTC()); err != nil {
		return models.SessionUser{}, "", err
	}

	user := models.SessionUser{Username: acc.Username, Email: acc.Email}
	sid, err := g.sessions.Create(ctx, user)
	if err != nil {
		return models.SessionUser{}, "", fmt.Errorf("create session: %w", err)
	}
	log.Info().Str("username", acc.Username).Msg("user logged in")
	return user, sid, nil
}

func (g *Gateway) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return g.sessions.Delete(ctx, sid)
}

func (g *Gateway) Current(ctx context.Context, sid string) (models.SessionUser, error) {
	if sid == "" {
		return models.SessionUser{}, ErrUnauthenticated
	}
	user, err := g.sessions.Get(ctx, sid)
	if errors.Is(err, session.ErrNotFound) {
		return models.SessionUser{}, ErrUnauthenticated
	}
	return user, err
}

func (g *Gateway) Profile(ctx context.Context, sid string) (models.Account, error) {
	user, err := g.Current(ctx, sid)
	if err != nil {
		return models.Account{}, err
	}
	acc, err := g.accounts.GetAccount(ctx, user.Username)
	if errors.Is(err, storerrors.ErrAccountNotFound) {
		return models.Account{}, ErrAccountNotFound
	}
	return acc, err
}
