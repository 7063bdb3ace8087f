package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/session"
	"github.com/azaliaz/bookshop/internal/storage"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := NewGateway(storage.NewAccounts(), session.NewMemStore(time.Hour), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, g.SeedAccount(context.Background(), Credentials{Username: "admin", Password: "12345"}))
	return g
}

func TestRegister_Policy(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		creds Credentials
		want  error
	}{
		{name: "missing username", creds: Credentials{Password: "secret1"}, want: ErrMissingCredentials},
		{name: "missing password", creds: Credentials{Username: "x"}, want: ErrMissingCredentials},
		{name: "short username", creds: Credentials{Username: "ab", Password: "secret1"}, want: ErrUsernameLength},
		{name: "long username", creds: Credentials{Username: strings.Repeat("a", 21), Password: "secret1"}, want: ErrUsernameLength},
		{name: "short password", creds: Credentials{Username: "reader", Password: "12345"}, want: ErrPasswordTooShort},
		{name: "duplicate", creds: Credentials{Username: "admin", Password: "secret1"}, want: ErrUserExists},
		{name: "ok", creds: Credentials{Username: "reader", Password: "secret1"}},
		{name: "20 chars", creds: Credentials{Username: strings.Repeat("a", 20), Password: "secret1"}},
		{name: "unicode length counts runes", creds: Credentials{Username: "ёжик", Password: "secret1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := g.Register(ctx, tc.creds)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLogin(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	at := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return at }

	_, _, err := g.Login(ctx, Credentials{Username: "admin"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, _, unknownErr := g.Login(ctx, Credentials{Username: "ghost", Password: "12345"})
	_, _, wrongErr := g.Login(ctx, Credentials{Username: "admin", Password: "54321"})
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	user, sid, err := g.Login(ctx, Credentials{Username: "admin", Password: "12345"})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	require.NotEmpty(t, sid)

	current, err := g.Current(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, user, current)

	acc, err := g.Profile(ctx, sid)
	require.NoError(t, err)
	require.NotNil(t, acc.LastLogin)
	assert.Equal(t, at, *acc.LastLogin)

	require.NoError(t, g.Logout(ctx, sid))
	_, err = g.Current(ctx, sid)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.NoError(t, g.Logout(ctx, sid))
	assert.NoError(t, g.Logout(ctx, ""))
}

func TestRegisterThenLogin(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	require.NoError(t, g.Register(ctx, Credentials{Username: "reader", Password: "secret1"}))

	user, _, err := g.Login(ctx, Credentials{Username: "reader", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
}

func TestProfile_Errors(t *testing.T) {
	accounts := storage.NewAccounts()
	sessions := session.NewMemStore(time.Hour)
	g, err := NewGateway(accounts, sessions, bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = g.Profile(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = g.Current(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	sid, err := sessions.Create(ctx, models.SessionUser{Username: "vanished"})
	require.NoError(t, err)
	_, err = g.Profile(ctx, sid)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
