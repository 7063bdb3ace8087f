package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/azaliaz/bookshop/internal/catalog"
	"github.com/azaliaz/bookshop/internal/config"
	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/server"
	"github.com/azaliaz/bookshop/internal/storage"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recs, err := storage.LoadRecords(bcrypt.MinCost)
	require.NoError(t, err)
	srv := server.New(config.Config{JWTSecret: "test-secret"}, storage.New(recs, bcrypt.MinCost))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func TestClient_Catalog(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	page, err := c.ListBooks(ctx, ListParams{Genre: "classic", Sort: "price-asc", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Limit)
	require.Len(t, page.Books, 2)
	assert.LessOrEqual(t, page.Books[0].Price, page.Books[1].Price)
	assert.GreaterOrEqual(t, page.Total, 2)

	found, err := c.SearchBooks(ctx, "orwell", catalog.ByAuthor, nil)
	require.NoError(t, err)
	require.NotEmpty(t, found.Books)
	assert.Equal(t, "George Orwell", found.Books[0].Author)

	h, err := c.Highlights(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, h.Featured)
	assert.NotEmpty(t, h.NewReleases)

	book, err := c.Book(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "To Kill a Mockingbird", book.Title)

	similar, err := c.SimilarBooks(ctx, 1)
	require.NoError(t, err)
	for _, b := range similar {
		assert.NotEqual(t, 1, b.ID)
	}

	reviews, err := c.BookReviews(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.True(t, !reviews[0].CreatedAt.After(reviews[1].CreatedAt))
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Book(ctx, 404)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "book not found", apiErr.Message)
	assert.Equal(t, "book not found (404)", apiErr.Error())

	_, err = c.ListBooks(ctx, ListParams{Sort: "sideways"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = c.Me(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = c.Login(ctx, "john.doe@example.com", "wrong")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid email or password", apiErr.Message)
}

func TestClient_AccountAndReviews(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	s, err := c.Register(ctx, Registration{
		Email: "reader@example.com", Password: "secret1", FirstName: "Ada", LastName: "Reader",
	})
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)
	assert.Equal(t, "Ada Reader", s.User.FullName())

	_, err = c.Register(ctx, Registration{
		Email: "reader@example.com", Password: "secret1", FirstName: "Ada", LastName: "Reader",
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	s, err = c.Login(ctx, "reader@example.com", "secret1")
	require.NoError(t, err)
	c.SetToken(s.Token)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, me.ID)

	city := "Oslo"
	me, err = c.UpdateProfile(ctx, models.ProfileUpdate{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Oslo", me.City)

	require.NoError(t, c.ChangePassword(ctx, "secret1", "secret2"))
	err = c.ChangePassword(ctx, "secret1", "secret3")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	review, err := c.AddReview(ctx, 3, 5, "Wonderful")
	require.NoError(t, err)
	assert.Equal(t, "Ada Reader", review.UserName)

	rating := 3
	review, err = c.UpdateReview(ctx, review.ID, models.ReviewUpdate{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 3, review.Rating)
	assert.Equal(t, "Wonderful", review.Comment)

	mine, err := c.UserReviews(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.NoError(t, c.DeleteReview(ctx, review.ID))
	err = c.DeleteReview(ctx, review.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
