// Package client talks to the bookstore API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/azaliaz/bookshop/internal/catalog"
	"github.com/azaliaz/bookshop/internal/domain/models"
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

type errorBody struct {
	Error string `json:"error"`
}

type BookPage struct {
	Books []models.Book `json:"books"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type SearchResult struct {
	Books []models.Book `json:"books"`
	Total int           `json:"total"`
}

type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type ListParams struct {
	Genre     string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	Sort      string
	Page      int
	Limit     int
}

type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	Age       int    `json:"age,omitempty"`
}

type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json").
		SetError(&errorBody{})
	return &Client{http: rc}
}

// SetToken attaches a bearer token to every following request.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	msg := http.StatusText(resp.StatusCode())
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}

func setFloat(req *resty.Request, name string, v *float64) {
	if v != nil {
		req.SetQueryParam(name, strconv.FormatFloat(*v, 'f', -1, 64))
	}
}

func (c *Client) ListBooks(ctx context.Context, p ListParams) (BookPage, error) {
	var page BookPage
	req := c.request(ctx).SetResult(&page)
	if p.Genre != "" {
		req.SetQueryParam("genre", p.Genre)
	}
	setFloat(req, "minPrice", p.MinPrice)
	setFloat(req, "maxPrice", p.MaxPrice)
	setFloat(req, "minRating", p.MinRating)
	if p.Sort != "" {
		req.SetQueryParam("sort", p.Sort)
	}
	if p.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(p.Limit))
	}
	err := check(req.Get("/books"))
	return page, err
}

func (c *Client) SearchBooks(ctx context.Context, query string, by catalog.SearchField, minRating *float64) (SearchResult, error) {
	var res SearchResult
	req := c.request(ctx).SetResult(&res).SetQueryParam("q", query)
	if by != "" {
		req.SetQueryParam("by", string(by))
	}
	setFloat(req, "minRating", minRating)
	err := check(req.Get("/books/search"))
	return res, err
}

func (c *Client) Highlights(ctx context.Context) (catalog.Highlights, error) {
	var h catalog.Highlights
	err := check(c.request(ctx).SetResult(&h).Get("/books/highlights"))
	return h, err
}

func (c *Client) Book(ctx context.Context, id int) (models.Book, error) {
	var book models.Book
	resp, err := c.request(ctx).SetResult(&book).SetPathParam("id", strconv.Itoa(id)).Get("/books/{id}")
	err = check(resp, err)
	return book, err
}

func (c *Client) SimilarBooks(ctx context.Context, id int) ([]models.Book, error) {
	var books []models.Book
	resp, err := c.request(ctx).SetResult(&books).SetPathParam("id", strconv.Itoa(id)).Get("/books/{id}/similar")
	err = check(resp, err)
	return books, err
}

func (c *Client) BookReviews(ctx context.Context, id int, asc bool) ([]models.Review, error) {
	var reviews []models.Review
	order := "desc"
	if asc {
		order = "asc"
	}
	resp, err := c.request(ctx).SetResult(&reviews).
		SetPathParam("id", strconv.Itoa(id)).
		SetQueryParam("order", order).
		Get("/books/{id}/reviews")
	err = check(resp, err)
	return reviews, err
}

func (c *Client) UserReviews(ctx context.Context, userID int) ([]models.Review, error) {
	var reviews []models.Review
	resp, err := c.request(ctx).SetResult(&reviews).SetPathParam("id", strconv.Itoa(userID)).Get("/users/{id}/reviews")
	err = check(resp, err)
	return reviews, err
}

func (c *Client) AddReview(ctx context.Context, bookID, rating int, comment string) (models.Review, error) {
	var review models.Review
	resp, err := c.request(ctx).SetResult(&review).
		SetPathParam("id", strconv.Itoa(bookID)).
		SetBody(map[string]any{"rating": rating, "comment": comment}).
		Post("/books/{id}/reviews")
	err = check(resp, err)
	return review, err
}

func (c *Client) UpdateReview(ctx context.Context, id int, upd models.ReviewUpdate) (models.Review, error) {
	var review models.Review
	resp, err := c.request(ctx).SetResult(&review).
		SetPathParam("id", strconv.Itoa(id)).
		SetBody(upd).
		Put("/reviews/{id}")
	err = check(resp, err)
	return review, err
}

func (c *Client) DeleteReview(ctx context.Context, id int) error {
	return check(c.request(ctx).SetPathParam("id", strconv.Itoa(id)).Delete("/reviews/{id}"))
}

func (c *Client) Register(ctx context.Context, r Registration) (Session, error) {
	var s Session
	err := check(c.request(ctx).SetResult(&s).SetBody(r).Post("/users/register"))
	return s, err
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	resp, err := c.request(ctx).SetResult(&s).
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/users/login")
	err = check(resp, err)
	return s, err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	err := check(c.request(ctx).SetResult(&user).Get("/users/me"))
	return user, err
}

func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error) {
	var user models.User
	err := check(c.request(ctx).SetResult(&user).SetBody(upd).Put("/users/me"))
	return user, err
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return check(c.request(ctx).
		SetBody(map[string]string{"currentPassword": current, "newPassword": next}).
		Put("/users/me/password"))
}
