package tests

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookshop/internal/catalog"
	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/server"
	storerrors "github.com/azaliaz/bookshop/internal/storage/errors"
)

func bookIDs(books []models.Book) []int {
	ids := make([]int, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestListBooks(t *testing.T) {
	tests := []struct {
		name  string
		query string
		ids   []int
		total int
		page  int
		limit int
	}{
		{name: "defaults", query: "", ids: []int{1, 2, 3, 4, 5, 6}, total: 6, page: 1, limit: 12},
		{name: "genre and price sort", query: "?genre=classic&sort=price-asc", ids: []int{4, 3, 1}, total: 3, page: 1, limit: 12},
		{name: "second page", query: "?limit=2&page=2", ids: []int{3, 4}, total: 6, page: 2, limit: 2},
		{name: "page past the end", query: "?page=5", ids: []int{}, total: 6, page: 5, limit: 12},
		{name: "huge page", query: "?page=4611686018427387904", ids: []int{}, total: 6, page: 1 << 62, limit: 12},
		{name: "price range", query: "?minPrice=9.99&maxPrice=12.99", ids: []int{1, 2, 3}, total: 3, page: 1, limit: 12},
		{name: "limit is capped", query: "?limit=1000&minRating=4.7", ids: []int{1, 2, 5}, total: 3, page: 1, limit: 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage := setup(t)
			mockStorage.EXPECT().GetBooks(gomock.Any()).Return(sampleBooks(), nil)

			w := do(t, s, http.MethodGet, "/books"+tc.query, "", "")
			require.Equal(t, http.StatusOK, w.Code)
			var page server.BookPage
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
			assert.Equal(t, tc.ids, bookIDs(page.Books))
			assert.Equal(t, tc.total, page.Total)
			assert.Equal(t, tc.page, page.Page)
			assert.Equal(t, tc.limit, page.Limit)
		})
	}
}

func TestListBooks_BadQuery(t *testing.T) {
	for _, query := range []string{"?sort=title", "?minPrice=abc", "?maxPrice=1,5", "?minRating=x", "?page=one", "?limit=ten"} {
		t.Run(query, func(t *testing.T) {
			s, _ := setup(t)
			w := do(t, s, http.MethodGet, "/books"+query, "", "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestListBooks_StorageFailure(t *testing.T) {
	s, mockStorage := setup(t)
	mockStorage.EXPECT().GetBooks(gomock.Any()).Return(nil, errors.New("connection reset"))

	w := do(t, s, http.MethodGet, "/books", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestSearchBooks(t *testing.T) {
	s, mockStorage := setup(t)
	mockStorage.EXPECT().GetBooks(gomock.Any()).Return(sampleBooks(), nil).Times(2)

	w := do(t, s, http.MethodGet, "/books/search?q=the&by=title", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res server.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []int{3, 5}, bookIDs(res.Books))
	assert.Equal(t, 2, res.Total)

	w = do(t, s, http.MethodGet, "/books/search?q=zzz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"books":[],"total":0}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/books/search?q=x&by=isbn", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"unknown search field"}`, w.Body.String())
}

func TestHighlights(t *testing.T) {
	s, mockStorage := setup(t)
	mockStorage.EXPECT().GetBooks(gomock.Any()).Return(sampleBooks(), nil)

	w := do(t, s, http.MethodGet, "/books/highlights", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var h catalog.Highlights
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, []int{1, 2, 5, 4}, bookIDs(h.Featured))
	assert.Equal(t, []int{6, 1, 2, 5}, bookIDs(h.NewReleases))
}

func TestBookInfo(t *testing.T) {
	s, mockStorage := setup(t)
	books := sampleBooks()
	mockStorage.EXPECT().GetBook(gomock.Any(), 2).Return(books[1], nil)
	mockStorage.EXPECT().GetBook(gomock.Any(), 99).Return(models.Book{}, storerrors.ErrBookNotFound)

	w := do(t, s, http.MethodGet, "/books/2", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, books[1], got)
	assert.Contains(t, w.Body.String(), `"publishDate":"1949-06-08"`)

	w = do(t, s, http.MethodGet, "/books/99", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"book not found"}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/books/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid book id"}`, w.Body.String())
}

func TestSimilarBooks(t *testing.T) {
	s, mockStorage := setup(t)
	books := sampleBooks()
	mockStorage.EXPECT().GetBook(gomock.Any(), 1).Return(books[0], nil)
	mockStorage.EXPECT().GetBooks(gomock.Any()).Return(books, nil)

	w := do(t, s, http.MethodGet, "/books/1/similar", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var similar []models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &similar))
	assert.Equal(t, []int{2, 3, 4}, bookIDs(similar))
}

func TestNoRoute(t *testing.T) {
	s, _ := setup(t)
	w := do(t, s, http.MethodGet, "/authors", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, w.Body.String())
}
