package tests

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookshop/internal/config"
	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/server"
	"github.com/azaliaz/bookshop/internal/server/mocks"
)

func setup(t *testing.T) (*server.Server, *mocks.MockStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	mockStorage := mocks.NewMockStorage(ctrl)
	cfg := config.Config{Addr: ":8080", JWTSecret: "test-secret"}
	return server.New(cfg, mockStorage), mockStorage
}

func do(t *testing.T, s *server.Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, s *server.Server, uid int) string {
	t.Helper()
	token, err := s.IssueToken(uid)
	require.NoError(t, err)
	return token
}

func sampleBooks() []models.Book {
	return []models.Book{
		{ID: 1, Title: "To Kill a Mockingbird", Author: "Harper Lee", Price: 12.99, Rating: 4.8,
			Genre: []string{"Fiction", "Classic"}, PublishDate: models.NewDate(1960, time.July, 11)},
		{ID: 2, Title: "1984", Author: "George Orwell", Price: 10.95, Rating: 4.7,
			Genre: []string{"Fiction", "Dystopian"}, PublishDate: models.NewDate(1949, time.June, 8)},
		{ID: 3, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Price: 9.99, Rating: 4.5,
			Genre: []string{"Fiction", "Classic"}, PublishDate: models.NewDate(1925, time.April, 10)},
		{ID: 4, Title: "Pride and Prejudice", Author: "Jane Austen", Price: 8.99, Rating: 4.6,
			Genre: []string{"Fiction", "Classic", "Romance"}, PublishDate: models.NewDate(1813, time.January, 28)},
		{ID: 5, Title: "The Hobbit", Author: "J.R.R. Tolkien", Price: 14.99, Rating: 4.7,
			Genre: []string{"Fantasy"}, PublishDate: models.NewDate(1937, time.September, 21)},
		{ID: 6, Title: "Sapiens", Author: "Yuval Noah Harari", Price: 18.99, Rating: 4.4,
			Genre: []string{"Non-Fiction", "History"}, PublishDate: models.NewDate(2011, time.February, 10)},
	}
}
