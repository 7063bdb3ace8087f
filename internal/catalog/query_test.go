package catalog

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookshop/internal/domain/models"
)

func ptr[T any](v T) *T { return &v }

func testBooks() []models.Book {
	return []models.Book{
		{ID: 1, Title: "To Kill a Mockingbird", Author: "Harper Lee", Price: 12.99, Rating: 4.8,
			Genre: []string{"Fiction", "Classic", "Historical"}, PublishDate: models.NewDate(1960, time.July, 11),
			Description: "Coming-of-age in a South poisoned by prejudice."},
		{ID: 2, Title: "1984", Author: "George Orwell", Price: 10.95, Rating: 4.7,
			Genre: []string{"Fiction", "Classic", "Dystopian"}, PublishDate: models.NewDate(1949, time.June, 8),
			Description: "The dangers of totalitarianism and mass surveillance."},
		{ID: 3, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Price: 9.99, Rating: 4.5,
			Genre: []string{"Fiction", "Classic"}, PublishDate: models.NewDate(1925, time.April, 10),
			Description: "The corrupt American Dream."},
		{ID: 4, Title: "Pride and Prejudice", Author: "Jane Austen", Price: 8.99, Rating: 4.6,
			Genre: []string{"Fiction", "Classic", "Romance"}, PublishDate: models.NewDate(1813, time.January, 28),
			Description: "A romantic novel of manners."},
		{ID: 5, Title: "The Hobbit", Author: "J.R.R. Tolkien", Price: 14.99, Rating: 4.7,
			Genre: []string{"Fiction", "Fantasy"}, PublishDate: models.NewDate(1937, time.September, 21),
			Description: "Bilbo Baggins is swept into an epic quest."},
		{ID: 7, Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", Price: 29.99, Rating: 4.9,
			Genre: []string{"Fiction", "Fantasy"}, PublishDate: models.NewDate(1954, time.July, 29),
			Description: "The quest to destroy the One Ring."},
		{ID: 12, Title: "Sapiens", Author: "Yuval Noah Harari", Price: 18.99, Rating: 4.7,
			Genre: []string{"Non-Fiction", "History", "Science"}, PublishDate: models.NewDate(2011, time.February, 10),
			Description: "The history of humanity."},
	}
}

func ids(books []models.Book) []int {
	out := make([]int, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func prices(books []models.Book) []float64 {
	out := make([]float64, 0, len(books))
	for _, b := range books {
		out = append(out, b.Price)
	}
	return out
}

func TestQuery_Filters(t *testing.T) {
	books := testBooks()
	tests := []struct {
		name    string
		filters Filters
		want    []int
	}{
		{name: "no filters", filters: Filters{}, want: []int{1, 2, 3, 4, 5, 7, 12}},
		{name: "genre ignores case", filters: Filters{Genre: "fantasy"}, want: []int{5, 7}},
		{name: "genre needs equality", filters: Filters{Genre: "Fic"}, want: []int{}},
		{name: "price bounds inclusive", filters: Filters{MinPrice: ptr(9.99), MaxPrice: ptr(12.99)}, want: []int{1, 2, 3}},
		{name: "min rating inclusive", filters: Filters{MinRating: ptr(4.7)}, want: []int{1, 2, 5, 7, 12}},
		{name: "conjunction", filters: Filters{Genre: "Classic", MaxPrice: ptr(10.0), MinRating: ptr(4.6)}, want: []int{4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, total := Query(books, tc.filters, SortNone, 1, 50)
			if diff := cmp.Diff(tc.want, ids(page)); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(tc.want), total)
		})
	}
}

func TestQuery_EveryResultSatisfiesFilters(t *testing.T) {
	books := testBooks()
	genres := []string{"", "classic", "Fantasy", "History"}
	bounds := []*float64{nil, ptr(9.99), ptr(14.99)}
	ratings := []*float64{nil, ptr(4.6), ptr(4.8)}
	for _, g := range genres {
		for _, lo := range bounds {
			for _, hi := range bounds {
				for _, r := range ratings {
					f := Filters{Genre: g, MinPrice: lo, MaxPrice: hi, MinRating: r}
					matched, total := Query(books, f, SortPriceAsc, 1, len(books))
					assert.Len(t, matched, total)
					want := 0
					for _, b := range books {
						if f.match(b) {
							want++
						}
					}
					assert.Equal(t, want, total, fmt.Sprintf("%+v", f))
					for _, b := range matched {
						assert.True(t, f.match(b), "book %d should not pass %+v", b.ID, f)
					}
				}
			}
		}
	}
}

func TestQuery_Sort(t *testing.T) {
	t.Run("price ascending", func(t *testing.T) {
		books := []models.Book{{ID: 1, Price: 9.99}, {ID: 2, Price: 29.99}, {ID: 3, Price: 8.99}}
		page, _ := Query(books, Filters{}, SortPriceAsc, 1, 12)
		assert.Equal(t, []float64{8.99, 9.99, 29.99}, prices(page))
	})

	t.Run("price descending", func(t *testing.T) {
		page, _ := Query(testBooks(), Filters{Genre: "classic"}, SortPriceDesc, 1, 12)
		assert.Equal(t, []int{1, 2, 3, 4}, ids(page))
	})

	t.Run("rating descending is stable", func(t *testing.T) {
		page, _ := Query(testBooks(), Filters{}, SortRatingDesc, 1, 12)
		assert.Equal(t, []int{7, 1, 2, 5, 12, 4, 3}, ids(page))
	})

	t.Run("newest first", func(t *testing.T) {
		page, _ := Query(testBooks(), Filters{}, SortNewest, 1, 12)
		assert.Equal(t, []int{12, 1, 7, 2, 5, 3, 4}, ids(page))
	})

	t.Run("input is left untouched", func(t *testing.T) {
		books := testBooks()
		_, _ = Query(books, Filters{}, SortPriceAsc, 1, 12)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 7, 12}, ids(books))
	})
}

func TestQuery_Pagination(t *testing.T) {
	books := make([]models.Book, 12)
	for i := range books {
		books[i] = models.Book{ID: i + 1}
	}

	page, total := Query(books, Filters{}, SortNone, 1, 12)
	assert.Len(t, page, 12)
	assert.Equal(t, 12, total)

	page, total = Query(books, Filters{}, SortNone, 2, 12)
	require.NotNil(t, page)
	assert.Empty(t, page)
	assert.Equal(t, 12, total)

	page, _ = Query(books, Filters{}, SortNone, 3, 5)
	assert.Equal(t, []int{11, 12}, ids(page))

	page, total = Query(books, Filters{}, SortNone, 0, 5)
	assert.Empty(t, page)
	assert.Equal(t, 12, total)

	page, total = Query(books, Filters{}, SortNone, 1<<62, 12)
	require.NotNil(t, page)
	assert.Empty(t, page)
	assert.Equal(t, 12, total)
}

func TestSearch(t *testing.T) {
	books := testBooks()
	tests := []struct {
		name   string
		params SearchParams
		want   []int
	}{
		{name: "title", params: SearchParams{Query: "THE", By: ByTitle}, want: []int{3, 5, 7}},
		{name: "author", params: SearchParams{Query: "tolkien", By: ByAuthor}, want: []int{5, 7}},
		{name: "genre substring", params: SearchParams{Query: "fant", By: ByGenre}, want: []int{5, 7}},
		{name: "all includes description", params: SearchParams{Query: "surveillance", By: ByAll}, want: []int{2}},
		{name: "unknown field acts as all", params: SearchParams{Query: "history", By: "isbn"}, want: []int{12}},
		{name: "min rating", params: SearchParams{Query: "tolkien", By: ByAuthor, MinRating: ptr(4.8)}, want: []int{7}},
		{name: "empty query matches everything", params: SearchParams{By: ByAll}, want: []int{1, 2, 3, 4, 5, 7, 12}},
		{name: "no match", params: SearchParams{Query: "zzz"}, want: []int{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Search(books, tc.params)))
		})
	}
}

func TestSimilar(t *testing.T) {
	books := testBooks()
	assert.Equal(t, []int{2, 3, 4}, ids(Similar(books, books[0], 4)))
	assert.Equal(t, []int{7}, ids(Similar(books, models.Book{ID: 5, Genre: []string{"Fantasy"}}, 4)))
	assert.Empty(t, Similar(books, books[6], 4))
	assert.Empty(t, Similar(books, models.Book{ID: 99}, 4))
}

func TestBuildHighlights(t *testing.T) {
	h := BuildHighlights(testBooks())
	assert.Equal(t, []int{7, 1, 2, 5}, ids(h.Featured))
	assert.Equal(t, []int{12, 1, 7, 2}, ids(h.NewReleases))
}

func TestParse(t *testing.T) {
	key, err := ParseSortKey("price-desc")
	require.NoError(t, err)
	assert.Equal(t, SortPriceDesc, key)

	_, err = ParseSortKey("title")
	assert.ErrorIs(t, err, ErrUnknownSort)

	field, err := ParseSearchField("")
	require.NoError(t, err)
	assert.Equal(t, ByAll, field)

	_, err = ParseSearchField("isbn")
	assert.ErrorIs(t, err, ErrUnknownField)
}
