package catalog

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"github.com/azaliaz/bookshop/internal/domain/consts"
	"github.com/azaliaz/bookshop/internal/domain/models"
)

type SortKey string

const (
	SortNone       SortKey = ""
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingDesc SortKey = "rating-desc"
	SortNewest     SortKey = "newest"
)

type SearchField string

const (
	ByAll    SearchField = "all"
	ByTitle  SearchField = "title"
	ByAuthor SearchField = "author"
	ByGenre  SearchField = "genre"
)

var (
	ErrUnknownSort  = errors.New("unknown sort option")
	ErrUnknownField = errors.New("unknown search field")
)

// Filters are combined with AND. A nil bound is not applied.
type Filters struct {
	Genre     string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
}

type SearchParams struct {
	Query     string
	By        SearchField
	MinRating *float64
}

func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(s); key {
	case SortNone, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortNewest:
		return key, nil
	}
	return SortNone, ErrUnknownSort
}

func ParseSearchField(s string) (SearchField, error) {
	if s == "" {
		return ByAll, nil
	}
	switch field := SearchField(s); field {
	case ByAll, ByTitle, ByAuthor, ByGenre:
		return field, nil
	}
	return ByAll, ErrUnknownField
}

func (f Filters) match(b models.Book) bool {
	if f.Genre != "" && !slices.ContainsFunc(b.Genre, func(g string) bool { return strings.EqualFold(g, f.Genre) }) {
		return false
	}
	if f.MinPrice != nil && b.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && b.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && b.Rating < *f.MinRating {
		return false
	}
	return true
}

// Query filters, sorts and paginates books. It returns the requested page and
// the number of books that matched the filters. Pages are 1-indexed; a page
// past the end comes back empty.
func Query(books []models.Book, f Filters, key SortKey, page, pageSize int) ([]models.Book, int) {
	matched := make([]models.Book, 0, len(books))
	for _, b := range books {
		if f.match(b) {
			matched = append(matched, b)
		}
	}
	sortBooks(matched, key)
	return paginate(matched, page, pageSize), len(matched)
}

func sortBooks(books []models.Book, key SortKey) {
	var less func(a, b models.Book) int
	switch key {
	case SortPriceAsc:
		less = func(a, b models.Book) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		less = func(a, b models.Book) int { return cmp.Compare(b.Price, a.Price) }
	case SortRatingDesc:
		less = func(a, b models.Book) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortNewest:
		less = func(a, b models.Book) int { return b.PublishDate.Compare(a.PublishDate.Time) }
	default:
		return
	}
	slices.SortStableFunc(books, less)
}

func paginate(books []models.Book, page, pageSize int) []models.Book {
	if page < 1 || pageSize < 1 || len(books) == 0 {
		return []models.Book{}
	}
	if page-1 > (len(books)-1)/pageSize {
		return []models.Book{}
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(books)-start)
	return books[start:end]
}

// Search returns the books whose selected field contains the query,
// ignoring case, in their original order.
func Search(books []models.Book, p SearchParams) []models.Book {
	term := strings.ToLower(p.Query)
	result := make([]models.Book, 0)
	for _, b := range books {
		if !matchField(b, p.By, term) {
			continue
		}
		if p.MinRating != nil && b.Rating < *p.MinRating {
			continue
		}
		result = append(result, b)
	}
	return result
}

func matchField(b models.Book, by SearchField, term string) bool {
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), term) }
	genre := slices.ContainsFunc(b.Genre, contains)
	switch by {
	case ByTitle:
		return contains(b.Title)
	case ByAuthor:
		return contains(b.Author)
	case ByGenre:
		return genre
	default:
		return contains(b.Title) || contains(b.Author) || genre || contains(b.Description)
	}
}

// Similar lists up to limit books sharing the primary genre of book, never
// the book itself. The page is taken before the book is dropped, so fewer
// than limit may come back.
func Similar(books []models.Book, book models.Book, limit int) []models.Book {
	genre := book.PrimaryGenre()
	if genre == "" {
		return []models.Book{}
	}
	page, _ := Query(books, Filters{Genre: genre}, SortNone, 1, limit)
	return slices.DeleteFunc(slices.Clone(page), func(b models.Book) bool { return b.ID == book.ID })
}

type Highlights struct {
	Featured    []models.Book `json:"featured"`
	NewReleases []models.Book `json:"newReleases"`
}

func BuildHighlights(books []models.Book) Highlights {
	minRating := consts.FeaturedRating
	featured, _ := Query(books, Filters{MinRating: &minRating}, SortRatingDesc, 1, consts.HighlightLimit)
	newest, _ := Query(books, Filters{}, SortNewest, 1, consts.HighlightLimit)
	return Highlights{Featured: featured, NewReleases: newest}
}
