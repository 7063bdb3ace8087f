package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookshop/internal/catalog"
	"github.com/azaliaz/bookshop/internal/domain/consts"
	"github.com/azaliaz/bookshop/internal/domain/models"
	storerrors "github.com/azaliaz/bookshop/internal/storage/errors"
)

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

func (s *Server) ListBooks(ctx *gin.Context) {
	var (
		f   catalog.Filters
		err error
	)
	f.Genre = ctx.Query("genre")
	if f.MinPrice, err = queryFloat(ctx, "minPrice"); err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	if f.MaxPrice, err = queryFloat(ctx, "maxPrice"); err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	if f.MinRating, err = queryFloat(ctx, "minRating"); err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	key, err := catalog.ParseSortKey(ctx.Query("sort"))
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	page, err := queryInt(ctx, "page", consts.DefaultPage)
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	limit, err := queryInt(ctx, "limit", consts.DefaultPageSize)
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	limit = min(limit, consts.MaxPageSize)

	books, err := s.storage.GetBooks(ctx.Request.Context())
	if err != nil {
		abortWith(ctx, http.StatusInternalServerError, err)
		return
	}
	result, total := catalog.Query(books, f, key, page, limit)
	ctx.JSON(http.StatusOK, BookPage{Books: result, Total: total, Page: page, Limit: limit})
}

func (s *Server) SearchBooks(ctx *gin.Context) {
	by, err := catalog.ParseSearchField(ctx.Query("by"))
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	minRating, err := queryFloat(ctx, "minRating")
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	books, err := s.storage.GetBooks(ctx.Request.Context())
	if err != nil {
		abortWith(ctx, http.StatusInternalServerError, err)
		return
	}
	found := catalog.Search(books, catalog.SearchParams{Query: ctx.Query("q"), By: by, MinRating: minRating})
	ctx.JSON(http.StatusOK, SearchResult{Books: found, Total: len(found)})
}

func (s *Server) Highlights(ctx *gin.Context) {
	books, err := s.storage.GetBooks(ctx.Request.Context())
	if err != nil {
		abortWith(ctx, http.StatusInternalServerError, err)
		return
	}
	ctx.JSON(http.StatusOK, catalog.BuildHighlights(books))
}

func (s *Server) book(ctx *gin.Context) (models.Book, bool) {
	id, err := pathID(ctx, "book")
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return models.Book{}, false
	}
	book, err := s.storage.GetBook(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storerrors.ErrBookNotFound) {
			abortWith(ctx, http.StatusNotFound, err)
			return models.Book{}, false
		}
		abortWith(ctx, http.StatusInternalServerError, err)
		return models.Book{}, false
	}
	return book, true
}

func (s *Server) BookInfo(ctx *gin.Context) {
	book, ok := s.book(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, book)
}

func (s *Server) SimilarBooks(ctx *gin.Context) {
	limit, err := queryInt(ctx, "limit", consts.SimilarLimit)
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	book, ok := s.book(ctx)
	if !ok {
		return
	}
	books, err := s.storage.GetBooks(ctx.Request.Context())
	if err != nil {
		abortWith(ctx, http.StatusInternalServerError, err)
		return
	}
	ctx.JSON(http.StatusOK, catalog.Similar(books, book, min(limit, consts.MaxPageSize)))
}
