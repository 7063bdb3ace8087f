package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookshop/internal/domain/models"
	storerrors "github.com/azaliaz/bookshop/internal/storage/errors"
)

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

func reviewStatus(err error) int {
	switch {
	case errors.Is(err, storerrors.ErrReviewNotFound),
		errors.Is(err, storerrors.ErrBookNotFound),
		errors.Is(err, storerrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, storerrors.ErrNotReviewAuthor):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func (s *Server) BookReviews(ctx *gin.Context) {
	asc, err := queryOrder(ctx)
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	book, ok := s.book(ctx)
	if !ok {
		return
	}
	reviews, err := s.storage.GetReviewsByBook(ctx.Request.Context(), book.ID, asc)
	if err != nil {
		abortWith(ctx, http.StatusInternalServerError, err)
		return
	}
	ctx.JSON(http.StatusOK, reviews)
}

func (s *Server) UserReviews(ctx *gin.Context) {
	asc, err := queryOrder(ctx)
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	uid, err := pathID(ctx, "user")
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	reviews, err := s.storage.GetReviewsByUser(ctx.Request.Context(), uid, asc)
	if err != nil {
		abortWith(ctx, http.StatusInternalServerError, err)
		return
	}
	ctx.JSON(http.StatusOK, reviews)
}

func (s *Server) AddReview(ctx *gin.Context) {
	bookID, err := pathID(ctx, "book")
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	var req reviewRequest
	if err := s.bind(ctx, &req); err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	review, err := s.storage.SaveReview(ctx.Request.Context(), models.Review{
		BookID:  bookID,
		UserID:  ctx.GetInt("uid"),
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		abortWith(ctx, reviewStatus(err), err)
		return
	}
	ctx.JSON(http.StatusCreated, review)
}

func (s *Server) UpdateReview(ctx *gin.Context) {
	id, err := pathID(ctx, "review")
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	var upd models.ReviewUpdate
	if err := s.bind(ctx, &upd); err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	review, err := s.storage.UpdateReview(ctx.Request.Context(), id, ctx.GetInt("uid"), upd)
	if err != nil {
		abortWith(ctx, reviewStatus(err), err)
		return
	}
	ctx.JSON(http.StatusOK, review)
}

func (s *Server) DeleteReview(ctx *gin.Context) {
	id, err := pathID(ctx, "review")
	if err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	if err := s.storage.DeleteReview(ctx.Request.Context(), id, ctx.GetInt("uid")); err != nil {
		abortWith(ctx, reviewStatus(err), err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
