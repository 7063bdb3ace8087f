package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/logger"
	storerrors "github.com/azaliaz/bookshop/internal/storage/errors"
)

var errBadLogin = errors.New("invalid email or password")

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,max=64"`
	LastName  string `json:"lastName" validate:"required,max=64"`
	Avatar    string `json:"avatar" validate:"omitempty,url"`
	Country   string `json:"country" validate:"max=64"`
	City      string `json:"city" validate:"max=64"`
	Age       int    `json:"age" validate:"gte=0,lte=150"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) respondWithToken(ctx *gin.Context, status int, user models.User) {
	token, err := s.IssueToken(user.ID)
	if err != nil {
		abortWith(ctx, http.StatusInternalServerError, err)
		return
	}
	ctx.Header("Authorization", "Bearer "+token)
	ctx.JSON(status, AuthResponse{Token: token, User: user})
}

func (s *Server) Register(ctx *gin.Context) {
	log := logger.Get()
	var req registerRequest
	if err := s.bind(ctx, &req); err != nil {
		log.Debug().Err(err).Msg("register rejected")
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	user, err := s.storage.SaveUser(ctx.Request.Context(), models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
		Country:   req.Country,
		City:      req.City,
		Age:       req.Age,
	}, req.Password)
	if err != nil {
		if errors.Is(err, storerrors.ErrUserExists) {
			abortWith(ctx, http.StatusConflict, err)
			return
		}
		abortWith(ctx, http.StatusInternalServerError, err)
		return
	}
	log.Info().Int("uid", user.ID).Msg("user registered")
	s.respondWithToken(ctx, http.StatusCreated, user)
}

func (s *Server) Login(ctx *gin.Context) {
	log := logger.Get()
	var req loginRequest
	if err := s.bind(ctx, &req); err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	user, err := s.storage.ValidUser(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, storerrors.ErrUserNotFound) || errors.Is(err, storerrors.ErrInvalidPassword) {
			log.Warn().Err(err).Msg("login failed")
			abortWith(ctx, http.StatusUnauthorized, errBadLogin)
			return
		}
		abortWith(ctx, http.StatusInternalServerError, err)
		return
	}
	s.respondWithToken(ctx, http.StatusOK, user)
}

func userStatus(err error) int {
	if errors.Is(err, storerrors.ErrUserNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) Me(ctx *gin.Context) {
	user, err := s.storage.GetUser(ctx.Request.Context(), ctx.GetInt("uid"))
	if err != nil {
		abortWith(ctx, userStatus(err), err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (s *Server) UpdateMe(ctx *gin.Context) {
	var upd models.ProfileUpdate
	if err := s.bind(ctx, &upd); err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	user, err := s.storage.UpdateUser(ctx.Request.Context(), ctx.GetInt("uid"), upd)
	if err != nil {
		abortWith(ctx, userStatus(err), err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (s *Server) ChangePassword(ctx *gin.Context) {
	var req passwordRequest
	if err := s.bind(ctx, &req); err != nil {
		abortWith(ctx, http.StatusBadRequest, err)
		return
	}
	err := s.storage.ChangePassword(ctx.Request.Context(), ctx.GetInt("uid"), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, storerrors.ErrInvalidPassword) {
			abortWith(ctx, http.StatusBadRequest, badRequest("current password is incorrect"))
			return
		}
		abortWith(ctx, userStatus(err), err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
