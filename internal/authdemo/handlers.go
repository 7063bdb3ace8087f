package authdemo

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookshop/internal/auth"
	"github.com/azaliaz/bookshop/internal/domain/consts"
	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/logger"
)

type response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	User    *models.SessionUser `json:"user,omitempty"`
}

func failure(msg string) response {
	return response{Success: false, Message: msg}
}

type authStatus struct {
	Authenticated bool                `json:"authenticated"`
	User          *models.SessionUser `json:"user,omitempty"`
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

func (s *Server) setCookie(ctx *gin.Context, name, value string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func sessionID(ctx *gin.Context) string {
	sid, err := ctx.Cookie(consts.SessionCookie)
	if err != nil {
		return ""
	}
	return sid
}

func (s *Server) Theme(ctx *gin.Context) {
	var req themeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || s.valid.Struct(req) != nil {
		ctx.JSON(http.StatusBadRequest, failure("invalid theme"))
		return
	}
	s.setCookie(ctx, consts.ThemeCookie, req.Theme, int(consts.ThemeCookieTTL.Seconds()))
	ctx.JSON(http.StatusOK, response{Success: true})
}

func (s *Server) Register(ctx *gin.Context) {
	log := logger.Get()
	var creds auth.Credentials
	if err := ctx.ShouldBindJSON(&creds); err != nil {
		log.Error().Err(err).Msg("unmarshal body failed")
		ctx.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	err := s.gateway.Register(ctx.Request.Context(), creds)
	switch {
	case err == nil:
		ctx.JSON(http.StatusCreated, response{Success: true})
	case errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrUsernameLength),
		errors.Is(err, auth.ErrPasswordTooShort):
		ctx.JSON(http.StatusBadRequest, failure(err.Error()))
	case errors.Is(err, auth.ErrUserExists):
		ctx.JSON(http.StatusConflict, failure(err.Error()))
	default:
		log.Error().Err(err).Msg("registration failed")
		ctx.JSON(http.StatusInternalServerError, failure("registration failed"))
	}
}

func (s *Server) Login(ctx *gin.Context) {
	log := logger.Get()
	var creds auth.Credentials
	if err := ctx.ShouldBindJSON(&creds); err != nil {
		log.Error().Err(err).Msg("unmarshal body failed")
		ctx.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	user, sid, err := s.gateway.Login(ctx.Request.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			ctx.JSON(http.StatusBadRequest, failure(err.Error()))
		case errors.Is(err, auth.ErrInvalidCredentials):
			ctx.JSON(http.StatusUnauthorized, failure(err.Error()))
		default:
			log.Error().Err(err).Msg("login failed")
			ctx.JSON(http.StatusInternalServerError, failure("server error"))
		}
		return
	}
	s.setCookie(ctx, consts.SessionCookie, sid, int(s.sessionTTL.Seconds()))
	ctx.JSON(http.StatusOK, response{Success: true, User: &user})
}

func (s *Server) Logout(ctx *gin.Context) {
	if err := s.gateway.Logout(ctx.Request.Context(), sessionID(ctx)); err != nil {
		logger.Get().Error().Err(err).Msg("logout failed")
		ctx.JSON(http.StatusInternalServerError, response{Success: false})
		return
	}
	s.setCookie(ctx, consts.SessionCookie, "", -1)
	ctx.JSON(http.StatusOK, response{Success: true})
}

func (s *Server) CheckAuth(ctx *gin.Context) {
	user, err := s.gateway.Current(ctx.Request.Context(), sessionID(ctx))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			ctx.JSON(http.StatusOK, authStatus{Authenticated: false})
			return
		}
		logger.Get().Error().Err(err).Msg("check auth failed")
		ctx.JSON(http.StatusInternalServerError, failure("server error"))
		return
	}
	ctx.JSON(http.StatusOK, authStatus{Authenticated: true, User: &user})
}

func (s *Server) Data(ctx *gin.Context) {
	acc, err := s.gateway.Profile(ctx.Request.Context(), sessionID(ctx))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthenticated):
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrAccountNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Get().Error().Err(err).Msg("load user data failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}
	ctx.JSON(http.StatusOK, acc)
}
