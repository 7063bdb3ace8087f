// Package authdemo is the minimal session login server with its static
// front end.
package authdemo

import (
	"cmp"
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/azaliaz/bookshop/internal/auth"
	"github.com/azaliaz/bookshop/internal/config"
	"github.com/azaliaz/bookshop/internal/domain/consts"
	"github.com/azaliaz/bookshop/internal/logger"
	"github.com/azaliaz/bookshop/internal/middleware"
)

//go:embed static
var staticFiles embed.FS

type Server struct {
	serv       *http.Server
	valid      *validator.Validate
	gateway    *auth.Gateway
	secure     bool
	sessionTTL time.Duration
	router     *gin.Engine
}

func New(cfg config.Config, gateway *auth.Gateway) *Server {
	server := http.Server{ //nolint:gosec // not today
		Addr: cfg.Addr,
	}
	s := &Server{
		serv:       &server,
		valid:      validator.New(),
		gateway:    gateway,
		secure:     cfg.Production(),
		sessionTTL: cmp.Or(cfg.SessionTTL, consts.SessionTTL),
	}
	s.router = s.routes()
	s.serv.Handler = s.router
	return s
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(), middleware.Recovery(failure("internal server error")))
	router.NoRoute(middleware.NotFound(failure("route not found")))

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	index, err := fs.ReadFile(static, "index.html")
	if err != nil {
		panic(err)
	}
	router.GET("/", func(ctx *gin.Context) { ctx.Data(http.StatusOK, "text/html; charset=utf-8", index) })
	router.StaticFileFS("/script.js", "script.js", http.FS(static))
	router.StaticFileFS("/style.css", "style.css", http.FS(static))

	router.POST("/theme", s.Theme)
	router.POST("/register", s.Register)
	router.POST("/login", s.Login)
	router.POST("/logout", s.Logout)
	router.GET("/check-auth", s.CheckAuth)
	router.GET("/api/data", s.Data)
	return router
}

func (s *Server) Run(_ context.Context) error {
	log := logger.Get()
	log.Info().Str("host", s.serv.Addr).Msg("auth demo server started")
	log.Info().Msg("available users: admin / 12345")
	if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) ShutdownServer(ctx context.Context) error {
	return s.serv.Shutdown(ctx)
}
