package server

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/azaliaz/bookshop/internal/config"
	"github.com/azaliaz/bookshop/internal/domain/consts"
	"github.com/azaliaz/bookshop/internal/domain/models"
	"github.com/azaliaz/bookshop/internal/logger"
	"github.com/azaliaz/bookshop/internal/middleware"
)

//go:generate mockgen -source=server.go -destination=./mocks/storage_mock.go -package=mocks
const defaultSecret = "VerySecurKey2000Cat"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
	UserID int
}

type Storage interface {
	GetBooks(ctx context.Context) ([]models.Book, error)
	GetBook(ctx context.Context, id int) (models.Book, error)
	SaveUser(ctx context.Context, user models.User, password string) (models.User, error)
	ValidUser(ctx context.Context, email, password string) (models.User, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	UpdateUser(ctx context.Context, id int, upd models.ProfileUpdate) (models.User, error)
	ChangePassword(ctx context.Context, id int, current, next string) error
	GetReviewsByBook(ctx context.Context, bookID int, asc bool) ([]models.Review, error)
	GetReviewsByUser(ctx context.Context, userID int, asc bool) ([]models.Review, error)
	SaveReview(ctx context.Context, review models.Review) (models.Review, error)
	UpdateReview(ctx context.Context, id, userID int, upd models.ReviewUpdate) (models.Review, error)
	DeleteReview(ctx context.Context, id, userID int) error
}

type Server struct {
	serv    *http.Server
	valid   *validator.Validate
	storage Storage
	secret  []byte
	router  *gin.Engine
}

func New(cfg config.Config, stor Storage) *Server {
	server := http.Server{ //nolint:gosec // not today
		Addr: cfg.Addr,
	}
	valid := validator.New()
	valid.RegisterTagNameFunc(jsonFieldName)
	s := &Server{
		serv:    &server,
		valid:   valid,
		storage: stor,
		secret:  []byte(cmp.Or(cfg.JWTSecret, defaultSecret)),
	}
	s.router = s.routes()
	s.serv.Handler = s.router
	return s
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return cmp.Or(name, fld.Name)
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(), middleware.Recovery(gin.H{"error": "internal server error"}))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.NoRoute(middleware.NotFound(gin.H{"error": "route not found"}))

	books := router.Group("/books")
	{
		books.GET("", s.ListBooks)
		books.GET("/search", s.SearchBooks)
		books.GET("/highlights", s.Highlights)
		books.GET("/:id", s.BookInfo)
		books.GET("/:id/similar", s.SimilarBooks)
		books.GET("/:id/reviews", s.BookReviews)
		books.POST("/:id/reviews", s.JWTAuthMiddleware(), s.AddReview)
	}
	reviews := router.Group("/reviews", s.JWTAuthMiddleware())
	{
		reviews.PUT("/:id", s.UpdateReview)
		reviews.DELETE("/:id", s.DeleteReview)
	}
	users := router.Group("/users")
	{
		users.POST("/register", s.Register)
		users.POST("/login", s.Login)
		users.GET("/me", s.JWTAuthMiddleware(), s.Me)
		users.PUT("/me", s.JWTAuthMiddleware(), s.UpdateMe)
		users.PUT("/me/password", s.JWTAuthMiddleware(), s.ChangePassword)
		users.GET("/:id/reviews", s.UserReviews)
	}
	return router
}

func (s *Server) Run(_ context.Context) error {
	log := logger.Get()
	log.Info().Str("host", s.serv.Addr).Msg("server started")
	if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) ShutdownServer(ctx context.Context) error {
	return s.serv.Shutdown(ctx)
}

func (s *Server) JWTAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log := logger.Get()

		tokenHeader := ctx.GetHeader("Authorization")
		if tokenHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		tokenParts := strings.Split(tokenHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token format"})
			return
		}

		uid, err := s.validToken(tokenParts[1])
		if err != nil {
			log.Error().Err(err).Msg("validate jwt failed")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ctx.Set("uid", uid)
		ctx.Next()
	}
}

func (s *Server) validToken(tokenStr string) (int, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// IssueToken signs a token for uid valid for consts.TokenTTL.
func (s *Server) IssueToken(uid int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(consts.TokenTTL)),
		},
		UserID: uid,
	})
	return token.SignedString(s.secret)
}
