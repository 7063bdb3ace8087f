package consts

import "time"

const (
	DBCtxTimeout = 5 * time.Second

	DefaultPage     = 1
	DefaultPageSize = 12
	MaxPageSize     = 100
	SimilarLimit    = 4
	HighlightLimit  = 4
	FeaturedRating  = 4.5

	TokenTTL        = 3 * time.Hour
	SessionTTL      = 24 * time.Hour
	ThemeCookieTTL  = 30 * 24 * time.Hour
	SessionCookie   = "auth.sid"
	ThemeCookie     = "theme"
	CartKey         = "cart"
	UserKey         = "user"
	DefaultStateDir = ".bookshop"
	DefaultAPIAddr  = "http://localhost:8080"
)
