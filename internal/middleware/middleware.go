// Package middleware holds the gin handlers shared by both HTTP servers.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookshop/internal/logger"
)

// Logger writes one zerolog line per request.
func Logger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log := logger.Get()
		start := time.Now()
		path := ctx.Request.URL.Path
		ctx.Next()

		status := ctx.Writer.Status()
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}
		event.Str("method", ctx.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", ctx.ClientIP()).
			Msg("request")
	}
}

// Recovery turns a panic into a 500 answered with body, logging the cause.
func Recovery(body any) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(ctx *gin.Context, err any) {
		logger.Get().Error().Interface("panic", err).Str("path", ctx.Request.URL.Path).Msg("handler panicked")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// NotFound answers unmatched routes with body.
func NotFound(body any) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, body)
	}
}
