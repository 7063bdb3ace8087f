package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/azaliaz/bookshop/internal/logger"
)

// requestError is a client mistake whose text is safe to send back.
type requestError string

func (e requestError) Error() string { return string(e) }

func badRequest(format string, args ...any) error {
	return requestError(fmt.Sprintf(format, args...))
}

// abortWith answers err as {"error": ...}. Server errors are logged and
// hidden behind a generic message.
func abortWith(ctx *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Get().Error().Err(err).Str("path", ctx.FullPath()).Msg("request failed")
		ctx.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func pathID(ctx *gin.Context, what string) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		return 0, badRequest("invalid %s id", what)
	}
	return id, nil
}

func queryInt(ctx *gin.Context, name string, def int) (int, error) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("%s must be an integer", name)
	}
	return v, nil
}

func queryFloat(ctx *gin.Context, name string) (*float64, error) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badRequest("%s must be a number", name)
	}
	return &v, nil
}

func queryOrder(ctx *gin.Context) (bool, error) {
	switch ctx.DefaultQuery("order", "desc") {
	case "desc":
		return false, nil
	case "asc":
		return true, nil
	}
	return false, badRequest("order must be asc or desc")
}

// bind decodes the JSON body into req and validates it.
func (s *Server) bind(ctx *gin.Context, req any) error {
	if err := ctx.ShouldBindJSON(req); err != nil {
		return badRequest("incorrectly entered data")
	}
	if err := s.valid.Struct(req); err != nil {
		return badRequest("%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid input"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "url":
		return fe.Field() + " must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}
