package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var validationCodes = []struct {
	kind error
	code string
}{
	{service.ErrRequired, "required"},
	{service.ErrEmptyTags, "empty_tags"},
	{service.ErrDuplicateTag, "duplicate_tag"},
	{service.ErrUnknownTag, "unknown_tag"},
	{service.ErrEmptyIngredients, "empty_ingredients"},
	{service.ErrDuplicateIngredient, "duplicate_ingredient"},
	{service.ErrUnknownIngredient, "unknown_ingredient"},
	{service.ErrInvalidAmount, "invalid_amount"},
	{service.ErrInvalidCookingTime, "invalid_cooking_time"},
	{service.ErrSelfFollow, "self_follow"},
	{errBadForm, "invalid_form"},
}

// fail writes the error envelope for err and aborts the request.
func fail(c *gin.Context, err error) {
	status, body := describe(err)
	body.RequestID = middleware.RequestIDFrom(c)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		middleware.LoggerFrom(c).Error().Err(err).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
	})
}

func describe(err error) (int, types.ErrorResponse) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		code := "validation_error"
		for _, vc := range validationCodes {
			if errors.Is(verr.Kind, vc.kind) {
				code = vc.code
				break
			}
		}
		return http.StatusBadRequest, types.ErrorResponse{
			Code:    code,
			Message: verr.Kind.Error(),
			Field:   verr.Field,
			Values:  verr.Values,
		}
	}

	switch {
	case errors.Is(err, media.ErrDecode):
		return http.StatusBadRequest, types.ErrorResponse{Code: "invalid_image", Message: err.Error(), Field: "image"}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, types.ErrorResponse{Code: "not_found", Message: err.Error()}
	case errors.Is(err, service.ErrAlreadyFollowing):
		return http.StatusConflict, types.ErrorResponse{Code: "already_following", Message: err.Error()}
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, types.ErrorResponse{Code: "already_exists", Message: err.Error()}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, types.ErrorResponse{Code: "forbidden", Message: "only the author may change this recipe"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, types.ErrorResponse{Code: "invalid_credentials", Message: "invalid email or password"}
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, types.ErrorResponse{Code: "unauthorized", Message: "authentication required"}
	}
	return http.StatusInternalServerError, types.ErrorResponse{Code: "internal_error", Message: "internal server error"}
}
