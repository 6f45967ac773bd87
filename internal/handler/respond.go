package handler

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"hammerio/internal/auth"
	"hammerio/internal/errors"
	"hammerio/internal/logger"
	"hammerio/internal/model"
)

// MessageResponse is the body of endpoints that only report success.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError converts a service error into an echo HTTP error whose body
// is an errors.ErrorResponse. Unexpected failures are logged and reported
// without detail.
func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("request failed")
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
	}
	return nil
}

// caller returns the authenticated user's claims. Routes using it sit behind
// the JWT middleware, so a missing value is a wiring bug.
func caller(c echo.Context) (*auth.Claims, error) {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing authentication",
			Code:  "UNAUTHORIZED",
		})
	}
	return claims, nil
}

type userLookup interface {
	GetUserByIDOrUsername(ctx context.Context, idOrUsername string) (*model.User, error)
}

// isSelf reports whether idOrUsername resolves to the caller's user id.
// Usernames are looked up at request time, so a token issued before a
// rename does not match the old name.
func isSelf(ctx context.Context, users userLookup, claims *auth.Claims, idOrUsername string) (bool, error) {
	if idOrUsername == claims.UserID {
		return true, nil
	}
	user, err := users.GetUserByIDOrUsername(ctx, idOrUsername)
	if stderrors.Is(err, errors.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.ID == claims.UserID, nil
}
