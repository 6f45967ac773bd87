package auth

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"hammerio/internal/logger"
)

const contextKey = "user"

// Middleware returns the JWT middleware guarding secured routes. Tokens are
// parsed with the service's own claims and rejected once blacklisted.
func Middleware(jwtService *JWTService, store TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  contextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				return nil, err
			}
			revoked, err := store.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				logger.Warn().Err(err).Msg("blacklist lookup failed")
			}
			if revoked {
				return nil, errors.New("token has been revoked")
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		},
	})
}

// ClaimsFrom returns the claims of the authenticated caller, or nil.
func ClaimsFrom(c echo.Context) *Claims {
	claims, _ := c.Get(contextKey).(*Claims)
	return claims
}
