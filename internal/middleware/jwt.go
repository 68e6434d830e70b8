package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"attendhq/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TokenVerifier resolves the signing key for incoming tokens. Either a
// shared HMAC secret or a remote JWKS endpoint backs it.
type TokenVerifier struct {
	keyfunc jwt.Keyfunc
}

// NewHMACVerifier verifies HS256 tokens issued by this service.
func NewHMACVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{
		keyfunc: func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		},
	}
}

// NewJWKSVerifier verifies RS256 tokens against keys fetched from a JWKS
// endpoint, refreshed in the background until ctx is cancelled.
func NewJWKSVerifier(ctx context.Context, jwksURL string) (*TokenVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			log.Printf("jwks refresh failed: %v", err)
		},
	})
	if err != nil {
		return nil, err
	}
	return &TokenVerifier{keyfunc: jwks.Keyfunc}, nil
}

// JWTMiddleware validates the bearer token and puts the authenticated user
// ID on the request context.
func JWTMiddleware(verifier *TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			token, err := jwt.Parse(tokenString, verifier.keyfunc)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, ok := claims["sub"].(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing subject in token")
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject format")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			if jti, ok := claims["jti"].(string); ok {
				ctx = context.WithValue(ctx, common.SessionIDKey, jti)
			}
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
