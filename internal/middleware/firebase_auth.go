package middleware

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/reelhub/backend/internal/apperr"
	"github.com/reelhub/backend/internal/repositories"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware verifies a Firebase ID token and resolves the local
// user linked to its UID. Tokens of accounts that never registered are rejected.
func FirebaseAuthMiddleware(verifier TokenVerifier, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			user, err := users.GetUserByFirebaseUID(ctx, token.UID)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "No account is linked to this Firebase user")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve user")
			}

			c.Set(ContextFirebaseUID, token.UID)
			c.Set(ContextUserID, user.ID)
			return next(c)
		}
	}
}
