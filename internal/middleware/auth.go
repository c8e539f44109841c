package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"finance-tracker/internal/models"
	"finance-tracker/internal/store"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserIDKey is the gin context key holding the authenticated user's ID.
const UserIDKey = "userID"

// UserFinder looks a user up by ID; *store.Users satisfies it.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware validates the bearer token and stores the caller's user ID
// in the context. Requests without a valid token for an existing user stop
// here with 401.
func AuthMiddleware(jwtSecret string, users UserFinder, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = strings.TrimSpace(parts[1])
			}
		}

		// 2) ?token=xxx, for downloads where headers cannot be set
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, "No token, authorization denied")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, "Token is not valid")
			c.Abort()
			return
		}

		if _, err := users.FindByID(c.Request.Context(), claims.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				util.Error(c, http.StatusUnauthorized, "User no longer exists")
			} else {
				log.Error().Err(err).Str("user_id", claims.UserID).Msg("load user for token")
				util.Error(c, http.StatusInternalServerError, "Server error during authentication")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// CurrentUserID returns the ID stored by AuthMiddleware.
func CurrentUserID(c *gin.Context) (string, bool) {
	id := c.GetString(UserIDKey)
	return id, id != ""
}
