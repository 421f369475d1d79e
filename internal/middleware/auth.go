package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"notesapp/internal/utils"
)

const UserIDKey = "user_id"

// SessionChecker reports whether the user still has a live session.
type SessionChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// AuthMiddleware accepts only access tokens. With sessions != nil a token of
// a logged-out user is rejected as well.
func AuthMiddleware(tokens *utils.TokenManager, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr, ok := BearerToken(c)
		if !ok {
			unauthorized(c, "Access token is missing or invalid")
			return
		}

		claims, err := tokens.Parse(tokenStr, utils.PurposeAccess)
		if err != nil {
			msg := "Access token is missing or invalid"
			if errors.Is(err, utils.ErrTokenExpired) {
				msg = "Access token has expired, use refresh token to generate again"
			}
			unauthorized(c, msg)
			return
		}

		if sessions != nil {
			alive, err := sessions.Exists(c.Request.Context(), claims.UserID)
			if err != nil {
				log.Printf("[auth][gate] session lookup failed user=%s: %v", claims.UserID, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
				return
			}
			if !alive {
				unauthorized(c, "Session expired, please login again")
				return
			}
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	tokenStr := strings.TrimSpace(parts[1])
	return tokenStr, tokenStr != ""
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": msg})
}
