package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openlore/lorebase/internal/pkg/response"
	"github.com/openlore/lorebase/internal/pkg/token"
)

// Auth requires a valid bearer token and exposes the caller's identity
// as the userID and email context keys.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			response.Unauthorized(c, "Authorization header required", "AUTH_MISSING")
			c.Abort()
			return
		}

		claims, err := token.ValidateToken(raw)
		if err != nil {
			if errors.Is(err, token.ErrExpiredToken) {
				response.Unauthorized(c, "Token expired", "AUTH_EXPIRED")
			} else {
				response.Unauthorized(c, "Invalid token", "AUTH_INVALID")
			}
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// bearerToken accepts both "Bearer <token>" (case-insensitive) and a
// raw token as the header value.
func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	fields := strings.Fields(header)
	if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
		return fields[1]
	}
	return header
}
