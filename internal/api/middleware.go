package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ghosttier/arsenal-server/internal/auth"
)

// sessionCookie is the HttpOnly cookie set on register/login. Browser
// clients authenticate with it; API clients send a Bearer header.
const sessionCookie = "auth-token"

// extractToken pulls the session token from the Authorization header or,
// failing that, from the session cookie.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

// jwtMiddleware validates the session token and stores the caller's
// identity in the request context.
func (rs *RestServer) jwtMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		claims, ok := auth.ValidateJWT(token)
		if !ok {
			respondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// adminMiddleware rejects callers without the admin role. Must run after
// jwtMiddleware.
func (rs *RestServer) adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			respondError(c, http.StatusInternalServerError, "Missing caller identity")
			c.Abort()
			return
		}

		if role.(auth.Role) != auth.RoleAdmin {
			respondError(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// callerID returns the authenticated user's ID from the request context.
func callerID(c *gin.Context) string {
	id, _ := c.Get("user_id")
	s, _ := id.(string)
	return s
}
