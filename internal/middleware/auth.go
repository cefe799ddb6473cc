package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// UserIDContextKey is the gin context key holding the authenticated user's id.
	UserIDContextKey = "userID"
	// RoleContextKey is the gin context key holding the authenticated user's role.
	RoleContextKey = "userRole"

	// RoleAdmin marks users allowed on the admin surface.
	RoleAdmin = "admin"
)

// Claims is the JWT payload issued by the auth service.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// RequireAuth verifies the Bearer token, HS256-signed with the shared
// secret, and stores the user id and role in the gin context.
func RequireAuth(jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed token header"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid || claims.UserID == uuid.Nil {
			log.Warn("Token verification failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDContextKey, claims.UserID)
		c.Set(RoleContextKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth; it rejects users without the
// admin role.
func RequireAdmin(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AdminMiddleware")
	return func(c *gin.Context) {
		role, _ := c.Get(RoleContextKey)
		if role != RoleAdmin {
			userID, _ := GetUserID(c)
			log.Warn("Admin access denied", zap.Stringer("userID", userID), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// GetUserID extracts the authenticated user's id from the gin context.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDContextKey)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	return userID, ok
}
