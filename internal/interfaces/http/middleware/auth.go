// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/user"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"github.com/technexus/storefront-backend/internal/pkg/auth"
)

// Context keys
const (
	ContextUserID    = "user_id"
	ContextPhone     = "phone"
	ContextPrincipal = "principal"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// RoleResolver looks up whether a user holds the admin role
type RoleResolver interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AuthMiddleware requires a valid bearer token and stores the caller's identity
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperror.Unauthorized("Access token required"))
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			abortWithError(c, apperror.Unauthorized("Invalid authorization header format"))
			return
		}

		claims, err := tokens.ValidateAccessToken(tokenString)
		if err != nil {
			abortWithError(c, apperror.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextPhone, claims.Phone)

		c.Next()
	}
}

// ResolveRole looks the caller's role up once and memoizes a user.Principal on
// the context. Must run after AuthMiddleware.
func ResolveRole(roles RoleResolver, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); ok {
			c.Next()
			return
		}

		userID, ok := GetUserID(c)
		if !ok {
			abortWithError(c, apperror.Unauthorized("Access token required"))
			return
		}

		isAdmin, err := roles.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("failed to resolve role")
			abortWithError(c, err)
			return
		}

		c.Set(ContextPrincipal, user.Principal{
			ID:      userID,
			Phone:   c.GetString(ContextPhone),
			IsAdmin: isAdmin,
		})
		c.Next()
	}
}

// AdminMiddleware ensures the resolved principal is an admin
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok || !p.IsAdmin {
			abortWithError(c, apperror.Forbidden("Admin access required"))
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's id
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetPrincipal returns the principal set by ResolveRole
func GetPrincipal(c *gin.Context) (user.Principal, bool) {
	v, exists := c.Get(ContextPrincipal)
	if !exists {
		return user.Principal{}, false
	}
	p, ok := v.(user.Principal)
	return p, ok
}

func abortWithError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	c.AbortWithStatusJSON(kind.Status(), gin.H{
		"error": apperror.PublicMessage(err),
		"code":  kind,
	})
}
