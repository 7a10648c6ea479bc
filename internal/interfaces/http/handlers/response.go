// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/user"
	"github.com/technexus/storefront-backend/internal/interfaces/http/middleware"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
)

// respondError writes err as {"error", "code"}. Storage failures are logged
// with their cause and reported generically.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindPersistence {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.ContextRequestID),
			"path":       c.FullPath(),
		}).Error("request failed")
		_ = c.Error(err)
	}
	c.JSON(kind.Status(), gin.H{
		"error": apperror.PublicMessage(err),
		"code":  kind,
	})
}

// bindJSON binds the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"code":    apperror.KindValidation,
			"details": err.Error(),
		})
		return false
	}
	return true
}

// uuidParam parses a path parameter, answering 400 when it is not a UUID
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  apperror.KindValidation,
		})
		return uuid.Nil, false
	}
	return id, true
}

// principal returns the caller resolved by middleware.ResolveRole
func principal(c *gin.Context) (user.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
			"code":  apperror.KindAuthentication,
		})
	}
	return p, ok
}
