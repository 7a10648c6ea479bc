// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/user"
)

// ProfileHandler handles the caller's own profile
type ProfileHandler struct {
	profileService *user.ProfileService
	log            *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *user.ProfileService, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log,
	}
}

// GetProfile handles GET /profiles/me
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /profiles/me
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Upsert(c.Request.Context(), p.ID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetPoints handles GET /profiles/me/points
func (h *ProfileHandler) GetPoints(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	points, err := h.profileService.Points(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, points)
}
