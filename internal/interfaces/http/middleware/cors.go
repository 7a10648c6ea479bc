// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/technexus/storefront-backend/internal/config"
)

// CORS allows the configured frontend origins with credentials
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     cfg.Security.CORSAllowedMethods,
		AllowHeaders:     cfg.Security.CORSAllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range cfg.Security.CORSAllowedOrigins {
		if origin == "*" {
			// Credentials cannot be combined with a literal wildcard.
			corsConfig.AllowOriginFunc = func(string) bool { return true }
			return cors.New(corsConfig)
		}
	}
	corsConfig.AllowOrigins = cfg.Security.CORSAllowedOrigins

	return cors.New(corsConfig)
}
