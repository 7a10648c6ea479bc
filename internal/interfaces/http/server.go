// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/domain/analytics"
	"github.com/technexus/storefront-backend/internal/domain/chat"
	"github.com/technexus/storefront-backend/internal/domain/coupon"
	"github.com/technexus/storefront-backend/internal/domain/order"
	"github.com/technexus/storefront-backend/internal/domain/product"
	"github.com/technexus/storefront-backend/internal/domain/upload"
	"github.com/technexus/storefront-backend/internal/domain/user"
	"github.com/technexus/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/technexus/storefront-backend/internal/infrastructure/database/redis"
	"github.com/technexus/storefront-backend/internal/interfaces/http/handlers"
	"github.com/technexus/storefront-backend/internal/interfaces/http/middleware"
	"github.com/technexus/storefront-backend/internal/interfaces/http/routes"
	"github.com/technexus/storefront-backend/internal/interfaces/websocket"
	"github.com/technexus/storefront-backend/internal/pkg/auth"
	"github.com/technexus/storefront-backend/internal/pkg/pdf"
	"github.com/technexus/storefront-backend/internal/pkg/storage"
)

const wsPath = "/ws"

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	log        *logrus.Logger
	gin        *gin.Engine
	httpServer *http.Server
	db         *postgres.DB
	redis      *redis.Client
	relay      *websocket.Relay
}

// NewServer creates a new HTTP server instance. redisClient may be nil.
func NewServer(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, log *logrus.Logger) *Server {
	return &Server{
		config: cfg,
		log:    log,
		db:     db,
		redis:  redisClient,
	}
}

// Handler builds the engine without listening
func (s *Server) Handler() (http.Handler, error) {
	if s.gin != nil {
		return s.gin, nil
	}

	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s.gin, nil
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.log.WithFields(logrus.Fields{
		"port":        s.config.Server.Port,
		"environment": s.config.App.Environment,
	}).Info("🚀 HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop closes live chat connections and gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("🛑 Shutting down HTTP server...")

	if s.relay != nil {
		s.relay.Registry().CloseAll()
	}
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.Metrics())
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout, wsPath))
	s.gin.Use(middleware.RateLimit(s.config.Security.RateLimitPerMinute, s.redisCmdable(), s.log))
}

func (s *Server) redisCmdable() goredis.Cmdable {
	if s.redis == nil {
		return nil
	}
	return s.redis.GetClient()
}

// setupRoutes builds the service graph and mounts every route
func (s *Server) setupRoutes() error {
	db := s.db.GetDB()
	jwt := auth.NewJWTManager(s.config)

	userService := user.NewService(db, s.config, s.log)
	registry := websocket.NewRegistry()

	var presence websocket.PresenceTracker
	if s.redis != nil {
		presence = redis.NewPresence(s.redis.GetClient(), 2*s.config.Chat.PongWait)
	}
	s.relay = websocket.NewRelay(registry, jwt, userService, presence, s.config, s.log)

	provider, err := storage.New(s.config.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	if local, ok := provider.(*storage.LocalStorage); ok {
		s.gin.Static(s.config.Storage.PublicPath, local.Root())
	}

	orderService := order.NewService(postgres.NewOrderStore(db), s.log)

	h := &routes.Handlers{
		Auth:     handlers.NewAuthHandler(userService, s.log),
		Profile:  handlers.NewProfileHandler(user.NewProfileService(db), s.log),
		Category: handlers.NewCategoryHandler(product.NewCategoryService(db, s.config), s.log),
		Product:  handlers.NewProductHandler(product.NewService(db, s.config), s.log),
		Order:    handlers.NewOrderHandler(orderService, s.log),
		Invoice:  handlers.NewInvoiceHandler(orderService, pdf.NewService(s.config), s.log),
		Review:   handlers.NewReviewHandler(product.NewReviewService(db), s.log),
		Chat:     handlers.NewChatHandler(chat.NewService(postgres.NewChatStore(db), registry, s.log), s.relay, s.log),
		Coupon:   handlers.NewCouponHandler(coupon.NewService(db), s.log),
		Admin:    handlers.NewAdminHandler(analytics.NewService(db), s.log),
		Upload:   handlers.NewUploadHandler(upload.NewService(postgres.NewUploadStore(db), provider, s.config.Upload, s.log), s.log),
	}

	authenticated := gin.HandlersChain{
		middleware.AuthMiddleware(jwt),
		middleware.ResolveRole(userService, s.log),
	}
	admin := append(gin.HandlersChain{}, authenticated...)
	admin = append(admin, middleware.AdminMiddleware())

	checks := map[string]handlers.HealthChecker{"database": s.db}
	if s.redis != nil {
		checks["redis"] = s.redis
	}
	health := handlers.NewHealthHandler(checks)

	s.gin.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.gin.GET(wsPath, s.relay.Handle)

	api := s.gin.Group("/api")
	api.GET("/health", health.Health)
	routes.SetupRoutes(api, h, routes.Guards{Authenticated: authenticated, Admin: admin})

	return nil
}
