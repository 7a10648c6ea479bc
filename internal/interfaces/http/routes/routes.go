// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/technexus/storefront-backend/internal/interfaces/http/handlers"
)

// Handlers bundles every HTTP handler the API exposes
type Handlers struct {
	Auth     *handlers.AuthHandler
	Profile  *handlers.ProfileHandler
	Category *handlers.CategoryHandler
	Product  *handlers.ProductHandler
	Order    *handlers.OrderHandler
	Invoice  *handlers.InvoiceHandler
	Review   *handlers.ReviewHandler
	Chat     *handlers.ChatHandler
	Coupon   *handlers.CouponHandler
	Admin    *handlers.AdminHandler
	Upload   *handlers.UploadHandler
}

// Guards are the middleware chains for authenticated and admin-only routes
type Guards struct {
	Authenticated gin.HandlersChain
	Admin         gin.HandlersChain
}

// SetupRoutes mounts every API route under rg
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	SetupAuthRoutes(rg, h, g)
	SetupProfileRoutes(rg, h, g)
	SetupCatalogRoutes(rg, h, g)
	SetupOrderRoutes(rg, h, g)
	SetupReviewRoutes(rg, h, g)
	SetupChatRoutes(rg, h, g)
	SetupCouponRoutes(rg, h, g)
	SetupAdminRoutes(rg, h, g)
	SetupUploadRoutes(rg, h, g)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)

		protected := auth.Group("", g.Authenticated...)
		protected.GET("/me", h.Auth.Me)
	}
}

// SetupProfileRoutes sets up the caller's profile routes
func SetupProfileRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	profiles := rg.Group("/profiles", g.Authenticated...)
	{
		profiles.GET("/me", h.Profile.GetProfile)
		profiles.PUT("/me", h.Profile.UpdateProfile)
		profiles.GET("/me/points", h.Profile.GetPoints)
	}
}

// SetupCatalogRoutes sets up category and product routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	categories := rg.Group("/categories")
	{
		categories.GET("", h.Category.GetCategories)
		categories.GET("/:id", h.Category.GetCategory)

		admin := categories.Group("", g.Admin...)
		admin.POST("", h.Category.CreateCategory)
		admin.PUT("/:id", h.Category.UpdateCategory)
		admin.DELETE("/:id", h.Category.DeleteCategory)
	}

	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/featured", h.Product.GetFeaturedProducts)
		products.GET("/:id", h.Product.GetProduct)

		admin := products.Group("", g.Admin...)
		admin.POST("", h.Product.CreateProduct)
		admin.PUT("/:id", h.Product.UpdateProduct)
		admin.DELETE("/:id", h.Product.DeleteProduct)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	orders := rg.Group("/orders", g.Authenticated...)
	{
		orders.GET("", h.Order.GetOrders)
		orders.POST("", h.Order.CreateOrder)
		orders.GET("/:id", h.Order.GetOrder)
		orders.GET("/:id/invoice", h.Invoice.GenerateInvoice)
	}

	// The admin chain includes authentication.
	admin := rg.Group("/orders", g.Admin...)
	{
		admin.PATCH("/:id/status", h.Order.UpdateOrderStatus)
		admin.PATCH("/:id/tracking", h.Order.UpdateOrderTracking)
	}
}

// SetupReviewRoutes sets up review routes
func SetupReviewRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	reviews := rg.Group("/reviews")
	{
		reviews.GET("/product/:productId", h.Review.GetProductReviews)
		reviews.POST("", with(g.Authenticated, h.Review.CreateReview)...)
		reviews.GET("/all", with(g.Admin, h.Review.GetAllReviews)...)
	}
}

// SetupChatRoutes sets up the persisted chat routes. Live delivery is on /ws.
func SetupChatRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	chat := rg.Group("/chat", g.Authenticated...)
	{
		chat.GET("/unread", h.Chat.GetUnreadCount)
		chat.GET("", h.Chat.GetMessages)
		chat.POST("", h.Chat.SendMessage)
		chat.POST("/mark-read", h.Chat.MarkRead)
	}

	rg.GET("/chat/online", with(g.Admin, h.Chat.GetOnline)...)
}

// SetupCouponRoutes sets up coupon routes
func SetupCouponRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	coupons := rg.Group("/coupons")
	{
		coupons.GET("/active", h.Coupon.GetActiveCoupons)
		coupons.POST("/validate", with(g.Authenticated, h.Coupon.ValidateCoupon)...)

		admin := coupons.Group("", g.Admin...)
		admin.GET("", h.Coupon.GetCoupons)
		admin.POST("", h.Coupon.CreateCoupon)
		admin.DELETE("/:id", h.Coupon.DeleteCoupon)
	}
}

// SetupAdminRoutes sets up dashboard routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	admin := rg.Group("/admin", g.Admin...)
	{
		admin.GET("/stats", h.Admin.GetStats)
		admin.GET("/customers", h.Admin.GetCustomers)
	}
}

// SetupUploadRoutes sets up media upload routes
func SetupUploadRoutes(rg *gin.RouterGroup, h *Handlers, g Guards) {
	upload := rg.Group("/upload", g.Admin...)
	{
		upload.POST("/product", h.Upload.UploadProductFile)
		upload.POST("/product/multiple", h.Upload.UploadProductFiles)
		upload.POST("/category", h.Upload.UploadCategoryImage)
	}
}

// with returns chain followed by handler without sharing chain's backing array
func with(chain gin.HandlersChain, handler gin.HandlerFunc) gin.HandlersChain {
	out := make(gin.HandlersChain, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, handler)
}
