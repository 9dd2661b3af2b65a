package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jaypeewhat/ThriftStore/controllers"
	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/middlewares"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/ws"
)

// Deps is everything the HTTP layer is built from.
type Deps struct {
	Auth          *services.AuthService
	Products      *services.ProductService
	Carts         *services.CartService
	Orders        *services.OrderService
	Chat          *services.ChatService
	Ratings       *services.RatingService
	Notifications *services.NotificationService
	Hub           *ws.Hub
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authCtrl := controllers.NewAuthController(d.Auth)
	productCtrl := controllers.NewProductController(d.Products)
	cartCtrl := controllers.NewCartController(d.Carts)
	orderCtrl := controllers.NewOrderController(d.Orders)
	sellerCtrl := controllers.NewSellerOrderController(d.Orders)
	chatCtrl := controllers.NewChatController(d.Chat)
	ratingCtrl := controllers.NewRatingController(d.Ratings)
	noteCtrl := controllers.NewNotificationController(d.Notifications)
	adminCtrl := controllers.NewAdminController(d.Auth)

	authed := func(roles ...string) gin.HandlerFunc { return middlewares.AuthMiddleware(d.Auth, roles...) }

	// Auth (public)
	a := r.Group("/auth")
	{
		a.POST("/register", authCtrl.Register)
		a.POST("/login", authCtrl.Login)
		a.GET("/me", authed(), authCtrl.Me)
	}

	// Public
	r.GET("/products/:id", productCtrl.Detail)
	r.GET("/sellers/:id/ratings", ratingCtrl.ForSeller)

	// Buyer
	buyer := r.Group("/", authed(entity.RoleBuyer))
	{
		buyer.GET("/cart", cartCtrl.Get)
		buyer.POST("/cart", cartCtrl.Add)
		buyer.DELETE("/cart/:productId", cartCtrl.Remove)
		buyer.POST("/checkout", orderCtrl.Checkout)
		buyer.GET("/buyer/orders", orderCtrl.ListForMe)
		buyer.POST("/orders/:id/cancel-request", orderCtrl.RequestCancel)
		buyer.POST("/orders/:id/rating", ratingCtrl.Create)
	}

	// Either party of an order
	u := r.Group("/", authed())
	{
		u.GET("/orders/:id", orderCtrl.Detail)
		u.GET("/orders/:id/messages", chatCtrl.ListMessages)
		u.POST("/orders/:id/messages", chatCtrl.SendMessage)
		u.POST("/orders/:id/messages/read", chatCtrl.MarkRead)
		u.GET("/messages/unread-count", chatCtrl.UnreadCount)

		u.GET("/notifications", noteCtrl.List)
		u.PATCH("/notifications/:id/read", noteCtrl.MarkRead)
		u.POST("/notifications/read-all", noteCtrl.MarkAllRead)
	}

	// Seller
	seller := r.Group("/seller", authed(entity.RoleSeller))
	{
		seller.GET("/products", productCtrl.Mine)
		seller.POST("/products", productCtrl.Create)
		seller.GET("/orders", sellerCtrl.List)
		seller.GET("/stats", sellerCtrl.Stats)
		seller.PATCH("/orders/:id/status", sellerCtrl.UpdateStatus)
		seller.POST("/orders/:id/cancel-request/resolve", sellerCtrl.ResolveCancel)
		seller.PATCH("/orders/:id/delivery-date", sellerCtrl.SetDeliveryDate)
	}

	// Admin
	admin := r.Group("/admin", authed(entity.RoleAdmin))
	{
		admin.GET("/users", adminCtrl.ListUsers)
		admin.PATCH("/users/:id/suspend", adminCtrl.Suspend)
	}

	if d.Hub != nil {
		r.GET("/ws/realtime", middlewares.WSAuthMiddleware(d.Auth), d.Hub.HandleWebSocket)
	}
}
