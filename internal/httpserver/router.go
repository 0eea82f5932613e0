package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/pkg/db"
	"github.com/Skotchmaster/general_store/pkg/logging"
	authmw "github.com/Skotchmaster/general_store/pkg/middleware/auth"
)

type Deps struct {
	DB           *gorm.DB
	CookieSecure bool

	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	AccountHandler *AccountHTTP
	OfferHandler   *OfferHTTP
	InboxHandler   *InboxHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	sess := authmw.NewSessionMiddleware(SessionResolver{Svc: d.AuthHandler.Svc}, d.CookieSecure)

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.LogOut)
	auth.GET("/me", d.AuthHandler.Me, sess.RequireAuth)

	api.GET("/categories", d.CatalogHandler.ListCategories)
	products := api.Group("/products")
	products.GET("", d.CatalogHandler.ListProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	api.POST("/orders", d.OrderHandler.CreateOrder, sess.OptionalAuth)
	api.GET("/orders/track", d.OrderHandler.TrackOrder)

	api.GET("/offers", d.OfferHandler.ListActive)

	conv := api.Group("/conversations", sess.OptionalAuth)
	conv.POST("", d.InboxHandler.StartConversation)
	conv.POST("/:id/messages", d.InboxHandler.CustomerMessage)

	user := api.Group("/user", sess.RequireAuth)
	user.GET("/orders", d.OrderHandler.UserOrders)
	user.GET("/loyalty", d.AccountHandler.GetLoyalty)
	user.GET("/cart", d.AccountHandler.GetCart)
	user.POST("/cart", d.AccountHandler.AddToCart)
	user.DELETE("/cart", d.AccountHandler.ClearCart)
	user.PUT("/cart/:productId", d.AccountHandler.UpdateCartItem)
	user.DELETE("/cart/:productId", d.AccountHandler.RemoveCartItem)

	admin := api.Group("/admin", sess.RequireAdmin)
	admin.GET("/stats", d.InboxHandler.Dashboard)

	admin.GET("/categories", d.CatalogHandler.ListCategories)
	admin.POST("/categories", d.CatalogHandler.CreateCategory)
	admin.PATCH("/categories/:id", d.CatalogHandler.PatchCategory)
	admin.DELETE("/categories/:id", d.CatalogHandler.DeleteCategory)

	admin.GET("/products", d.CatalogHandler.ListProducts)
	admin.GET("/products/low-stock", d.CatalogHandler.LowStock)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)

	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.GET("/orders/:id", d.OrderHandler.GetOrder)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)

	admin.GET("/notifications", d.InboxHandler.ListNotifications)
	admin.POST("/notifications", d.InboxHandler.CreateNotification)
	admin.PATCH("/notifications/:id/read", d.InboxHandler.MarkNotificationRead)
	admin.DELETE("/notifications/:id", d.InboxHandler.DeleteNotification)

	admin.GET("/conversations", d.InboxHandler.ListConversations)
	admin.GET("/conversations/:id/messages", d.InboxHandler.ListMessages)
	admin.POST("/conversations/:id/messages", d.InboxHandler.AdminReply)
	admin.PATCH("/conversations/:id/read", d.InboxHandler.MarkConversationRead)

	admin.GET("/offers", d.OfferHandler.List)
	admin.POST("/offers", d.OfferHandler.Create)
	admin.PATCH("/offers/:id", d.OfferHandler.Patch)
	admin.PATCH("/offers/:id/toggle", d.OfferHandler.Toggle)
	admin.DELETE("/offers/:id", d.OfferHandler.Delete)
}

func (d *Deps) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx, d.DB); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "status", 503, "error", err)
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
