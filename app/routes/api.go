// Package routes mounts the full HTTP surface onto the named router.
package routes

import (
	"net/http"

	"github.com/mkamalov/bazar/app/controllers"
	"github.com/mkamalov/bazar/app/graphql"
	"github.com/mkamalov/bazar/pkg/metrics"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/mkamalov/bazar/pkg/response"
	"github.com/mkamalov/bazar/pkg/router"
)

// Controllers bundles everything Register needs.
type Controllers struct {
	Auth       *controllers.AuthController
	Categories *controllers.CategoryController
	Products   *controllers.ProductController
	Orders     *controllers.OrderController
	Reviews    *controllers.ReviewController
	Chats      *controllers.ChatController
	Catalog    *graphql.Catalog
}

// Register mounts every route. Middleware installed globally on r is
// assumed to already include sessions, logging and recovery.
func Register(r *router.Router, c Controllers) {
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "ok")
	})
	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Post("/graphql", "graphql", c.Catalog.Handler)

	api := r.Group("/api")

	// Registration and sessions.
	auth := api.Group("/auth")
	auth.Post("/register/contact", "auth.register.contact", c.Auth.RegisterContact)
	auth.Post("/register/verify", "auth.register.verify", c.Auth.VerifyOTP)
	auth.Post("/register/complete", "auth.register.complete", c.Auth.CompleteRegistration)
	auth.Post("/login", "auth.login", c.Auth.Login)
	auth.Post("/refresh", "auth.refresh", c.Auth.Refresh)
	auth.Get("/me", "auth.me", c.Auth.Me, middleware.Auth)
	auth.Put("/profile", "auth.profile", c.Auth.UpdateProfile, middleware.Auth)
	auth.Post("/avatar", "auth.avatar", c.Auth.UploadAvatar, middleware.Auth)
	auth.Post("/seller", "auth.seller", c.Auth.BecomeSeller, middleware.Auth)

	// Public catalog.
	api.Get("/categories", "categories.index", c.Categories.Index)
	api.Get("/categories/{id}", "categories.show", c.Categories.Show)
	api.Get("/categories/{id}/children", "categories.children", c.Categories.Children)
	api.Get("/products", "products.index", c.Products.Index)
	api.Get("/products/{id}", "products.show", c.Products.Show)
	api.Get("/products/slug/{slug}", "products.show_by_slug", c.Products.ShowBySlug)
	api.Get("/reviews", "reviews.index", c.Reviews.Index)

	// Seller product management.
	seller := api.Group("", middleware.Auth, middleware.RequireSeller)
	seller.Get("/seller/products", "seller.products", c.Products.Mine)
	seller.Get("/seller/orders", "seller.orders", c.Orders.Sales)
	seller.Post("/products", "products.store", c.Products.Store)
	seller.Put("/products/{id}", "products.update", c.Products.Update)
	seller.Delete("/products/{id}", "products.destroy", c.Products.Destroy)
	seller.Post("/products/{id}/images", "products.images.store", c.Products.UploadImage)

	// Orders. Checkout allows guests; everything else needs an identity.
	api.Post("/orders", "orders.store", c.Orders.Store, middleware.OptionalAuth)
	orders := api.Group("/orders", middleware.Auth)
	orders.Get("", "orders.index", c.Orders.Index)
	orders.Get("/{id}", "orders.show", c.Orders.Show)
	orders.Get("/{id}/events", "orders.events", c.Orders.Events)
	orders.Post("/{id}/cancel", "orders.cancel", c.Orders.Cancel)
	orders.Post("/{id}/refund", "orders.refund", c.Orders.Refund)
	orders.Patch("/{id}/status", "orders.status", c.Orders.UpdateStatus)

	// Reviews.
	reviews := api.Group("/reviews", middleware.Auth)
	reviews.Get("/mine", "reviews.mine", c.Reviews.Mine)
	reviews.Post("", "reviews.store", c.Reviews.Store)
	reviews.Put("/{id}", "reviews.update", c.Reviews.Update)
	reviews.Delete("/{id}", "reviews.destroy", c.Reviews.Destroy)

	// Chat.
	chats := api.Group("/chats", middleware.Auth)
	chats.Get("", "chats.index", c.Chats.Index)
	chats.Post("", "chats.store", c.Chats.Store)
	chats.Get("/{id}/messages", "chats.messages", c.Chats.Messages)
	chats.Post("/{id}/messages", "chats.send", c.Chats.Send)
	r.Get("/ws/chat", "chats.socket", c.Chats.Socket, middleware.Auth)

	// Admin.
	admin := api.Group("/admin", middleware.Auth, middleware.RequireRole("admin"))
	admin.Post("/categories", "admin.categories.store", c.Categories.Store)
	admin.Put("/categories/{id}", "admin.categories.update", c.Categories.Update)
	admin.Delete("/categories/{id}", "admin.categories.destroy", c.Categories.Destroy)
	admin.Get("/reviews/pending", "admin.reviews.pending", c.Reviews.Pending)
	admin.Post("/reviews/{id}/approve", "admin.reviews.approve", c.Reviews.Approve)
}
