package router

import (
	"github.com/labstack/echo/v4"

	"marketplace/domain"
	"marketplace/internal/middleware"
	"marketplace/internal/rest"
)

type Handlers struct {
	User     *rest.UserHandler
	Product  *rest.ProductHandler
	Cart     *rest.CartHandler
	Orders   *rest.OrdersHandler
	Discount *rest.DiscountHandler
	Review   *rest.ReviewHandler
}

// Setup mounts every route group under api.
func Setup(api *echo.Group, h Handlers, authRequired echo.MiddlewareFunc) {
	SetupUserRoutes(api, h.User, authRequired)
	SetupProductRoutes(api, h.Product, h.Review, authRequired)
	SetupCartRoutes(api, h.Cart, authRequired)
	SetOrdersRoutes(api, h.Orders, authRequired)
	SetDiscountRoutes(api, h.Discount, authRequired)
	SetupAdminRoutes(api, h, authRequired)
}

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	auth := api.Group("/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/logout", handler.Logout, authRequired)
	auth.GET("/me", handler.Me, authRequired)

	customerOnly := middleware.RequireRoles(domain.RoleCustomer)
	wishlist := api.Group("/wishlist", authRequired, customerOnly)
	wishlist.GET("", handler.GetWishlist)
	wishlist.POST("", handler.AddToWishlist)
	wishlist.DELETE("/:product_id", handler.RemoveFromWishlist)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, reviews *rest.ReviewHandler, authRequired echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.GetAllProducts)
	products.GET("/featured", handler.GetFeatured)
	products.GET("/promotions", handler.GetPromotions)
	products.GET("/categories", handler.GetCategories)
	products.GET("/:id", handler.GetProductByID)
	products.GET("/:id/reviews", reviews.GetReviews)
	products.POST("/:id/reviews", reviews.AddReview, authRequired, middleware.RequireRoles(domain.RoleCustomer))

	sellers := middleware.RequireRoles(domain.RoleVendor, domain.RoleAdmin)
	vendor := api.Group("/vendor/products", authRequired, sellers)
	vendor.GET("", handler.GetMyProducts)
	vendor.POST("", handler.CreateProduct)
	vendor.PUT("/:id", handler.UpdateProduct)
	vendor.DELETE("/:id", handler.DeleteProduct)
	vendor.PATCH("/:id/active", handler.ToggleActive)
	vendor.PATCH("/:id/stock", handler.SetStock)
}

func SetupCartRoutes(api *echo.Group, handler *rest.CartHandler, authRequired echo.MiddlewareFunc) {
	cart := api.Group("/cart", authRequired, middleware.RequireRoles(domain.RoleCustomer))
	cart.GET("", handler.GetCart)
	cart.POST("", handler.AddItem)
	cart.PUT("/:product_id", handler.UpdateItem)
	cart.DELETE("/:product_id", handler.RemoveItem)
	cart.DELETE("", handler.ClearCart)
}

func SetOrdersRoutes(api *echo.Group, ordersHandler *rest.OrdersHandler, authRequired echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)
	orders.POST("", ordersHandler.Checkout, middleware.RequireRoles(domain.RoleCustomer))
	orders.GET("", ordersHandler.GetAllOrders)
	orders.GET("/:id", ordersHandler.GetOrderByID)
	orders.PUT("/:id/status", ordersHandler.UpdateStatus)
	orders.POST("/:id/payment", ordersHandler.SubmitPayment)
	orders.POST("/:id/confirm-receipt", ordersHandler.ConfirmReceipt)
	orders.POST("/:id/approve", ordersHandler.Approve)
	orders.POST("/:id/confirm-delivery", ordersHandler.ConfirmDelivery)
	orders.POST("/:id/cancel", ordersHandler.Cancel)
	orders.DELETE("/:id", ordersHandler.DeleteOrder)
	orders.POST("/:id/comments", ordersHandler.AddComment)
	orders.GET("/:id/comments", ordersHandler.GetComments)
}

func SetDiscountRoutes(api *echo.Group, handler *rest.DiscountHandler, authRequired echo.MiddlewareFunc) {
	customerOnly := middleware.RequireRoles(domain.RoleCustomer)

	discounts := api.Group("/discounts", authRequired)
	discounts.GET("", handler.GetMyCodes, customerOnly)
	discounts.POST("/validate", handler.ValidateCode, customerOnly)

	spin := api.Group("/spin", authRequired, customerOnly)
	spin.GET("", handler.GetSpinStatus)
	spin.POST("", handler.Spin)
}

func SetupAdminRoutes(api *echo.Group, h Handlers, authRequired echo.MiddlewareFunc) {
	admin := api.Group("/admin", authRequired, middleware.AdminOnly())
	admin.GET("/users", h.User.GetAllUsers)
	admin.GET("/products", h.Product.GetAllProductsAdmin)
	admin.POST("/discounts", h.Discount.CreateCode)
	admin.POST("/spin/reset", h.Discount.ResetSpins)
	admin.DELETE("/reviews/:review_id", h.Review.DeleteReview)
}
