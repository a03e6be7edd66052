package routes

import (
	"github.com/sellyourtackle/tackle-backend/controllers"
	"github.com/sellyourtackle/tackle-backend/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Webhook  *controllers.WebhookController
	Orders   *controllers.OrderController
	Products *controllers.ProductController
	Seller   *controllers.SellerController
	Admin    *controllers.AdminController
}

func Register(r *gin.Engine, ctrl Controllers, jwtSecret []byte, allowOrigins []string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Stripe webhook: no session, no auth, raw body required.
	r.POST("/stripe/webhook", ctrl.Webhook.StripeWebhook)

	// Public storefront.
	public := r.Group("/")
	public.Use(middleware.SessionMiddleware())
	{
		public.GET("/products", ctrl.Products.ListProducts)
		public.GET("/products/:slug", ctrl.Products.GetProduct)

		public.GET("/cart", ctrl.Cart.GetCart)
		public.POST("/cart/items/:productID", ctrl.Cart.AddItem)
		public.DELETE("/cart/items/:productID", ctrl.Cart.RemoveItem)
	}

	// Checkout works for guests and logged-in buyers alike.
	checkout := r.Group("/checkout")
	checkout.Use(middleware.SessionMiddleware(), middleware.OptionalAuth(jwtSecret))
	checkout.POST("", ctrl.Checkout.SubmitCheckout)
	checkout.GET("/prefill", ctrl.Checkout.Prefill)

	// Authenticated buyer/seller routes.
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(jwtSecret))
	{
		auth.GET("/orders", ctrl.Orders.ListMyOrders)
		auth.GET("/orders/:id", ctrl.Orders.GetOrder)

		auth.POST("/seller/products", ctrl.Products.CreateProduct)
		auth.PATCH("/seller/products/:id", ctrl.Products.UpdateProduct)
		auth.DELETE("/seller/products/:id", ctrl.Products.DeleteProduct)
		auth.GET("/seller/products", ctrl.Products.MyListings)

		auth.GET("/seller/sales", ctrl.Orders.ListSales)
		auth.POST("/seller/orders/:id/dispatch", ctrl.Orders.DispatchOrder)
		auth.POST("/seller/orders/:id/refund", ctrl.Orders.RefundOrder)

		auth.POST("/seller/onboarding", ctrl.Seller.StartOnboarding)
		auth.GET("/seller/onboarding/return", ctrl.Seller.OnboardingReturn)

		auth.GET("/admin/webhook-logs", ctrl.Admin.ListWebhookLogs)
		auth.POST("/admin/payouts/run", ctrl.Admin.RunPayoutSweep)
	}
}
