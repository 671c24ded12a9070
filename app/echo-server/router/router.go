package router

import (
	"shopsphere/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired, adminOnly, selfOrAdmin echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.GET("/email-verification/:code", handler.VerifyEmail)
	users.POST("/login", handler.Login)
	users.POST("/refresh", handler.RefreshToken)
	users.POST("/logout", handler.Logout, authRequired)
	users.POST("/forgot-password", handler.ForgotPassword)
	users.POST("/reset-password", handler.ResetPassword)

	users.GET("/me", handler.GetProfile, authRequired)
	users.GET("/:id", handler.GetUser, authRequired, selfOrAdmin)
	users.PUT("/:id", handler.UpdateUser, authRequired, selfOrAdmin)
	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.DELETE("/:id", handler.DeleteUser, authRequired, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, optionalAuth, authRequired, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.List)
	products.GET("/:id", handler.Get, optionalAuth)
	products.POST("", handler.Create, authRequired, adminOnly)
	products.PUT("/:id", handler.Update, authRequired, adminOnly)
	products.DELETE("/:id", handler.Delete, authRequired, adminOnly)
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	categories := api.Group("/categories")

	categories.GET("", handler.List)
	categories.GET("/:id", handler.Get)
	categories.POST("", handler.Create, authRequired, adminOnly)
	categories.PUT("/:id", handler.Update, authRequired, adminOnly)
	categories.DELETE("/:id", handler.Delete, authRequired, adminOnly)
}

func SetupOrdersRoutes(api *echo.Group, handler *rest.OrdersHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)

	orders.POST("", handler.Create)
	orders.GET("", handler.List)
	orders.GET("/:id", handler.Get)
	orders.POST("/:id/cancel", handler.Cancel)
	orders.PUT("/:id/status", handler.UpdateStatus, adminOnly)
}

func SetupWishlistRoutes(api *echo.Group, handler *rest.WishlistHandler, authRequired echo.MiddlewareFunc) {
	wishlists := api.Group("/wishlists", authRequired)

	wishlists.POST("", handler.Create)
	wishlists.GET("", handler.List)
	wishlists.GET("/:id", handler.Get)
	wishlists.POST("/:id/items", handler.AddItem)
	wishlists.DELETE("/:id/items/:productId", handler.RemoveItem)
	wishlists.DELETE("/:id", handler.Delete)
}

func SetupFavoriteRoutes(api *echo.Group, handler *rest.FavoriteHandler, authRequired echo.MiddlewareFunc) {
	favorites := api.Group("/favorites", authRequired)

	favorites.POST("", handler.Add)
	favorites.GET("", handler.List)
	favorites.DELETE("/:productId", handler.Remove)
}

func SetupRatingRoutes(api *echo.Group, handler *rest.RatingHandler, authRequired echo.MiddlewareFunc) {
	ratings := api.Group("/ratings")

	ratings.POST("", handler.Create, authRequired)
	ratings.PUT("/:id", handler.Update, authRequired)
	ratings.DELETE("/:id", handler.Delete, authRequired)

	api.GET("/products/:id/ratings", handler.ListByProduct)
}

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired echo.MiddlewareFunc) {
	reco := api.Group("/recommendations")

	reco.GET("/personalized", handler.Personalized, authRequired)
	reco.GET("/for-you", handler.ForYou, authRequired)
	reco.GET("/trending", handler.Trending)

	api.GET("/products/:id/similar", handler.Similar)
}

func SetupQRLoginRoutes(api *echo.Group, handler *rest.QRLoginHandler, authRequired echo.MiddlewareFunc) {
	qr := api.Group("/auth/qr")

	qr.POST("/generate", handler.Generate)
	qr.POST("/scan", handler.Scan)
	qr.POST("/authenticate", handler.Authenticate, authRequired)
	qr.GET("/status/:sessionId", handler.Status)
}

func SetupBehaviorRoutes(api *echo.Group, handler *rest.BehaviorHandler, authRequired echo.MiddlewareFunc) {
	api.POST("/events", handler.Track, authRequired)
}

func SetupScraperRoutes(api *echo.Group, handler *rest.ScraperHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	scraper := api.Group("/admin/scraper-jobs", authRequired, adminOnly)

	scraper.POST("", handler.Create)
	scraper.GET("", handler.List)
	scraper.GET("/:id", handler.Get)
	scraper.PUT("/:id/status", handler.SetStatus)
	scraper.DELETE("/:id", handler.Delete)
	scraper.GET("/:id/history", handler.PriceHistory)
}
