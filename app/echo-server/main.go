package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopsphere/app/echo-server/router"
	"shopsphere/business/behavior"
	"shopsphere/business/category"
	"shopsphere/business/favorite"
	"shopsphere/business/orders"
	"shopsphere/business/product"
	"shopsphere/business/qrlogin"
	"shopsphere/business/rating"
	"shopsphere/business/recommendation"
	"shopsphere/business/scraper"
	userService "shopsphere/business/user"
	"shopsphere/business/wishlist"
	"shopsphere/internal/middleware"
	"shopsphere/internal/repository/notification"
	psqlRepo "shopsphere/internal/repository/postgres"
	redisRepo "shopsphere/internal/repository/redis"
	"shopsphere/internal/rest"
	"shopsphere/pkg/config"
	"shopsphere/pkg/database"
	redisdb "shopsphere/pkg/database/redis"
	"shopsphere/pkg/logger"
	"shopsphere/pkg/metrics"
	"shopsphere/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting ShopSphere", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	// Init validate
	validate := validator.New()

	jwtManager := utils.NewJWTManager(
		cfg.JWT.SecretKey,
		time.Duration(cfg.JWT.AccessTTLMins)*time.Minute,
		time.Duration(cfg.JWT.RefreshTTLHours)*time.Hour,
	)

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	wishlistRepo := psqlRepo.NewWishlistRepository(db)
	favoriteRepo := psqlRepo.NewFavoriteRepository(db)
	ratingRepo := psqlRepo.NewRatingRepository(db)
	behaviorRepo := psqlRepo.NewBehaviorRepository(db)
	scraperRepo := psqlRepo.NewScraperRepository(db)

	tokenRepo := redisRepo.NewTokenRepository(redisClient)
	recoCache := redisRepo.NewRecommendationCache(redisClient)
	qrSessionRepo := redisRepo.NewQRSessionRepository(redisClient)

	// Behavior tracker consumes events asynchronously.
	tracker := behavior.NewTracker(behaviorRepo, cfg.Behavior.QueueSize, cfg.Behavior.Workers)

	// Init service
	usrService := userService.NewUserService(userRepo, tokenRepo, validate, mailjetEmail, jwtManager,
		cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl)
	productService := product.NewProductService(productRepo, categoryRepo, tracker)
	categoryService := category.NewCategoryService(categoryRepo)
	ordersService := orders.NewOrdersService(ordersRepo, productRepo, tracker)
	wishlistService := wishlist.NewWishlistService(wishlistRepo, productRepo, tracker)
	favoriteService := favorite.NewFavoriteService(favoriteRepo, productRepo, tracker)
	ratingService := rating.NewRatingService(ratingRepo, productRepo)
	recoService := recommendation.NewService(productRepo, behaviorRepo, ordersRepo, recoCache)
	qrService := qrlogin.NewService(qrSessionRepo, userRepo, tokenRepo, jwtManager)
	scraperService := scraper.NewScraperService(scraperRepo, productRepo)

	// Init handler
	userHandler := rest.NewUserHandler(usrService)
	productHandler := rest.NewProductHandler(productService)
	categoryHandler := rest.NewCategoryHandler(categoryService)
	ordersHandler := rest.NewOrdersHandler(ordersService)
	wishlistHandler := rest.NewWishlistHandler(wishlistService)
	favoriteHandler := rest.NewFavoriteHandler(favoriteService)
	ratingHandler := rest.NewRatingHandler(ratingService)
	recoHandler := rest.NewRecommendationHandler(recoService)
	qrHandler := rest.NewQRLoginHandler(qrService)
	behaviorHandler := rest.NewBehaviorHandler(tracker)
	scraperHandler := rest.NewScraperHandler(scraperService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(requestMetrics)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth middleware
	authRequired := middleware.AuthMiddleware(jwtManager)
	optionalAuth := middleware.OptionalAuth(jwtManager)
	adminOnly := middleware.AdminOnly()
	selfOrAdmin := middleware.SelfOrAdmin()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly, selfOrAdmin)
	router.SetupProductRoutes(api, productHandler, optionalAuth, authRequired, adminOnly)
	router.SetupCategoryRoutes(api, categoryHandler, authRequired, adminOnly)
	router.SetupOrdersRoutes(api, ordersHandler, authRequired, adminOnly)
	router.SetupWishlistRoutes(api, wishlistHandler, authRequired)
	router.SetupFavoriteRoutes(api, favoriteHandler, authRequired)
	router.SetupRatingRoutes(api, ratingHandler, authRequired)
	router.SetupRecommendationRoutes(api, recoHandler, authRequired)
	router.SetupQRLoginRoutes(api, qrHandler, authRequired)
	router.SetupBehaviorRoutes(api, behaviorHandler, authRequired)
	router.SetupScraperRoutes(api, scraperHandler, authRequired, adminOnly)

	// Background price scraper
	var scrapeRunner *scraper.Runner
	if cfg.Scraper.Enabled {
		scrapeRunner = scraper.NewRunner(scraperRepo, productRepo, favoriteRepo, userRepo, mailjetEmail,
			cfg.Scraper.TickSecs, cfg.Scraper.UserAgent, cfg.Scraper.RequestsPerSec)
		scrapeRunner.Start()
	}

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if scrapeRunner != nil {
		scrapeRunner.Stop()
	}

	// Drain pending behavior events before exit.
	tracker.Close()

	logger.Info("Server stopped")
}

// requestMetrics records request latency by route and method.
func requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(route, c.Request().Method).Observe(time.Since(start).Seconds())

		return err
	}
}
