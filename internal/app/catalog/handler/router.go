package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"productsapp/pkg/logger"
	"productsapp/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	authHandler *AuthHandler,
	productHandler *ProductHandler,
	reviewHandler *ReviewHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("productsapp"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "productsapp",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты аутентификации
	auth := router.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/signin", authHandler.SignIn)
		auth.POST("/refresh", authHandler.Refresh)

		// Защищенные эндпоинты (требуют аутентификации)
		protected := auth.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.GET("/me", authHandler.GetMe)
			protected.POST("/logout", authHandler.Logout)
		}
	}

	// Products endpoints - чтение публичное, мутации требуют JWT токен
	products := router.Group("/products")
	{
		products.GET("", productHandler.GetAllProducts)
		products.GET("/:id", productHandler.GetProduct)

		mutations := products.Group("")
		mutations.Use(authMiddleware.Authenticate())
		{
			mutations.POST("", productHandler.CreateProduct)
			mutations.PATCH("/:id", productHandler.UpdateProduct)
			mutations.DELETE("/:id", productHandler.DeleteProduct)
		}
	}

	// Reviews endpoints - чтение публичное, мутации требуют JWT токен
	reviews := router.Group("/reviews")
	{
		reviews.GET("", reviewHandler.GetAllReviews)
		reviews.GET("/:id", reviewHandler.GetReview)

		mutations := reviews.Group("")
		mutations.Use(authMiddleware.Authenticate())
		{
			mutations.POST("", reviewHandler.CreateReview)
			mutations.PATCH("/:id", reviewHandler.UpdateReview)
			mutations.DELETE("/:id", reviewHandler.DeleteReview)
		}
	}

	return router
}
