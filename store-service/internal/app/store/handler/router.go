package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storerating/pkg/logger"
	"storerating/pkg/metrics"
	"storerating/store-service/internal/app/store/entity"
)

// SetupRoutes настраивает все маршруты store-service
func SetupRoutes(storeHandler *StoreHandler, ratingHandler *RatingHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("store-service"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "store-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticated := router.Group("")
	authenticated.Use(authMiddleware.Authenticate())
	{
		authenticated.GET("/stores", storeHandler.ListStores)
		authenticated.GET("/stores/:id", storeHandler.GetStore)

		rater := authenticated.Group("")
		rater.Use(authMiddleware.RequireRole(entity.RoleNormalUser))
		{
			rater.PUT("/stores/:id/rating", ratingHandler.Rate)
			rater.DELETE("/stores/:id/rating", ratingHandler.Retract)
			rater.GET("/me/ratings", ratingHandler.MyRatings)
		}

		owner := authenticated.Group("/owner")
		owner.Use(authMiddleware.RequireRole(entity.RoleStoreOwner))
		{
			owner.GET("/dashboard", ratingHandler.OwnerDashboard)
		}

		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RequireRole(entity.RoleSystemAdmin))
		{
			admin.POST("/stores", storeHandler.CreateStore)
			admin.GET("/stores", storeHandler.ListStores)
			admin.GET("/stats", storeHandler.Stats)
		}
	}

	return router
}
