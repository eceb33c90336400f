package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/config"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/handler"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/middleware"
)

// SetupRouter wires the HTTP routes
func SetupRouter(cfg *config.Config, sessions *handler.SessionHandler, events *handler.EventHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Cycle Detection API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(120, time.Minute))
	{
		api.GET("/sessions", sessions.List)
		api.GET("/sessions/:id", sessions.Get)
		api.GET("/sessions/:id/cycles", events.GetCycles)
		api.GET("/sessions/:id/anomalies", events.GetAnomalies)
		api.GET("/events", events.GetEvents)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.POST("/sessions", sessions.Ingest)
			protected.POST("/sessions/:id/detect", sessions.Detect)
		}
	}

	return r
}
