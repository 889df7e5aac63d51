package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ouvidorlabs/ouvidor/app/cfg"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Read endpoints
	r.GET("/complaints", handler.ListComplaints)
	r.GET("/complaints/:id", handler.GetComplaint)
	r.GET("/benchmark", handler.GetBenchmark)
	r.GET("/coupons/:code", handler.ValidateCoupon)

	// Mutating endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.POST("/scrape/:slug", handler.RunScrape)
			api.POST("/complaints/:id/analyze", handler.AnalyzeComplaint)
			api.POST("/complaints/:id/response", handler.GenerateResponse)
			api.PUT("/complaints/:id/response", handler.EditResponse)
			api.POST("/complaints/:id/response/send", handler.SendResponse)
			api.POST("/coupons/:code/redeem", handler.RedeemCoupon)
		}
		log.Printf("API endpoints enabled with authentication")
	} else {
		log.Printf("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health":     "/health",
			"stats":      "/stats",
			"complaints": "/complaints?company=<slug>&status=<status>&sentiment=<sentiment>",
			"complaint":  "/complaints/<id>",
			"benchmark":  "/benchmark",
			"coupon":     "/coupons/<code>",
		}

		if apiAccessKey != "" {
			endpoints["scrape"] = "/api/scrape/<slug> (POST, requires X-API-Key header)"
			endpoints["analyze"] = "/api/complaints/<id>/analyze (POST, requires X-API-Key header)"
			endpoints["response"] = "/api/complaints/<id>/response (POST/PUT, requires X-API-Key header)"
			endpoints["send"] = "/api/complaints/<id>/response/send (POST, requires X-API-Key header)"
			endpoints["redeem"] = "/api/coupons/<code>/redeem (POST, requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "Ouvidor",
			"version":     cfg.GetVersion(),
			"description": "Complaint monitoring backend with scraping, analysis, and response drafting",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
