package routes

import (
	"net/http"

	"github.com/ArowuTest/hostboard-backend/internal/config"
	"github.com/ArowuTest/hostboard-backend/internal/handlers"
	"github.com/ArowuTest/hostboard-backend/internal/middleware"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/ArowuTest/hostboard-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HandlerDependencies holds the handlers and auth collaborators the router needs
type HandlerDependencies struct {
	BroadcastHandler *handlers.BroadcastHandler
	TemplateHandler  *handlers.TemplateHandler
	InboxHandler     *handlers.InboxHandler
	HostHandler      *handlers.HostHandler
	SettingsHandler  *handlers.ChannelSettingsHandler

	Tokens   *jwt.TokenService
	Identity services.IdentityService
	Logger   *zap.Logger
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.GinMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.Server.RatePerSec), cfg.Server.RateBurst)

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(deps.Tokens, deps.Identity, deps.Logger))
	protected.Use(limiter.Middleware())
	{
		// Inbox routes, for every authenticated host
		inbox := protected.Group("/inbox")
		{
			inbox.GET("", deps.InboxHandler.GetInbox)
			inbox.GET("/unread-count", deps.InboxHandler.GetUnreadCount)
			inbox.POST("/:broadcastId/read", deps.InboxHandler.MarkRead)
		}

		operator := protected.Group("")
		operator.Use(middleware.RequireOperator())

		// Broadcast routes
		broadcasts := operator.Group("/broadcasts")
		{
			broadcasts.GET("", deps.BroadcastHandler.GetBroadcasts)
			broadcasts.POST("", deps.BroadcastHandler.CreateBroadcast)
			broadcasts.GET("/:id", deps.BroadcastHandler.GetBroadcastByID)
			broadcasts.PUT("/:id", deps.BroadcastHandler.UpdateBroadcast)
			broadcasts.DELETE("/:id", deps.BroadcastHandler.DeleteBroadcast)
			broadcasts.POST("/:id/send", deps.BroadcastHandler.SendBroadcast)
			broadcasts.POST("/:id/resume", deps.BroadcastHandler.ResumeBroadcast)
			broadcasts.GET("/:id/recipients", deps.BroadcastHandler.GetRecipients)
			broadcasts.GET("/:id/deliveries", deps.BroadcastHandler.GetDeliveries)
		}

		// Template routes
		templates := operator.Group("/templates")
		{
			templates.GET("", deps.TemplateHandler.GetAllTemplates)
			templates.GET("/count", deps.TemplateHandler.GetTemplateCount)
			templates.GET("/:id", deps.TemplateHandler.GetTemplateByID)
			templates.POST("", deps.TemplateHandler.CreateTemplate)
			templates.PUT("/:id", deps.TemplateHandler.UpdateTemplate)
			templates.DELETE("/:id", deps.TemplateHandler.DeleteTemplate)
		}

		// Host directory routes
		hosts := operator.Group("/hosts")
		{
			hosts.GET("", deps.HostHandler.GetHosts)
			hosts.GET("/:id", deps.HostHandler.GetHostByID)
		}

		// Settings routes
		settings := operator.Group("/settings")
		{
			settings.GET("/channels", deps.SettingsHandler.GetSettings)
			settings.PUT("/channels", deps.SettingsHandler.UpdateSettings)
		}
	}

	return router
}
