package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AliNMackie/blackcard-concierge-ai/agent"
	"github.com/AliNMackie/blackcard-concierge-ai/middleware"
	"github.com/AliNMackie/blackcard-concierge-ai/pkg/notify"
	"github.com/AliNMackie/blackcard-concierge-ai/repository"
	"github.com/AliNMackie/blackcard-concierge-ai/websocket"
)

// RouterConfig carries everything the HTTP surface needs. Main builds one
// from the environment; tests build one by hand.
type RouterConfig struct {
	JWTSecret string
	APIKey    string
	Users     *repository.UsersRepository
	Events    *repository.EventsRepository
	Hub       *websocket.Hub
}

// NewRouter wires middleware, handlers and routes into a gin engine. The
// /api/client prefix mirrors every domain route so a same-origin deployment
// can reach the mocked API under one origin, exactly like the direct paths.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	concierge := agent.New()
	var notifier notify.Notifier
	if cfg.Hub != nil {
		notifier = &notify.WSNotifier{Hub: cfg.Hub}
	}

	authHandler := NewAuthHandler(cfg.Users, cfg.JWTSecret)
	eventsHandler := NewEventsHandler(cfg.Events, cfg.Users, concierge)
	usersHandler := NewUsersHandler(cfg.Users, cfg.Events)
	if notifier != nil {
		eventsHandler = eventsHandler.WithNotifier(notifier)
		usersHandler = usersHandler.WithNotifier(notifier)
	}

	r.GET("/health", HealthCheck)

	authPublic := r.Group("/", middleware.RateLimitAuthMiddleware())
	authPublic.POST("/auth/register", authHandler.Register)
	authPublic.POST("/auth/login", authHandler.Login)

	mount := func(g *gin.RouterGroup) {
		g.GET("/events", eventsHandler.List)
		g.POST("/events/chat", eventsHandler.Chat)
		g.POST("/events/wearable", eventsHandler.Wearable)
		g.POST("/events/vision", eventsHandler.Vision)
		g.POST("/events/intervention/:clientId", eventsHandler.Intervention)

		g.GET("/users/me", usersHandler.Me)
		g.POST("/users/me/toggle-travel", usersHandler.ToggleTravel)
		g.GET("/users/me/travel-status", usersHandler.TravelStatus)
		g.PATCH("/users/clients/:id/message", usersHandler.TrainerMessage)
		g.GET("/users/clients/:id/messages", usersHandler.ClientMessages)
		g.DELETE("/users/:id/wipe", usersHandler.Wipe)
	}

	auth := r.Group("/", AuthMiddleware(cfg.JWTSecret, cfg.APIKey, cfg.Users))
	mount(auth)
	// Same-origin mock prefix used when no external backend is configured.
	mockPrefix := r.Group("/api/client", AuthMiddleware(cfg.JWTSecret, cfg.APIKey, cfg.Users))
	mount(mockPrefix)

	if cfg.Hub != nil {
		auth.GET("/ws", websocket.ServeWS(cfg.Hub))
	}

	return r
}
