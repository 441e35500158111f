package main

import (
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AliNMackie/blackcard-concierge-ai/agent"
	"github.com/AliNMackie/blackcard-concierge-ai/handlers"
	"github.com/AliNMackie/blackcard-concierge-ai/initializers"
	"github.com/AliNMackie/blackcard-concierge-ai/pkg/appenv"
	"github.com/AliNMackie/blackcard-concierge-ai/repository"
	"github.com/AliNMackie/blackcard-concierge-ai/websocket"
)

func main() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		log.Fatal("JWT_SECRET must be set and at least 32 characters")
	}
	apiKey := os.Getenv("ELITE_API_KEY")
	if apiKey == "" && appenv.IsProduction() {
		log.Fatal("ELITE_API_KEY must be set in production")
	}

	if os.Getenv("GIN_MODE") == "release" || appenv.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	usersRepo := repository.NewUsersRepository()
	eventsRepo := repository.NewEventsRepository()
	initializers.SeedDemoData(usersRepo, eventsRepo)

	concierge := agent.New()
	stopStream := initializers.StartDemoStream(usersRepo, eventsRepo, concierge)
	defer stopStream()

	hub := websocket.NewHub()

	r := handlers.NewRouter(handlers.RouterConfig{
		JWTSecret: jwtSecret,
		APIKey:    apiKey,
		Users:     usersRepo,
		Events:    eventsRepo,
		Hub:       hub,
	})

	// Configure trusted proxies for correct client IP handling in production
	if trusted := os.Getenv("TRUSTED_PROXIES"); trusted != "" {
		parts := strings.Split(trusted, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := r.SetTrustedProxies(parts); err != nil {
			log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
		}
	} else {
		// Default to loopback only; override via TRUSTED_PROXIES in production
		_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
