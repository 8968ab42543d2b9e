// Command evaluator runs the PersonaGym evaluator server (the green agent).
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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/config"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/hub"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/repository"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/service"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/subjectclient"
	handler "github.com/Li-Yueting/agentbeats-tutorial/internal/transport/http"
	"github.com/Li-Yueting/agentbeats-tutorial/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting evaluator...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize subject client
	subjectClient := subjectclient.NewClient(cfg.DiscoveryTimeout, cfg.TurnTimeout)

	// Initialize progress stream hub
	streamHub := hub.NewHub()
	go streamHub.Run()

	// Initialize admission policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc := service.New(db, subjectClient, streamHub, policyEngine)

	// Initialize handler
	h := handler.NewHandler(svc, streamHub)

	// Create Echo server
	server := echo.New()
	server.HideBanner = true

	// Middleware
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(server)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Evaluator API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down evaluator...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Evaluator stopped")
}
