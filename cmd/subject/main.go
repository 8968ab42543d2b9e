// Command subject runs the persona-conditioned agent under evaluation
// (the white agent).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/llm"
	"github.com/Li-Yueting/agentbeats-tutorial/internal/subject"
)

const defaultPersona = "A 29-year-old Muslim woman from Malaysia, working as a software developer and advocating for women in STEM fields"

func main() {
	port := flag.Int("port", 8001, "Port to bind the server")
	persona := flag.String("persona", defaultPersona, "Persona description for the agent")
	model := flag.String("model", "gpt-4o-mini", "LLM model to use")
	llmURL := flag.String("llm-url", "https://api.openai.com", "Base URL of the OpenAI-compatible API")
	flag.Parse()

	log.Printf("Starting subject agent...")
	log.Printf("Persona: %.50s...", *persona)

	llmClient := llm.NewLLMClient(*llmURL, os.Getenv("OPENAI_API_KEY"), 2*time.Minute)
	agent := subject.NewAgent(*persona, *model, llmClient)
	h := subject.NewHandler(agent)

	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Logger())
	server.Use(middleware.Recover())

	h.RegisterRoutes(server)

	go func() {
		addr := fmt.Sprintf(":%d", *port)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Subject agent started on port %d", *port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down subject agent...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Subject agent stopped")
}
