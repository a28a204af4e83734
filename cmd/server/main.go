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

	"github.com/go-logr/stdr"

	"mistral-chat/internal/chatview"
	"mistral-chat/internal/config"
	"mistral-chat/internal/handlers"
	"mistral-chat/internal/router"
	"mistral-chat/internal/services"
	"mistral-chat/internal/telemetry"
	"mistral-chat/internal/web"
	"mistral-chat/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Mistral Chat...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")
	if cfg.MistralAPIKey == "" {
		log.Println("⚠ MISTRAL_API_KEY is not set; /api/chat will answer 500 until it is")
	}

	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	// ──── Step 2: Tracing ────
	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		log.Fatalf("✗ Tracing initialization failed: %v", err)
	}
	if cfg.OTLPEndpoint != "" {
		log.Printf("✓ Exporting traces to %s", cfg.OTLPEndpoint)
	}
	httpClient := telemetry.NewHTTPClient()

	// ──── Step 3: Initialize Mistral Proxy ────
	mistralService := services.NewMistralService(services.MistralConfig{
		APIKey:      cfg.MistralAPIKey,
		URL:         cfg.MistralURL,
		Model:       cfg.MistralModel,
		Temperature: cfg.MistralTemperature,
		MaxTokens:   cfg.MistralMaxTokens,
	}, httpClient, logger)
	chatHandler := handlers.NewChatHandler(mistralService, logger)
	log.Printf("✓ Mistral proxy ready (model: %s)", cfg.MistralModel)

	// ──── Step 4: Chat View ────
	locale := chatview.LookupLocale(cfg.ChatLocale)
	page, err := web.NewPageHandler(locale)
	if err != nil {
		log.Fatalf("✗ Page rendering failed: %v", err)
	}
	wsHub := websocket.NewHub(chatview.NewProxyClient(cfg.ChatProxyURL, httpClient), locale, logger)
	log.Println("✓ WebSocket hub started")

	// ──── Step 5: Start HTTP Server ────
	r := router.New(chatHandler, page, wsHub, cfg.FrontendURL)

	// No WriteTimeout: completions and websocket sessions are long-lived.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		wsHub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		shutdownTracer(ctx)
	}()

	log.Printf("✓ Mistral Chat ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/chat", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
