package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"chat-backend/cmd"
	"chat-backend/internal/api"
	"chat-backend/internal/chat"
	"chat-backend/internal/gemini"
	"chat-backend/internal/session"
)

type APIConfig struct {
	GeminiAPIKey    string        `env:"GEMINI_API_KEY,notEmpty,required"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Port            string        `env:"PORT" envDefault:"3000"`
	StaticDir       string        `env:"STATIC_DIR" envDefault:"public"`
	UploadTmpDir    string        `env:"UPLOAD_TMP_DIR" envDefault:""`
	MaxHistoryTurns int           `env:"MAX_HISTORY_TURNS" envDefault:"40"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"0"`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}

	store := session.NewMemoryStore()
	// Sessions are never evicted unless SESSION_TTL is set, so long-lived
	// processes accumulate them indefinitely.
	store.StartJanitor(ctx, cfg.SessionTTL, time.Minute)

	relay := chat.NewRelay(store, client, cfg.MaxHistoryTurns)

	// --- Chi Router Setup ---
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Log requests
	r.Use(middleware.Recoverer) // Recover from panics

	chatHandler := api.NewChatService(store, relay, client, cfg.UploadTmpDir)
	chatHandler.AddRoutes(r)

	// Static assets for the chat frontend.
	r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.Port, err)
	}

	log.Println("Server stopped.")
}
