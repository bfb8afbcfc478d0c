package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dinopy/tasksync/internal/auth"
	"github.com/dinopy/tasksync/internal/split"
	"github.com/dinopy/tasksync/internal/storage/sqlite"
	"github.com/dinopy/tasksync/internal/ws"
	"github.com/dinopy/tasksync/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments use the environment directly.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	logging.Setup()

	port := getEnv("PORT", "8080")
	dbPath := getEnv("DB_PATH", "./data/tasksync.db")
	tokenSecret := os.Getenv("TOKEN_SECRET")

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", dbPath)

	var tokens *auth.TokenManager
	if tokenSecret != "" {
		tokens = auth.NewTokenManager(tokenSecret, 24*time.Hour)
	} else {
		slog.Warn("TOKEN_SECRET not set; resume tokens disabled")
	}

	manager := ws.NewClientManager()
	resolver := auth.NewResolver(store, tokens)
	splitter := split.NewSplitter(store, ws.NewBroadcaster(manager))

	wsHandler := ws.NewHandler(
		ws.Config{
			PingInterval: 5 * time.Second,
			PingTimeout:  60 * time.Second,
		},
		manager, resolver, store, splitter, tokenIssuer(tokens),
	)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     loggingMiddleware(mux),
		ReadTimeout: 10 * time.Second,
	}

	slog.Info("server starting", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// tokenIssuer keeps the nil TokenManager from becoming a non-nil interface.
func tokenIssuer(tokens *auth.TokenManager) ws.TokenIssuer {
	if tokens == nil {
		return nil
	}
	return tokens
}

// loggingMiddleware logs all incoming requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		if r.URL.Path == "/metrics" || r.URL.Path == "/healthz" {
			return
		}
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
