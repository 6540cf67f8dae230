package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/api"
	"studybuddy/internal/config"
	"studybuddy/internal/redis"
	"studybuddy/internal/service/ai"
	"studybuddy/internal/service/assistant"
	"studybuddy/internal/session"
)

func main() {
	cfgPath := os.Getenv("STUDYBUDDY_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	gin.SetMode(cfg.BasicConfig.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := ai.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("init ai client: %v", err)
	}

	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	var (
		store    session.Store
		previews session.PreviewStore
	)
	switch cfg.Session.Store {
	case "redis":
		rdb, err := redis.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("create redis client: %v", err)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, ttl)
		previews = session.NewRedisPreviews(rdb, ttl)
	default:
		memPreviews := session.NewMemoryPreviews()
		memStore := session.NewMemoryStore(ttl, session.ReleaseOnExpire(memPreviews))
		memStore.StartJanitor(ctx, session.DefaultCleanupInterval)
		store, previews = memStore, memPreviews
	}
	log.Printf("session store: %s", cfg.Session.Store)

	timeout := time.Duration(cfg.BasicConfig.RequestTimeoutSeconds) * time.Second
	assistantService := assistant.NewService(store, previews, ai.NewBuilder(cfg.Models), ai.NewService(client.Models, timeout))
	handlers := api.NewHandler(assistantService, cfg)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":8090"
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
}
