package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"padelchat/internal/chat"
	"padelchat/internal/client"
	"padelchat/internal/config"
	"padelchat/internal/handler"
	"padelchat/internal/logger"
	"padelchat/internal/repository"
	"padelchat/internal/service"
	"padelchat/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	defer appLog.Sync()

	appLog.Info("starting padelchat", map[string]interface{}{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	})

	gin.SetMode(cfg.Server.GinMode)
	ctx := context.Background()

	repo, err := newRepository(ctx, cfg, appLog)
	if err != nil {
		log.Fatalf("Failed to initialise repository: %v", err)
	}
	defer repo.Close()

	padelService := service.NewPadelService(repo, appLog)

	var backend chat.Backend = padelService
	if cfg.Backend.BaseURL != "" {
		backend = client.NewToolsClient(cfg.Backend, appLog)
		appLog.Info("chat uses remote backend", map[string]interface{}{"url": cfg.Backend.BaseURL})
	}

	store, closeStore, err := newSessionStore(ctx, cfg, appLog)
	if err != nil {
		log.Fatalf("Failed to initialise session store: %v", err)
	}
	defer closeStore()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid chat time zone: %v", err)
	}
	conv := chat.NewConversation(backend, store, appLog,
		chat.WithExtractor(chat.NewExtractor(chat.WithLocation(loc))))

	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestLogger(appLog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "padelchat",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewToolHandler(padelService, appLog, Version).Register(router.Group("/mcp"))
	handler.NewAPIHandler(padelService, appLog).Register(router.Group("/api"))
	handler.NewChatHandler(conv, cfg.Chat.DefaultUserName, appLog).Register(router.Group("/api/v1"))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("listening", map[string]interface{}{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("graceful shutdown failed", nil)
	}
	appLog.Info("server stopped", nil)
}

func newRepository(ctx context.Context, cfg *config.Config, appLog logger.Logger) (repository.Repository, error) {
	if !cfg.UsePostgres() {
		appLog.Info("using in-memory repository", nil)
		return repository.NewMemoryRepository(repository.DefaultCourts()), nil
	}

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx, repository.DefaultCourts()); err != nil {
		repo.Close()
		return nil, err
	}
	appLog.Info("connected to PostgreSQL", map[string]interface{}{"database": cfg.PostgreSQL.Database})
	return repo, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, appLog logger.Logger) (session.Store, func(), error) {
	if cfg.Redis.Address == "" {
		appLog.Info("using in-memory session store", map[string]interface{}{"ttl": cfg.Chat.SessionTTL.String()})
		return session.NewMemoryStore(cfg.Chat.SessionTTL), func() {}, nil
	}

	store := session.NewRedisStore(session.NewRedisClient(cfg.Redis), cfg.Chat.SessionTTL)
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	appLog.Info("connected to Redis", map[string]interface{}{"addr": cfg.Redis.Address})
	return store, func() { _ = store.Close() }, nil
}
