package main

import (
	"context"
	"log"
	"os"
	"time"

	"edubot/internal/api"
	"edubot/internal/auth"
	"edubot/internal/config"
	"edubot/internal/logger"
	"edubot/internal/redis"
	"edubot/internal/service/account"
	"edubot/internal/service/ai"
	"edubot/internal/service/assistant"
	"edubot/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("EDUBOT_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	appLogger := logger.New("edubot", cfg.BasicConfig.LogLevel)

	dbType := os.Getenv("EDUBOT_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	appLogger.Info("opening database", "driver", dbType)
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Create the users table if it does not exist yet
	if err := storage.Migrate(db, dbType); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	var sessions auth.SessionStore = auth.NewMemoryStore()
	if cfg.Redis.Enabled {
		rdb, err := redis.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("create redis client: %v", err)
		}
		defer rdb.Close()
		sessions = auth.NewRedisStore(rdb)
		appLogger.Info("sessions stored in redis", "host", cfg.Redis.Host, "db", cfg.Redis.DB)
	}

	aiService, err := ai.NewService(context.Background(), cfg.Provider, cfg.APIKey)
	if err != nil {
		log.Fatalf("init model client: %v", err)
	}

	accounts := account.NewStore(db)
	sessionTTL := time.Duration(cfg.BasicConfig.SessionTTLMinutes) * time.Minute
	authService := auth.NewService(accounts, sessions, []byte(cfg.SecretKey), sessionTTL, appLogger)

	classifier := assistant.NewClassifier(assistant.DefaultPrompts(), aiService, appLogger)
	responder := assistant.NewResponder(aiService, appLogger)
	handlers := api.NewHandler(accounts, authService, classifier, responder, appLogger,
		api.WithStaticDir(cfg.BasicConfig.StaticDir),
		api.WithModelTimeout(time.Duration(cfg.BasicConfig.ModelTimeoutSeconds)*time.Second),
	)

	router := gin.New()
	router.Use(gin.Recovery())
	if err := handlers.RegisterRoutes(router); err != nil {
		log.Fatalf("register routes: %v", err)
	}

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":5000"
	}
	appLogger.Info("server listening", "addr", addr, "provider", cfg.Provider.Name, "model", cfg.Provider.Model)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
