package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cloudchat/backend/internal/api/handler"
	"cloudchat/backend/internal/chathub"
	"cloudchat/backend/internal/config"
	"cloudchat/backend/internal/models"
	"cloudchat/backend/internal/storage"
	"cloudchat/backend/internal/telegram"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	dsn := config.Env("POSTGRES_DSN",
		"host=localhost user=user password=password dbname=cloudchat port=5432 sslmode=disable")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Env("REDIS_ADDR", "localhost:6379"),
		Password: config.Env("REDIS_PASSWORD", ""),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.ChatRoom{},
		&models.ChatHistory{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting CloudChat Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	// 1. Dependencies
	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	// 2. Chat hub
	hub := chathub.NewManagerService(s)
	go hub.Run()

	// 3. Optional Telegram transport
	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		botService, err := telegram.NewBotService(botToken, hub,
			config.Env("LOCALIZATION_PATH", "internal/localization"))
		if err != nil {
			log.Fatalf("Failed to start Telegram bot: %v", err)
		}
		go botService.Run()
	}

	// 4. Gin routing
	r := gin.Default()
	h := handler.NewHandler(hub)

	r.GET("/anonid", h.GetAnonID)  // anonymous id + JWT
	r.GET("/ws", h.ServeWebSocket) // WebSocket upgrade
	r.GET("/stats", h.GetStats)    // online / paired counts

	server := &http.Server{
		Addr:           ":" + config.Env("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
