package controllers

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"Foresight/cache"
	"Foresight/chain"
	"Foresight/chatstream"
	docs "Foresight/docs"
	"Foresight/feed"
	"Foresight/followsync"
	"Foresight/middlewares"
	"Foresight/models"
	"Foresight/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	DB      *gorm.DB
	Router  *gin.Engine
	Hub     *feed.Hub
	Relay   *chatstream.Relay
	Follows *followsync.DBStore
	Chain   *chain.Gateway
	Monitor *feed.Monitor
}

var errList = make(map[string]string)

// ===============================
// SERVER INITIALIZATION
// ===============================
func (server *Server) Initialize(DbUser, DbPassword, DbPort, DbHost, DbName string) {
	utils.InitLogger()

	var dsn string
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		dsn = os.Getenv("DATABASE_URL")
		if dsn != "" && !strings.Contains(dsn, "sslmode=") {
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=require"
			} else {
				dsn += "?sslmode=require"
			}
		}
	} else {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			DbHost, DbUser, DbPassword, DbName, DbPort,
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		utils.ErrorLogger.Fatalf("Cannot connect to Postgres: %v", err)
	}
	server.DB = db

	if err := server.DB.AutoMigrate(
		&models.Prediction{},
		&models.EventFollow{},
		&models.ChatMessage{},
		&models.Stake{},
		&feed.RecordChange{},
	); err != nil {
		utils.ErrorLogger.Fatalf("Error migrating database: %v", err)
	}
	if err := ensureFollowConstraints(server.DB); err != nil {
		utils.ErrorLogger.Printf("warning: follow constraints not ensured: %v", err)
	}
	if err := ensurePredictionStatusConstraint(server.DB); err != nil {
		utils.ErrorLogger.Printf("warning: prediction status constraint not ensured: %v", err)
	}

	// Redis init (safe failure): caching and recent-view lists degrade, the
	// API itself keeps working.
	if err := cache.InitFromEnv(); err != nil {
		utils.ErrorLogger.Printf("warning: could not connect to redis: %v", err)
	}

	server.wire()

	if rpcURL := strings.TrimSpace(os.Getenv("CHAIN_RPC_URL")); rpcURL != "" {
		gateway, err := chain.Dial(rpcURL)
		if err != nil {
			utils.ErrorLogger.Printf("warning: chain gateway unavailable: %v", err)
		} else {
			server.Chain = gateway
		}
	}

	server.Monitor = feed.NewMonitor(server.DB, server.Hub)
	server.Monitor.Start()

	middlewares.CleanupVisitors()

	server.Router = gin.Default()
	server.Router.Use(middlewares.CORSMiddleware())
	server.Router.Use(middlewares.RateLimitMiddleware())
	server.initializeRoutes()

	if os.Getenv("APP_ENV") != "production" {
		if host := strings.TrimSpace(os.Getenv("SWAGGER_HOST")); host != "" {
			docs.SwaggerInfo.Host = host
		}
		server.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

// wire builds the in-process pipeline pieces that do not depend on external
// services, shared by Initialize and the test harness.
func (server *Server) wire() {
	server.Hub = feed.NewHub()
	server.Relay = &chatstream.Relay{DB: server.DB, Hub: server.Hub}
	server.Follows = &followsync.DBStore{DB: server.DB, Hub: server.Hub}
}

func (server *Server) Run(addr string) {
	utils.ErrorLogger.Fatal(http.ListenAndServe(addr, server.Router))
}

func ensureFollowConstraints(db *gorm.DB) error {
	var count int64
	if err := db.Raw(
		"SELECT COUNT(1) FROM pg_constraint WHERE conname = ?",
		"event_follows_wallet_not_empty",
	).Scan(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Exec(
			"ALTER TABLE event_follows ADD CONSTRAINT event_follows_wallet_not_empty CHECK (btrim(user_id) <> '')",
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensurePredictionStatusConstraint(db *gorm.DB) error {
	var count int64
	if err := db.Raw(
		"SELECT COUNT(1) FROM pg_constraint WHERE conname = ?",
		"predictions_status_known",
	).Scan(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Exec(
			"ALTER TABLE predictions ADD CONSTRAINT predictions_status_known CHECK (status IN ('active', 'completed', 'cancelled'))",
		).Error; err != nil {
			return err
		}
	}
	return nil
}
