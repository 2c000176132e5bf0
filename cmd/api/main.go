package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/corplearn/corplearn-backend/internal/config"
	"github.com/corplearn/corplearn-backend/internal/handler"
	"github.com/corplearn/corplearn-backend/internal/middleware"
	"github.com/corplearn/corplearn-backend/internal/migration"
	"github.com/corplearn/corplearn-backend/internal/repository"
	"github.com/corplearn/corplearn-backend/internal/routes"
	"github.com/corplearn/corplearn-backend/internal/service"
	pkgcache "github.com/corplearn/corplearn-backend/pkg/cache"
	"github.com/corplearn/corplearn-backend/pkg/jwt"
	pkglogger "github.com/corplearn/corplearn-backend/pkg/logger"
	pkgredis "github.com/corplearn/corplearn-backend/pkg/redis"
)

func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	pkglogger.Get().Info().Str("env", env).Strs("dotenv", dotenvFiles).Msg("starting")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Get().Warn().Err(err).Msg("redis unavailable, continuing without cache")
		redisClient = nil
	}
	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationSvc := service.NewNotificationService(notificationRepo, cacheService)
	reviewSvc := service.NewReviewService(reviewRepo, notificationSvc, cacheService, reviewPolicy(cfg))

	reviewHandler := handler.NewReviewHandler(reviewSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	routes.Setup(router, reviewHandler, notificationHandler, jwtManager)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Get().Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	dsnCfg := mysqldriver.NewConfig()
	dsnCfg.User = cfg.Database.User
	dsnCfg.Passwd = cfg.Database.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	dsnCfg.DBName = cfg.Database.Name
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.Local
	dsnCfg.Params = map[string]string{"charset": "utf8mb4"}

	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	return gorm.Open(mysql.Open(dsnCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
}

func reviewPolicy(cfg *config.Config) service.Policy {
	policy := service.DefaultPolicy()
	if cfg.Review.PendingPolicy == string(service.PendingReject) {
		policy.Pending = service.PendingReject
	}
	if cfg.Review.ArchiveOnFirstReject != nil {
		policy.ArchiveOnFirstReject = *cfg.Review.ArchiveOnFirstReject
	}
	return policy
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
