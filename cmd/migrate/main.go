package main

import (
	"fmt"
	"log"
	"os"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/corplearn/corplearn-backend/internal/config"
	"github.com/corplearn/corplearn-backend/internal/migration"
	pkglogger "github.com/corplearn/corplearn-backend/pkg/logger"
)

// Standalone migration runner for deployments where the API server must not
// own schema changes.
func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)

	cfg, err := config.Load(fmt.Sprintf("configs/config.%s.yaml", env))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dsnCfg := mysqldriver.NewConfig()
	dsnCfg.User = cfg.Database.User
	dsnCfg.Passwd = cfg.Database.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	dsnCfg.DBName = cfg.Database.Name
	dsnCfg.ParseTime = true

	db, err := gorm.Open(mysql.Open(dsnCfg.FormatDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	pkglogger.Get().Info().Msg("migration finished")
}
