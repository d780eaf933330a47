package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avoronkov/auth_service/internal/config"
	"github.com/avoronkov/auth_service/internal/events"
	"github.com/avoronkov/auth_service/internal/httpserver"
	"github.com/avoronkov/auth_service/internal/middleware"
	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/internal/repo"
	"github.com/avoronkov/auth_service/internal/revocation"
	"github.com/avoronkov/auth_service/internal/service"
	"github.com/avoronkov/auth_service/pkg/db"
	"github.com/avoronkov/auth_service/pkg/logging"
	loggingmw "github.com/avoronkov/auth_service/pkg/middleware/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	cfg.Validate()

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&models.User{}, &models.Role{},
		&models.RefreshToken{}, &models.LoginHistory{},
	); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(initCtx).Err(); err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers)
	}
	defer publisher.Close()

	gormRepo := &repo.GormRepo{DB: gormDB}
	if err := service.BootstrapAdmin(logging.IntoContext(initCtx, logger), gormRepo, cfg.AdminPassword); err != nil {
		log.Fatalf("admin bootstrap error: %v", err)
	}

	cache := revocation.NewCache(rdb, cfg.AccessTTL)

	tokenSvc := &service.TokenService{
		Repo:          gormRepo,
		Revocation:    cache,
		Events:        publisher,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	userSvc := &service.UserService{Repo: gormRepo, Events: publisher}
	roleSvc := &service.RoleService{Repo: gormRepo}

	guard := &middleware.Guard{
		Repo:          gormRepo,
		Revocation:    cache,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Tokens: tokenSvc},
		UserHandler: &httpserver.UserHTTP{Users: userSvc},
		RoleHandler: &httpserver.RoleHTTP{Roles: roleSvc},
		Guard:       guard,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
	if err := rdb.Close(); err != nil {
		logger.Error("redis close", "error", err)
	}
}
