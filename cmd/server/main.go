package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmarkhas/orderflow/internal/config"
	"github.com/dmarkhas/orderflow/internal/es"
	"github.com/dmarkhas/orderflow/internal/handlers"
	"github.com/dmarkhas/orderflow/internal/logging"
	authmw "github.com/dmarkhas/orderflow/internal/middleware/auth"
	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/mykafka"
	"github.com/dmarkhas/orderflow/internal/repo"
	"github.com/dmarkhas/orderflow/internal/service"
	"github.com/dmarkhas/orderflow/internal/service/search"
	httpserver "github.com/dmarkhas/orderflow/internal/transport/http"
	"github.com/dmarkhas/orderflow/pkg/db"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	ctx := logging.IntoContext(context.Background(), logger)

	database, err := db.Open(ctx, configuration.DSN())
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := database.AutoMigrate(
		&models.Role{}, &models.Permission{}, &models.RolePermission{},
		&models.User{}, &models.AuthToken{}, &models.Order{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	r := repo.New(database)
	authService := &service.AuthService{
		Users:      r,
		Tokens:     r,
		Secret:     []byte(configuration.JWT_SECRET),
		AccessTTL:  time.Duration(configuration.ACCESS_TTL_MIN) * time.Minute,
		RefreshTTL: time.Duration(configuration.REFRESH_TTL_D) * 24 * time.Hour,
	}
	authzService := &service.AuthzService{Repo: r}
	searchService := &search.Service{ES: esClient, Index: "orders"}
	mw := &authmw.Middleware{Auth: authService, Authz: authzService}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		AuthHandler:       &handlers.AuthHandler{Auth: authService, Authz: authzService, Producer: prod},
		UserHandler:       &handlers.UserHandler{Users: &service.UserService{Repo: r}, Authz: authzService, Producer: prod},
		OrderHandler:      &handlers.OrderHandler{Orders: &service.OrderService{Repo: r}, Authz: authzService, Producer: prod, Search: searchService},
		RoleHandler:       &handlers.RoleHandler{Roles: &service.RoleService{Repo: r}},
		PermissionHandler: &handlers.PermissionHandler{Permissions: &service.PermissionService{Repo: r}},
		SearchHandler:     &handlers.SearchHandler{Search: searchService},
		MW:                mw,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
