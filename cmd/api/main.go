package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"menubasket/internal/cart"
	"menubasket/internal/config"
	"menubasket/internal/db"
	"menubasket/internal/httpserver"
	basketrepo "menubasket/internal/repository/basket"
	branchrepo "menubasket/internal/repository/branch"
	menurepo "menubasket/internal/repository/menu"
	basketsvc "menubasket/internal/service/basket"
	menusvc "menubasket/internal/service/menu"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	branchRepo := branchrepo.NewPostgres(dbpool)
	menuRepo := menurepo.NewPostgres(dbpool, logger)
	menuService := menusvc.New(menuRepo)
	basketRepo := basketrepo.NewPostgres(dbpool, logger)
	basketService := basketsvc.New(basketRepo, menuRepo)

	opts := cart.Options{
		Timeout:          cfg.GatewayTimeout,
		DecrementInPlace: cfg.DecrementInPlace,
		Logger:           logger,
	}
	factory := func(branchKey, sessionID string) *cart.Reconciler {
		if cfg.BasketAPIBaseURL != "" {
			gw := cart.NewHTTPGateway(cfg.BasketAPIBaseURL, branchKey, sessionID, cfg.GatewayTimeout)
			return cart.New(gw, opts)
		}
		gw := httpserver.NewServiceGateway(branchRepo, basketService, branchKey, sessionID)
		return cart.New(gw, opts)
	}
	reconcilers := cart.NewRegistry(cfg.ReconcilerTTL, factory)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		BranchRepo:  branchRepo,
		MenuSvc:     menuService,
		BasketSvc:   basketService,
		Reconcilers: reconcilers,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
