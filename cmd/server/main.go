package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizdir/internal/flags"
	"bizdir/internal/gateway"
	"bizdir/internal/platform/config"
	"bizdir/internal/platform/httpserver"
	"bizdir/internal/platform/logger"
	"bizdir/internal/platform/metrics"
	"bizdir/internal/platform/redis"
	"bizdir/internal/session"
	httptransport "bizdir/internal/transport/http"
	"bizdir/internal/wizard"
)

// main wires dependencies and owns the server lifecycle. Flow logic lives in
// internal/wizard; remote collaborators live behind internal/gateway.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	flagSet, err := flags.Load(cfg.FlagsFile)
	if err != nil {
		log.Error("load feature flags", "file", cfg.FlagsFile, "error", err.Error())
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err.Error())
		os.Exit(1)
	}

	var sessions session.Store
	var health httptransport.HealthChecker
	if redisClient != nil {
		sessions = session.NewRedis(redisClient.Client, cfg.SessionTTL)
		health = redisClient
		defer redisClient.Close()
	} else {
		// No session backend configured: hold sessions in process memory.
		// Acceptable for local runs only; a restart drops every wizard.
		log.Warn("redis not configured, using in-memory session store")
		sessions = session.NewMemory()
	}

	identity := gateway.NewIdentityClient(cfg.IdentityURL, log, m)
	registry := gateway.NewRegistryClient(cfg.RegistryURL, log, m)
	directory := gateway.NewDirectoryClient(cfg.DirectoryURL, log, m)
	notify := gateway.NewNotifyClient(cfg.NotifyURL, cfg.AdminEmail, log, m)

	engine := wizard.NewEngine(identity, registry, directory, notify, sessions, flagSet, log, m)

	renderer, err := httptransport.NewRenderer(log)
	if err != nil {
		log.Error("parse templates", "error", err.Error())
		os.Exit(1)
	}

	handler := httptransport.NewHandler(engine, identity, registry, sessions, health, renderer, log)
	router := httptransport.NewRouter(handler, log, m)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting bizdir", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
