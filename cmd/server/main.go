package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerwatch/log/v3"

	docs "github.com/sentioxyz/aptos-core/docs"
	"github.com/sentioxyz/aptos-core/internal/app"
	cfgpkg "github.com/sentioxyz/aptos-core/internal/config"
	"github.com/sentioxyz/aptos-core/internal/mirror"
	"github.com/sentioxyz/aptos-core/internal/server"
)

// @title Move Call Trace API
// @version 1.0
// @description Source attributed call traces of committed Aptos transactions.
// @BasePath /
func main() {
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Title = "Move Call Trace API"
	docs.SwaggerInfo.Description = "Source attributed call traces of committed Aptos transactions."
	docs.SwaggerInfo.BasePath = "/"

	cfg, err := cfgpkg.Load()
	if err != nil {
		log.Crit("Failed to load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.Log.Setup(); err != nil {
		log.Crit("Failed to set up logging", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Crit("Invalid config", "err", err)
		os.Exit(1)
	}
	if cfg.Server.Disable {
		log.Info("Trace server disabled")
		return
	}

	a, err := app.New(cfg, log.Root())
	if err != nil {
		log.Crit("Failed to build tracers", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	opts := server.RouterOptions{CacheSize: cfg.Trace.CacheSize}
	if a.Repo != nil {
		opts.Status = mirror.NewReader(a.Repo)
		opts.StoreChains = cfg.Ledger.StoreChains
	}
	r, err := server.NewRouter(a.Service, opts)
	if err != nil {
		log.Crit("Failed to build router", "err", err)
		os.Exit(1)
	}
	srv := server.NewHTTP(cfg.Server.Addr(), r)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		log.Info("Trace server listening", "addr", srv.Addr(), "chains", a.Service.Chains())
		if err := srv.Start(); err != nil {
			log.Crit("Trace server failed", "err", err)
			stop()
		}
	}()
	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdown)
}
