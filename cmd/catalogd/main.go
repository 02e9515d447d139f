package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openshelf/catalogd/config"
	"github.com/openshelf/catalogd/internal/app"
	"github.com/openshelf/catalogd/internal/webserver"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("c", "catalogd.yml", "config file path")
	initDb     = flag.Bool("initdb", false, "drop and recreate the database schema, then exit")
	showVer    = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("catalogd", version)
		return
	}

	cfg := config.LoadConfig(*configFile)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "catalogd: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "catalogd: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.S().Info("database schema recreated")
		return
	}

	server := webserver.New(cfg, application.DB(), application.Media(), application.IDGen())
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("web server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.S().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zap.L().Error("shutdown error", zap.Error(err))
	}
}
