package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"market-board/internal/core"
	"market-board/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	envPath := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	logger := logging.New(false)
	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		logger.Warn("dotenv not loaded", logging.Field{Key: "path", Val: *envPath}, logging.Field{Key: "err", Val: err})
	}
	gin.SetMode(gin.ReleaseMode)

	mgr := core.NewManager(*configPath, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	if err := mgr.Start(ctx); err != nil {
		logger.Error("startup failed", logging.Field{Key: "err", Val: err})
		os.Exit(1)
	}
}
