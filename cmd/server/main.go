package main

import (
	"context"
	"ctchen222/tictactoe-bot/internal/api/controller"
	"ctchen222/tictactoe-bot/internal/api/service"
	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/config"
	"ctchen222/tictactoe-bot/internal/db"
	"ctchen222/tictactoe-bot/internal/logger"
	"ctchen222/tictactoe-bot/internal/repository"
	"ctchen222/tictactoe-bot/internal/server"
	"ctchen222/tictactoe-bot/internal/telemetry"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(cfg.SlogLevel())
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	algorithm, err := bot.ParseAlgorithm(cfg.Bot.Algorithm)
	if err != nil {
		log.Fatalf("invalid bot algorithm: %v", err)
	}

	var gameRepo repository.GameRepository
	if cfg.Redis.ConnString != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.ConnString)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		gameRepo = repository.NewGameRepository(rdb)
	} else {
		slog.Info("No redis configured, keeping games in memory")
		gameRepo = repository.NewMemoryGameRepository()
	}

	calculator := bot.NewCalculator(algorithm, cfg.Bot.Depth)
	moveController := controller.NewMoveController(service.NewMoveService(algorithm, cfg.Bot.Depth))

	srv := server.NewServer(gameRepo, calculator, moveController, server.Options{
		Difficulty:  bot.Difficulty(cfg.Bot.Difficulty),
		ThinkDelay:  cfg.Bot.ThinkDelay,
		MoveTimeout: cfg.Bot.MoveTimeout,
	})

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTP.Addr, "bot.algorithm", algorithm, "bot.depth", cfg.Bot.Depth)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if err := srv.CloseRooms(shutdownCtx); err != nil {
		slog.Error("Rooms did not stop in time", "error", err)
	}

	slog.Info("Server exiting")
}
