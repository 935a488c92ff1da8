package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aynu/chartcore/internal/chart"
	"github.com/aynu/chartcore/internal/infrastructure/feed"
	"github.com/aynu/chartcore/internal/infrastructure/logger"
	"github.com/aynu/chartcore/internal/infrastructure/storage"
	"github.com/aynu/chartcore/internal/market"
	"github.com/aynu/chartcore/internal/web"
)

type Config struct {
	Feed struct {
		RESTEndpoint string `yaml:"rest_endpoint"`
		WSEndpoint   string `yaml:"ws_endpoint"`
		PollMs       int    `yaml:"poll_ms"`
	} `yaml:"feed"`
	Chart struct {
		Pair      string `yaml:"pair"`
		Timeframe string `yaml:"timeframe"`
	} `yaml:"chart"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	// 1. Load Config
	cfg, err := loadConfig("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = "chart.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init Feed
	feedClient := feed.NewClient(cfg.Feed.RESTEndpoint, cfg.Feed.WSEndpoint, log)

	// 5. Init Market Engine
	pair := cfg.Chart.Pair
	if pair == "" {
		pair = "AMR/NVR"
	}
	timeframe := cfg.Chart.Timeframe
	if timeframe == "" {
		timeframe = "15m"
	}
	bus := market.NewBus(market.NotifyThrottle)
	marketStore := market.NewStore(pair, timeframe, bus)
	pollEvery := time.Duration(cfg.Feed.PollMs) * time.Millisecond
	engine := market.NewEngine(marketStore, feedClient, pollEvery, log)

	// 6. Init Viewport Controller
	viewports := chart.NewViewportController(store, log)
	viewports.Load(context.Background(), pair)

	// 7. Wait for Shutdown (moved up so goroutines can use 'stop')
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	engineCtx, cancelEngine := context.WithCancel(context.Background())
	go engine.Start(engineCtx)

	// 8. Init Web Server
	port := cfg.Server.Port
	if port == 0 {
		port = 8080 // Default
	}
	server := web.NewServer(port, engine, viewports, store, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 9. Wait for Shutdown
	<-stop

	log.Info("Shutting down...")
	cancelEngine()
	if err := viewports.Flush(context.Background()); err != nil {
		log.Error("Failed to persist viewport", zap.Error(err))
	}
	server.Shutdown(context.Background())
}
