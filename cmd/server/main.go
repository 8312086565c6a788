package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/GlucoRisk/internal/model"
	"github.com/Skufu/GlucoRisk/internal/risk"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Port        string
	GinMode     string
	DatabaseURL string
	EnableDB    bool
	LogLevel    string
	LogFormat   string
	Model       model.Options
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)
	setupLogging(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	var (
		db      HealthChecker
		querier model.RowQuerier
	)
	if cfg.EnableDB {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logrus.Fatalf("database connection failed: %v", err)
		}
		defer pool.Close()
		db, querier = pool, pool
	}

	predictor, err := model.Load(ctx, cfg.Model, querier)
	if err != nil {
		logrus.Fatalf("model load failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"source": cfg.Model.Source,
		"name":   cfg.Model.Name,
	}).Info("model loaded")

	router := setupRouter(db, predictor)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	logrus.Infof("server listening on :%s", cfg.Port)
	waitForShutdown(server)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	source, err := model.ParseSource(getEnv("MODEL_SOURCE", string(model.SourceFile)))
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(getEnv("MODEL_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", gin.ReleaseMode),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Model: model.Options{
			Source:  source,
			Path:    getEnv("MODEL_PATH", "model/diabetes.yaml"),
			Name:    getEnv("MODEL_NAME", "diabetes"),
			URL:     os.Getenv("MODEL_URL"),
			Timeout: timeout,
			Columns: len(risk.Fields),
		},
	}

	if source == model.SourcePostgres {
		cfg.EnableDB = true
	}
	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true or MODEL_SOURCE=postgres")
	}
	if source == model.SourceRemote && cfg.Model.URL == "" {
		return nil, fmt.Errorf("MODEL_URL is required when MODEL_SOURCE=remote")
	}

	return cfg, nil
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("graceful shutdown failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
