package main

import (
	"context"
	"github.com/go-redis/redis/v9"
	"io"
	"net/http"
	"os"
	"pricewatch/internal/client"
	"pricewatch/internal/configuration"
	"pricewatch/internal/database"
	"pricewatch/internal/logger"
	"pricewatch/internal/server"
	"time"
)

func main() {
	runApp()
	time.Sleep(10 * time.Second)
	os.Exit(1)
}

func runApp() error {
	appContext := context.Background()
	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelError, logOutput)

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	config, err := configuration.GetConfig("config.toml")
	if err != nil {
		appLogger.Error("Error getting configuration from config.toml:", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile("pricewatch.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	appLogger.Info("Connecting to DB at", config.DatabaseURI)
	dbConn, err := database.ConnectDB(appContext, config.DatabaseURI)
	if err != nil {
		appLogger.Error("Error connecting to DB:", err)
		return err
	}
	defer func() {
		if err := dbConn.Disconnect(appContext); err != nil {
			appLogger.Error("Error disconnecting from DB:", err)
		}
	}()

	var redisClient *redis.Client
	if config.RedisURI != "" {
		redisOpts, err := redis.ParseURL(config.RedisURI)
		if err != nil {
			appLogger.Error("Error parsing redis_uri:", err)
			return err
		}
		redisClient = redis.NewClient(redisOpts)
		pingCtx, cancel := context.WithTimeout(appContext, 5*time.Second)
		if err = redisClient.Ping(pingCtx).Err(); err != nil {
			appLogger.Error("Error pinging Redis, price cache disabled:", err)
			redisClient = nil
		}
		cancel()
	}

	appClient := client.Client{
		Client:      &http.Client{Timeout: 15 * time.Second},
		Redis:       redisClient,
		PriceAPIURL: config.PriceAPIURL,
		Logger:      appLogger,
	}
	srv := server.Server{
		DB:            database.Database{Database: dbConn.Database(database.Name)},
		PriceSource:   appClient,
		Notifier:      appClient,
		Logger:        appLogger,
		AuthSecretKey: config.AuthSecretKey,
	}

	appLogger.Info("Starting price checker with interval:", config.CheckInterval)
	go srv.CheckPricesInInterval(appContext, time.NewTicker(config.CheckInterval).C)

	httpSrv := &http.Server{
		Handler:      srv.Router(),
		Addr:         config.ServerAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	appLogger.Info("Serving on", httpSrv.Addr)
	return httpSrv.ListenAndServe()
}
