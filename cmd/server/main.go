// Package main is the entry point for the taskboard server.
//
// main stays minimal: read configuration from the environment, build the
// logger, hand both to internal/server, and block until shutdown. Everything
// else lives in imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/taskboard/internal/server"
)

// devJWTSecret keeps local development friction-free. The server refuses to
// rely on it silently — a warning is logged every time it's used.
const devJWTSecret = "mi-secreto-jwt-para-desarrollo"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === CONFIGURATION ===
	// Plain env vars with defaults. A config library would be overkill for
	// five settings.
	port := 3002
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET not set — using the built-in development secret; " +
			"set JWT_SECRET before deploying anywhere real")
		jwtSecret = devJWTSecret
	}

	driver := os.Getenv("STORAGE_DRIVER")
	if driver == "" {
		driver = server.DriverJSON
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "app.db")
	}

	// Both drivers keep their files under dataDir; create it up front so the
	// first write doesn't fail on a missing directory.
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Error("failed to create data directory",
			slog.String("dir", dataDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	if dir := filepath.Dir(dbPath); dir != dataDir {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === CREATE AND START THE SERVER ===
	cfg := server.Config{
		Port:          port,
		JWTSecret:     jwtSecret,
		StorageDriver: driver,
		DataDir:       dataDir,
		DBPath:        dbPath,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
