// Package main is the entry point for the taskdeck edge gateway.
package main

import (
	"net/http"
	"net/url"
	"os"

	"github.com/joho/godotenv"

	"taskdeck/internal/gateway"
	"taskdeck/internal/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Options{
		Level:  os.Getenv("TASKDECK_LOG_LEVEL"),
		Format: os.Getenv("TASKDECK_LOG_FORMAT"),
	})

	backendURL := os.Getenv("TASKDECK_API_URL")
	if backendURL == "" {
		backendURL = "http://localhost:8000"
	}
	backend, err := url.Parse(backendURL)
	if err != nil {
		log.Error("invalid backend url", "url", backendURL, "error", err)
		os.Exit(1)
	}

	var shell http.Handler
	if dir := os.Getenv("TASKDECK_SHELL_DIR"); dir != "" {
		shell = http.FileServer(http.Dir(dir))
	}

	addr := os.Getenv("TASKDECK_GATEWAY_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	log.Info("gateway listening", "addr", addr, "backend", backend.String())
	if err := http.ListenAndServe(addr, gateway.New(backend, shell, log)); err != nil {
		log.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
}
