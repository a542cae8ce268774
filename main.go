package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"aria2tm/internal/config"
	"aria2tm/internal/engine"
	"aria2tm/internal/logger"
	"aria2tm/internal/tui"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("Error getting home directory: %v\n", err)
		os.Exit(1)
	}

	stateDir := filepath.Join(homeDir, ".aria2tm")

	err = os.MkdirAll(stateDir, 0o755)
	if err != nil {
		fmt.Printf("Error creating state directory: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitLogging(cfg.Debug, filepath.Join(stateDir, "aria2tm.log"))
	if err != nil {
		fmt.Printf("Warning: Failed to initialize logging: %v\n", err)
	}
	defer logger.Close()

	eng := engine.New(cfg)

	// Graceful shutdown on Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Infof("Received interrupt signal, shutting down...")
		eng.Shutdown(10 * time.Second)
		logger.Close()
		os.Exit(0)
	}()

	// Run the TUI. This is a blocking call.
	err = tui.Run(eng)
	if err != nil {
		fmt.Printf("TUI Error: %v\n", err)
	}

	// Once the TUI exits (from 'q' or error), stop every running download.
	logger.Infof("TUI has exited. Shutting down engine...")
	eng.Shutdown(10 * time.Second)
	logger.Infof("Shutdown complete.")
}
