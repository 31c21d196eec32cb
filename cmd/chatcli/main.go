package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"partselect-chat/internal/config"
	"partselect-chat/internal/conversation"
	"partselect-chat/internal/logging"
	"partselect-chat/internal/telemetry"
	"partselect-chat/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

// main is the entry point for the terminal chat window.
func main() {
	style := flag.String("style", "", "glamour style (dark, light, notty); empty detects the terminal")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadWidget()
	// Logs must not draw over the UI.
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = logging.DefaultFile("chatcli")
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: logFile, FileOnly: true})

	shutdownTelemetry, err := telemetry.Init(ctx, "chatcli", cfg.TelemetryDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not start telemetry: %v\n", err)
		os.Exit(1)
	}
	defer shutdownTelemetry()

	var client conversation.MessageClient
	if cfg.AssistantURL == "stub" {
		client = conversation.NewStubMessageClient()
	} else {
		client = conversation.NewHTTPMessageClient(cfg.AssistantURL, logger)
	}

	conv := conversation.NewService(client)
	defer conv.Close()

	model, err := tui.New(ctx, conv, *style, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not start chat: %v\n", err)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "chat exited: %v\n", err)
		os.Exit(1)
	}
}
