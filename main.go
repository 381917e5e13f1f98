package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"cratedig/internal/config"
	"cratedig/internal/eventbus"
	"cratedig/internal/library"
	"cratedig/internal/ui"
)

func main() {
	// Parse command line arguments
	var targetDir string
	flag.StringVar(&targetDir, "dir", "", "Sample library directory to open")
	flag.StringVar(&targetDir, "d", "", "Sample library directory to open (shorthand)")
	flag.Parse()

	// If no directory specified, check for remaining args
	if targetDir == "" && flag.NArg() > 0 {
		targetDir = flag.Arg(0)
	}

	// If still no directory, use current directory
	if targetDir == "" {
		var err error
		targetDir, err = os.Getwd()
		if err != nil {
			fmt.Printf("Error getting current directory: %v\n", err)
			os.Exit(1)
		}
	}

	// Resolve to absolute path
	absDir, err := filepath.Abs(targetDir)
	if err != nil {
		fmt.Printf("Error resolving path: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	logFile, err := os.OpenFile("cratedig.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create event bus
	bus := eventbus.New()

	// Load configuration from the library directory with event bus support
	configSvc := config.NewConfigServiceWithBus(bus)
	cfg := loadOrCreateConfig(configSvc, absDir)

	// Initialize the library backend
	librarySvc := library.NewService(bus, cfg.Extensions, cfg.IgnoreDirs, cfg.UISettings.WatchLibrary)
	defer librarySvc.Close()

	// Create UI model
	log.Printf("Creating UI model...")
	uiModel := ui.NewModel(cfg, librarySvc, bus)

	// Create Bubble Tea program
	p := tea.NewProgram(uiModel, tea.WithAltScreen())
	uiModel.SetHelpOps(ui.NewHelpOps(p))

	// Forward backend events to the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forwardEvent := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Println("Event channel full, dropping event")
		}
	}
	for _, eventType := range []eventbus.EventType{
		eventbus.EventLibraryOpened,
		eventbus.EventLibraryClosed,
		eventbus.EventIndexUpdated,
		eventbus.EventStatusUpdated,
		eventbus.EventError,
	} {
		bus.Subscribe(eventType, forwardEvent)
	}

	go func() {
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	// Open the library; this kicks off the initial scan in the background
	if err := librarySvc.Open(ctx, absDir); err != nil {
		fmt.Printf("Error opening library: %v\n", err)
		os.Exit(1)
	}

	// Run the UI
	log.Printf("Starting UI...")
	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	log.Printf("UI exited normally")

	// Cleanup
	close(eventChan)
	cancel()
}

// loadOrCreateConfig loads config from the library directory or creates a new one
func loadOrCreateConfig(configSvc config.ConfigService, targetDir string) *config.Config {
	configPath := filepath.Join(targetDir, ".cratedig.toml")

	if _, err := os.Stat(configPath); err == nil {
		if cfg, err := configSvc.LoadFromPath(configPath); err == nil {
			log.Printf("Loaded config from %s", configPath)
			return cfg
		}
	}

	// No config or failed to load, start from defaults
	log.Printf("Creating new config for %s", targetDir)
	cfg := config.DefaultConfig()
	cfg.LibraryDir = targetDir

	if err := configSvc.SaveToPath(cfg, configPath); err != nil {
		log.Printf("Failed to save config: %v", err)
	}

	return cfg
}
