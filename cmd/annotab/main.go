package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/abbrevlab/annotab/internal/adapter"
	"github.com/abbrevlab/annotab/internal/service"
	"github.com/abbrevlab/annotab/internal/storage"
	"github.com/abbrevlab/annotab/internal/store"
	"github.com/abbrevlab/annotab/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	var clearCache bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&clearCache, "clear-drafts", false, "drop all locally cached drafts and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("annotab %s\n", Version)
		return
	}

	if clearCache {
		if err := adapter.ClearCache(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Draft cache cleared.")
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting annotab", "version", Version)

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg)
	}

	// Create storage client
	client := storage.NewClient(cfg.Storage.URL, cfg.Storage.Bucket, cfg.Storage.ServiceKey, logger)

	// Create draft store, namespaced by endpoint so buckets never mix
	drafts, err := store.NewDraftStore(adapter.GetCachePath(), cfg.Storage.URL+"/"+cfg.Storage.Bucket)
	if err != nil {
		return fmt.Errorf("failed to open draft store: %w", err)
	}
	defer drafts.Close()

	// Create service
	datasetSvc := service.NewDatasetService(client, drafts, logger)

	// Create TUI model
	model := tui.NewModel(datasetSvc, cfg.UI.ExportDir, cfg.UI.SentenceLen)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *adapter.Config) error {
	fmt.Println()
	fmt.Println("Welcome to annotab!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	url, err := promptLine(reader, "Storage API URL (e.g. https://xyz.supabase.co/storage/v1): ")
	if err != nil {
		return err
	}
	cfg.Storage.URL = strings.TrimRight(url, "/")

	bucket, err := promptLine(reader, "Bucket name: ")
	if err != nil {
		return err
	}
	cfg.Storage.Bucket = bucket

	// Service key is a secret, read it without echo
	fmt.Print("Service key: ")
	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read service key: %w", err)
	}
	key := strings.TrimSpace(string(keyBytes))
	if key == "" {
		return fmt.Errorf("service key cannot be empty")
	}
	cfg.Storage.ServiceKey = key

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run annotab again to start the application.")

	return nil
}

// promptLine reads one non-empty line from stdin
func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	for {
		fmt.Print(prompt)
		input, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input != "" {
			return input, nil
		}
		fmt.Println("Value cannot be empty. Please try again.")
	}
}
