package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"postdeck/cmd/postdeck/dash"
	"postdeck/internal/api"
	"postdeck/internal/config"
	"postdeck/internal/logging"
	"postdeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	backendURL string
	session    string

	// Logger for non-interactive subcommands
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "postdeck",
	Short: "postdeck - Instagram content dashboard for the terminal",
	Long: `postdeck is a terminal dashboard for AI-generated Instagram content.

Browse and search your generated posts, run the content generation
workflow with video scripts and posting schedules, and push finished
posts toward Instagram via image download and clipboard handoff.

Run without arguments to start the interactive dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive dashboard has its own UI; zap is for the
		// scriptable subcommands.
		if cmd.Use == "postdeck" && cmd.CalledAs() == "postdeck" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&session, "session", "", "session token (overrides config)")

	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadSetup resolves home, config, and the API client shared by every mode.
func loadSetup() (string, *config.Config, *api.Client, error) {
	home, err := config.Home()
	if err != nil {
		return "", nil, nil, err
	}
	cfg, err := config.Load(home)
	if err != nil {
		return "", nil, nil, err
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if session != "" {
		cfg.SessionToken = session
	}

	client := api.NewClient(api.Config{
		BaseURL:      cfg.BackendURL,
		SessionToken: cfg.SessionToken,
	})
	return home, cfg, client, nil
}

// downloadDir picks where images land: ~/Downloads when it exists,
// otherwise a downloads folder under the postdeck home.
func downloadDir(home string) string {
	if userHome, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(userHome, "Downloads")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return filepath.Join(home, "downloads")
}

// runDashboard starts the interactive TUI.
func runDashboard() error {
	home, cfg, client, err := loadSetup()
	if err != nil {
		return err
	}

	if err := logging.Initialize(home); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging unavailable: %v\n", err)
	}
	defer logging.CloseAll()
	logging.Boot("postdeck starting (backend %s)", cfg.BackendURL)

	history, err := store.NewHistoryStore(filepath.Join(home, "history.db"))
	if err != nil {
		// The dashboard still works without local history.
		logging.BootError("history store unavailable: %v", err)
		history = nil
	} else {
		defer history.Close()
	}

	model := dash.New(dash.Deps{
		Config:      cfg,
		Client:      client,
		History:     history,
		DownloadDir: downloadDir(home),
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := config.NewWatcher(home, func(updated *config.Config) {
		program.Send(dash.ConfigReloadedMsg{Config: updated})
	})
	if err != nil {
		logging.BootError("config watcher unavailable: %v", err)
	} else {
		if err := watcher.Start(ctx); err != nil {
			logging.BootError("config watcher failed to start: %v", err)
		}
		defer watcher.Stop()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard crashed: %w", err)
	}
	logging.Boot("postdeck shut down")
	return nil
}

// cmdContext returns a bounded context for one-shot subcommands.
func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Minute)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
