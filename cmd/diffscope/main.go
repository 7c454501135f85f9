package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"diffscope/internal/app"
	"diffscope/internal/config"
	"diffscope/internal/core"
	"diffscope/internal/log"
	"diffscope/internal/web"
)

var (
	flagLeft    string
	flagRight   string
	flagWeb     bool
	flagPort    int
	flagOpen    bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "diffscope",
	Short: "Compare two directory trees side by side",
	Long: `diffscope scans two directory trees, classifies every entry as added,
removed, modified, unchanged or conflicted, and shows line-level diffs for
modified text files. It runs as a terminal UI by default, or serves the same
comparison over HTTP with --web.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagLeft, "left", "l", "", "left (old) path to compare")
	rootCmd.Flags().StringVarP(&flagRight, "right", "r", "", "right (new) path to compare")
	rootCmd.Flags().BoolVar(&flagWeb, "web", false, "serve the comparison over HTTP instead of the TUI")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "web server port (default from config, 3000)")
	rootCmd.Flags().BoolVar(&flagOpen, "open", false, "open the browser after the web server starts")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	_ = rootCmd.MarkFlagRequired("left")
	_ = rootCmd.MarkFlagRequired("right")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := log.LevelInfo
	if flagVerbose {
		level = log.LevelDebug
	}

	port := cfg.Port
	if flagPort != 0 {
		port = flagPort
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	comparer := core.New(flagLeft, flagRight, core.Options{
		IgnorePatterns:    cfg.IgnorePatterns,
		FingerprintAlways: cfg.FingerprintAlways,
	})

	if flagWeb {
		log.SetupWriter(os.Stderr, level)
		defer log.Close()
		return runWeb(comparer, port)
	}

	// The TUI owns the terminal, so logs go to a file.
	if err := log.SetupFile(filepath.Join(os.TempDir(), "diffscope.log"), level); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	defer log.Close()
	return runTUI(comparer)
}

func runTUI(comparer *core.Comparer) error {
	program := tea.NewProgram(app.NewModel(comparer), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

func runWeb(comparer *core.Comparer, port int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := comparer.Compare(ctx); err != nil {
		return fmt.Errorf("comparing %s and %s: %w", flagLeft, flagRight, err)
	}

	server := web.NewServer(comparer, port)
	return server.ListenAndServe(ctx, flagOpen)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
