package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vango-dev/swapgrid/internal/config"
	"github.com/vango-dev/swapgrid/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#42E7FF"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FD68F"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE763"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")).Width(16)
)

func main() {
	var (
		configDir string
		logLevel  string
	)

	rootCmd := &cobra.Command{
		Use:   "swapgrid",
		Short: "Windowed lists, request caching and optimistic toggles for partial-update pages",
		Long: `swapgrid drives a headless page the way a browser would and serves
the backend such a page talks to.

  • serve     runs the demo backend (items, toggles, beacons, metrics)
  • simulate  mounts a page against the backend and reports the window`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := setupLogger(logLevel)
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory containing "+config.ConfigFileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCmd(&configDir),
		simulateCmd(&configDir),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// loadConfig reads swapgrid.json from dir, or returns the defaults when
// there is none.
func loadConfig(dir string) (*config.Config, error) {
	if !config.Exists(dir) {
		return config.New(), nil
	}
	return config.Load(dir)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Println(successStyle.Render("✓") + " " + fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Println(warnStyle.Render("⚠") + " " + fmt.Sprintf(format, args...))
}

// field prints an aligned label/value line.
func field(label string, format string, args ...any) {
	fmt.Println("  " + labelStyle.Render(label) + fmt.Sprintf(format, args...))
}
