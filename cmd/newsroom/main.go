package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/newsroom/internal/config"
	"github.com/pders01/newsroom/internal/debuglog"
	"github.com/pders01/newsroom/internal/services"
	"github.com/pders01/newsroom/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	logLevel   string
	quiet      bool
	assumeYes  bool
)

var rootCmd = &cobra.Command{
	Use:          "newsroom",
	Short:        "World news in your terminal",
	Long:         "newsroom searches the World News API, browses top stories and newspaper front pages, and keeps a local library of saved articles and searches.",
	SilenceUsage: true,
	RunE:         runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newsroom %s\n", Version)
		fmt.Println("World News API client")
		fmt.Println("github.com/pders01/newsroom")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			home, _ := os.UserHomeDir()
			path = filepath.Join(home, ".config", "newsroom", "config.toml")
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("generating config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to configuration file")
	pf.StringVar(&dbPath, "db", "", "path to database file (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error, off (overrides config)")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip startup banner")

	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(versionCmd, configCmd)
	rootCmd.AddCommand(searchCmd, topCmd, frontPagesCmd, countriesCmd, sourcesCmd)
	rootCmd.AddCommand(foldersCmd, savedCmd, searchesCmd, libraryCmd, settingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// openServices loads the config, starts logging and opens the settings store.
// The caller must Close the result.
func openServices() (*services.Services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File); err != nil {
		return nil, err
	}
	svc, err := services.Open(cfg)
	if err != nil {
		_ = debuglog.Close()
		return nil, err
	}
	return svc, nil
}

func closeServices(svc *services.Services) {
	if err := svc.Close(); err != nil {
		debuglog.Errorf("closing services: %v", err)
	}
	_ = debuglog.Close()
}

func runTUI(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer closeServices(svc)

	if !quiet {
		tui.ShowBanner(Version)
	}

	p := tea.NewProgram(tui.NewApp(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}
