package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studiowebux/dfspanel/internal/app"
	"github.com/studiowebux/dfspanel/internal/cli"
	"github.com/studiowebux/dfspanel/internal/config"
	"github.com/studiowebux/dfspanel/internal/logging"
	"github.com/studiowebux/dfspanel/internal/tui"
	"github.com/studiowebux/dfspanel/internal/types"
	versioncheck "github.com/studiowebux/dfspanel/internal/version"
)

var (
	version = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dfspanel",
	Short: "Model code generator panel for MySQL tables",
	Long: `dfspanel connects a dfs-generate service to a MySQL database, lets you pick
tables and shows the generated SQLModel or Tortoise ORM source.

Run without arguments to start the TUI, or use a subcommand for scripting.

Examples:
  dfspanel                                        # Start interactive TUI
  dfspanel configure --host 127.0.0.1 -u root -d shop
  dfspanel tables ord                             # List matching tables
  dfspanel tables -q '[].tableName'               # Only the table names
  dfspanel generate orders users --mode tortoise  # Print generated code
  dfspanel generate orders -o ./models            # Write files under ./models/orders/
  dfspanel mock                                   # Serve a stand-in backend on :8080`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()
		return tui.Run(cmd.Context(), a)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored and service-side database connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		return structured(cmd, func(w io.Writer, format string) error {
			return cli.Status(cmd.Context(), a, w, format)
		})
	},
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Point the service at a MySQL database",
	Long: `Send connection parameters to the service, store them locally and list the tables.

The password is prompted for when --password is omitted on a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := types.ConnectionConfig{
			Host:     flagHost,
			Port:     flagPort,
			User:     flagUser,
			Password: flagPassword,
			Database: flagDatabase,
			Charset:  flagCharset,
		}
		if cfg.Password == "" {
			cfg.Password = os.Getenv("DFSPANEL_DB_PASSWORD")
		}
		return cli.Configure(cmd.Context(), a, cfg, cmd.OutOrStdout())
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables [filter]",
	Short: "List the tables of the configured database",
	Long:  "List the tables of the configured database. A filter keeps tables whose name contains it.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		filter := flagFilter
		if len(args) > 0 {
			filter = args[0]
		}
		return structured(cmd, func(w io.Writer, format string) error {
			return cli.Tables(cmd.Context(), a, filter, w, format)
		})
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [table...]",
	Short: "Generate model code for tables",
	Long: `Generate model code for the given tables in the selected mode.

Without table names a checklist of the catalog is shown on a terminal.
Tables that fail are reported on stderr and make the command exit non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		return cli.Generate(cmd.Context(), a, cli.GenerateOptions{
			Tables:    args,
			OutputDir: flagOutputDir,
			Highlight: flagOutputDir == "" && !flagNoColor && cli.IsTerminal(os.Stdout),
			Stderr:    cmd.ErrOrStderr(),
		}, cmd.OutOrStdout())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generation fetches",
	Long: `Show recent generation fetches, newest first.

With --stats, show per table totals instead: calls, failures and durations.
--mode limits the totals to one generation mode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		if flagStats {
			return structured(cmd, func(w io.Writer, format string) error {
				return cli.Stats(a, flagMode, w, format)
			})
		}
		if flagClear {
			return cli.History(a, flagLimit, true, cmd.OutOrStdout(), flagFormat)
		}
		return structured(cmd, func(w io.Writer, format string) error {
			return cli.History(a, flagLimit, false, w, format)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dfspanel version",
	Long:  "Print the dfspanel version. With --check, ask GitHub whether a newer release exists.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagCheck {
			fmt.Fprintln(cmd.OutOrStdout(), "dfspanel "+version)
			return nil
		}
		return cli.CheckVersion(cmd.Context(), versioncheck.NewChecker(), version, cmd.OutOrStdout())
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve a stand-in dfs-generate service",
	Long: `Serve the four service endpoints from a fixture file (YAML, JSON or JSONC).

Without a fixture a small shop catalog is served. Use --init to write it to a
file as a starting point.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunMock(cmd.Context(), cli.MockOptions{
			FixturePath: flagMockFixture,
			Host:        flagMockHost,
			Port:        flagMockPort,
			Init:        flagMockInit,
			Logger:      logging.New(logging.WithWriter(cmd.ErrOrStderr())),
		}, cmd.OutOrStdout())
	},
}

// Persistent flags
var (
	flagSettings string
	flagEnvFile  string
	flagBaseURL  string
	flagMode     string
	flagVerbose  bool
)

// Flags for configure
var (
	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string
	flagDatabase string
	flagCharset  string
)

// Flags for output commands
var (
	flagFormat    string
	flagQuery     string
	flagFilter    string
	flagOutputDir string
	flagNoColor   bool
	flagLimit     int
	flagClear     bool
	flagStats     bool
	flagCheck     bool
)

// Flags for mock
var (
	flagMockFixture string
	flagMockHost    string
	flagMockPort    int
	flagMockInit    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "Settings file (default: search the config dir)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Load environment variables from file")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Service base URL")
	rootCmd.PersistentFlags().StringVarP(&flagMode, "mode", "m", "", "Generation mode (sqlmodel/tortoise)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	configureCmd.Flags().StringVar(&flagHost, "host", "", "MySQL host")
	configureCmd.Flags().IntVarP(&flagPort, "port", "P", 3306, "MySQL port")
	configureCmd.Flags().StringVarP(&flagUser, "user", "u", "", "MySQL user")
	configureCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "MySQL password (or DFSPANEL_DB_PASSWORD)")
	configureCmd.Flags().StringVarP(&flagDatabase, "db", "d", "", "Database name")
	configureCmd.Flags().StringVar(&flagCharset, "charset", "utf8", "Connection charset")

	for _, cmd := range []*cobra.Command{statusCmd, tablesCmd, historyCmd} {
		cmd.Flags().StringVarP(&flagFormat, "format", "f", "text", "Output format (text/json/yaml)")
		cmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath expression applied to the JSON output")
	}
	tablesCmd.Flags().StringVar(&flagFilter, "filter", "", "Only tables whose name contains this text")

	generateCmd.Flags().StringVarP(&flagOutputDir, "output", "o", "", "Write files to this directory instead of printing")
	generateCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable syntax highlighting")

	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all history")
	historyCmd.Flags().BoolVar(&flagStats, "stats", false, "Show per table statistics")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check for a newer release")

	mockCmd.Flags().StringVar(&flagMockFixture, "fixture", "", "Fixture file (default: built-in shop catalog)")
	mockCmd.Flags().StringVar(&flagMockHost, "host", "", "Listen host (default: fixture or localhost)")
	mockCmd.Flags().IntVar(&flagMockPort, "port", 0, "Listen port (default: fixture or 8080)")
	mockCmd.Flags().StringVar(&flagMockInit, "init", "", "Write the built-in fixture to this file and exit")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
}

// structured runs write with the chosen format. A --query forces JSON and
// prints only the expression result.
func structured(cmd *cobra.Command, write func(w io.Writer, format string) error) error {
	if flagQuery == "" {
		return write(cmd.OutOrStdout(), flagFormat)
	}
	return cli.Query(cmd.OutOrStdout(), flagQuery, func(w io.Writer) error {
		return write(w, "json")
	})
}

// openApp initializes the config dir and assembles the app. The TUI logs to a file.
func openApp(logToFile bool) (*app.App, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	return app.Open(app.Options{
		SettingsPath: flagSettings,
		EnvFile:      flagEnvFile,
		BaseURL:      flagBaseURL,
		Mode:         flagMode,
		Verbose:      flagVerbose,
		LogToFile:    logToFile,
	})
}
