// Package main provides the bofh CLI entry point, an interactive client for the bofhd
// administration service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bofhshell/internal/config"
	"bofhshell/internal/logger"
	"bofhshell/internal/output"
	"bofhshell/internal/service"
	"bofhshell/internal/shell"
	"bofhshell/internal/version"
)

// Credentials used by --quick, matching the development server's bootstrap account.
const (
	bootstrapUser     = "bootstrap_account"
	bootstrapPassword = "test"
)

var (
	logLevel string
	logFile  string
	quick    bool
	username string
)

// rootCmd represents the base command: an interactive session against one server
var rootCmd = &cobra.Command{
	Use:   "bofh [flags] <config>",
	Short: "Interactive client for the bofhd administration service",
	Long: `bofh logs in to a bofhd server, fetches the commands it offers and runs them from an
interactive prompt. Command words may be abbreviated to any unique prefix; missing
arguments are prompted for.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runShell,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if viper.GetString("log-level") == "debug" {
			cmd.Println(version.GetDetailedVersion())
			return
		}
		cmd.Println(version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.Flags().BoolVarP(&quick, "quick", "q", false, "Log in as the bootstrap account without prompting")
	rootCmd.Flags().StringVar(&username, "user", os.Getenv("USER"), "Username offered at the login prompt")

	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-file flag: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	if err := logger.Configure(viper.GetString("log-level"), viper.GetString("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runShell(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	// The flag wins over the config file.
	if logLevel == "" && cfg.LogLevel != "" {
		if err := logger.Configure(cfg.LogLevel, logFile); err != nil {
			return fmt.Errorf("failed to configure logger: %w", err)
		}
	}
	logger.Info("Starting bofh", "version", version.GetVersion(), "server", cfg.URL)
	if err := version.ValidateVersion(); err != nil {
		logger.Warn("Reporting the version to the server as is", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	var clientOpts []service.Option
	if cfg.CAFile != "" {
		clientOpts = append(clientOpts, service.WithCAFile(cfg.CAFile))
	}
	client, err := service.NewXMLRPCClient(cfg.URL, clientOpts...)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	terminal, err := shell.NewReadlineTerminal(cfg.HistoryFile)
	if err != nil {
		return err
	}
	defer func() { _ = terminal.Close() }()
	if logFile == "" {
		logger.SetOutput(terminal.Stderr())
	}

	printer := output.NewPrinter(output.ForFile(os.Stdout)...)
	options := shell.Options{
		Prompt:     cfg.Prompt,
		ClientName: version.ClientName,
		Version:    version.GetBaseVersion(),
		Username:   username,
		Highlight:  printer.IsStylable(),
	}
	if quick {
		options.Bootstrap = &shell.Credentials{Username: bootstrapUser, Password: bootstrapPassword}
	}

	session := shell.New(client, terminal, printer, options)
	client.OnServerRestart(session.Refresh)
	client.OnSessionExpired(session.Reauthenticate)

	if err := session.Start(ctx); err != nil {
		return err
	}
	return session.Run(ctx)
}
