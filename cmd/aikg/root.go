package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
	"github.com/LeonFTWANG/AIKG/internal/config"
	"github.com/LeonFTWANG/AIKG/internal/observability"
	"github.com/LeonFTWANG/AIKG/internal/service"
	"github.com/LeonFTWANG/AIKG/internal/util"
	"github.com/LeonFTWANG/AIKG/pkg/version"
)

// Shared state populated by loadConfig before command execution.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aikg",
	Short: "AIKG - Security Knowledge Graph Assistant",
	Long: `AIKG is a security knowledge assistant backed by a Neo4j knowledge graph.
It answers security questions with graph-retrieved context, tracks which
topics a conversation already covered, and persists chat history together
with the knowledge each answer used.

Point it at a Neo4j instance via ~/.aikg/config.yaml or --config, seed the
graph with 'aikg import', then ask questions with 'aikg chat'.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig runs before every command and resolves the effective
// configuration. Commands that never touch the service skip the load so
// they work without a config file.
func loadConfig(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	switch cmd.Name() {
	case "version", "help", "completion", "init":
		return nil
	}

	homeDir := flags.HomeDir
	if homeDir == "" {
		homeDir = os.Getenv("AIKG_HOME")
	}
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}
	homeDir, err = util.ExpandPath(homeDir)
	if err != nil {
		return err
	}

	configFile := flags.ConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigPath(homeDir)
	}
	configFile, err = util.ExpandPath(configFile)
	if err != nil {
		return err
	}

	loader := config.NewConfigLoader(config.NewValidator())
	loaded, err := loader.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Logging.Level
	if flags.IsVerbose() {
		level = "debug"
	}
	if flags.IsQuiet() {
		level = "error"
	}
	logger = observability.NewLogger(level, cfg.Logging.Format, os.Stderr)

	return nil
}

// initService builds the service facade from the loaded config and opens
// the graph connection. The returned shutdown func releases everything
// and must be called even when the command fails afterwards.
func initService(cmd *cobra.Command) (*service.Service, func(), error) {
	ctx := cmd.Context()

	provider, err := observability.InitTracing(ctx, cfg.Tracing.TracerConfig())
	if err != nil {
		return nil, nil, err
	}

	svc, err := service.New(cfg, nil, logger)
	if err != nil {
		shutdownTracing(provider)
		return nil, nil, err
	}

	openCtx, cancel := context.WithTimeout(ctx, cfg.Graph.ConnectionTimeout)
	defer cancel()
	if err := svc.Open(openCtx); err != nil {
		shutdownTracing(provider)
		return nil, nil, internal.WrapError(internal.ExitGraphError,
			"failed to connect to graph store at "+cfg.Graph.URI, err)
	}

	shutdown := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svc.Close(closeCtx); err != nil {
			logger.Warn("failed to close graph connection", "error", err)
		}
		shutdownTracing(provider)
	}

	return svc, shutdown, nil
}

func shutdownTracing(provider *sdktrace.TracerProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := observability.ShutdownTracing(ctx, provider); err != nil && logger != nil {
		logger.Warn("failed to shut down tracing", "error", err)
	}
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(relatedCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(conversationCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.GetOutputFormat() == FormatJSON {
			return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(version.Info())
		}
		cmd.Println(version.String())
		return nil
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for aikg.

Examples:
  # Load completions for the current bash session
  source <(aikg completion bash)

  # Install zsh completions
  aikg completion zsh > "${fpath[1]}/_aikg"`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			_ = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			_ = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}
