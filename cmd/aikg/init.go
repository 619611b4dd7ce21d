package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
	"github.com/LeonFTWANG/AIKG/internal/config"
	"github.com/LeonFTWANG/AIKG/internal/util"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the AIKG home directory and starter config",
	Long: `Initialize AIKG by creating:
- The AIKG home directory (default ~/.aikg, override with --home or AIKG_HOME)
- A starter config.yaml pointing at a local Neo4j instance

Running init again is safe: an existing config is kept unless --force is given.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

type initResult struct {
	HomeDir       string   `json:"home_dir"`
	ConfigPath    string   `json:"config_path"`
	ConfigCreated bool     `json:"config_created"`
	Warnings      []string `json:"warnings,omitempty"`
}

func runInit(cmd *cobra.Command, args []string) error {
	homeDir := globalFlags.HomeDir
	if homeDir == "" {
		homeDir = os.Getenv("AIKG_HOME")
	}
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}
	homeDir, err := util.ExpandPath(homeDir)
	if err != nil {
		return err
	}

	result := initResult{
		HomeDir:    homeDir,
		ConfigPath: config.DefaultConfigPath(homeDir),
	}

	// The config may hold the graph password, so keep the tree private.
	if err := os.MkdirAll(homeDir, 0o700); err != nil {
		return fmt.Errorf("failed to create home directory %s: %w", homeDir, err)
	}

	if err := initializeConfigFile(&result); err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(result)
	}

	formatter := internal.NewTextFormatter(cmd.OutOrStdout())
	if err := formatter.PrintSuccess("AIKG initialized"); err != nil {
		return err
	}
	cmd.Printf("  Home directory: %s\n", result.HomeDir)
	cmd.Printf("  Config file:    %s\n", result.ConfigPath)
	cmd.Printf("  Config created: %t\n", result.ConfigCreated)

	if len(result.Warnings) > 0 {
		cmd.Println("\nWarnings:")
		for _, w := range result.Warnings {
			cmd.Printf("  - %s\n", w)
		}
	}

	cmd.Printf("\nEdit %s to point AIKG at your Neo4j instance,\nthen seed the graph with 'aikg import --file <seed.yaml>'.\n", result.ConfigPath)
	return nil
}

// initializeConfigFile writes the starter config, keeping a valid existing
// file untouched unless --force was given.
func initializeConfigFile(result *initResult) error {
	_, err := os.Stat(result.ConfigPath)
	configExists := err == nil

	if configExists && !initForce {
		loader := config.NewConfigLoader(config.NewValidator())
		if _, err := loader.Load(result.ConfigPath); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("existing config is invalid: %v", err))
		}
		return nil
	}

	if err := writeStarterConfig(result.ConfigPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	result.ConfigCreated = true
	if configExists {
		result.Warnings = append(result.Warnings, "overwrote existing configuration (--force mode)")
	}
	return nil
}

// writeStarterConfig renders the default configuration as YAML. The API key
// is written as a ${VAR} reference so secrets stay out of the file.
func writeStarterConfig(path string) error {
	cfg := config.DefaultConfig()
	openai := cfg.LLM.Providers["openai"]

	content := fmt.Sprintf(`graph:
  uri: %s
  username: %s
  password: %s
  database: %s
  max_connections: %d
  connection_timeout: %s

llm:
  default_provider: %s
  providers:
    openai:
      type: openai
      api_key: ${OPENAI_API_KEY}
      model: %s
      temperature: %.1f
      max_tokens: %d

answer:
  history_window: %d
  search_limit: %d
  max_context_items: %d
  fallback_items: %d
  generation_timeout: %s

logging:
  level: %s
  format: %s

tracing:
  enabled: %t
  endpoint: "%s"
`,
		cfg.Graph.URI,
		cfg.Graph.Username,
		cfg.Graph.Password,
		cfg.Graph.Database,
		cfg.Graph.MaxConnections,
		cfg.Graph.ConnectionTimeout,
		cfg.LLM.DefaultProvider,
		openai.Model,
		openai.Temperature,
		openai.MaxTokens,
		cfg.Answer.HistoryWindow,
		cfg.Answer.SearchLimit,
		cfg.Answer.MaxContextItems,
		cfg.Answer.FallbackItems,
		cfg.Answer.GenerationTimeout,
		cfg.Logging.Level,
		cfg.Logging.Format,
		cfg.Tracing.Enabled,
		cfg.Tracing.Endpoint,
	)

	return os.WriteFile(path, []byte(content), 0o600)
}
