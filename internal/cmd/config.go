package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/sixhats/internal/config"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/export"
)

func registerConfigCmd(parent *cobra.Command, g *globalOptions) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify sixhats configuration",
		Long: `View or modify sixhats configuration.

Without arguments, displays the effective configuration.
Use subcommands to modify settings or create a config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, g)
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, g)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the config file.

Keys use dot notation and values are parsed as YAML, e.g.:
  sixhats config set completion.provider echo
  sixhats config set dialogue.context_window 5
  sixhats config set dialogue.default_order '[white, black, green]'
  sixhats config set render.enabled false

The resulting configuration is validated before it is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, g, args[0], args[1])
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, g)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath(cmd, g)
		},
	})

	parent.AddCommand(configCmd)
}

// targetFile is the file "config set" and "config init" write to.
func (g *globalOptions) targetFile() string {
	if g.configFile != "" {
		return g.configFile
	}
	return config.ConfigFile()
}

func runConfigShow(cmd *cobra.Command, g *globalOptions) error {
	out := cmd.OutOrStdout()

	// Comment lines keep the output valid YAML.
	if used := g.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}
	if g.cfg.Completion.APIKey != "" {
		fmt.Fprintln(out, "# completion.api_key is set (hidden)")
	}
	return export.WriteYAML(out, g.cfg)
}

func runConfigSet(cmd *cobra.Command, g *globalOptions, key, raw string) error {
	key = strings.ToLower(key)
	if !slices.Contains(g.v.AllKeys(), key) {
		return errors.NewInvalidInputError("unknown configuration key").
			WithField(key).
			WithValue(raw)
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return errors.NewInvalidInputError("value is not valid YAML").
			WithField(key).
			WithValue(raw).
			WithCause(err)
	}

	g.v.Set(key, value)
	if _, err := config.Load(g.v); err != nil {
		return errors.NewInvalidInputError("invalid configuration").WithField(key).WithCause(err)
	}

	path := g.targetFile()
	doc, err := readConfigDoc(path)
	if err != nil {
		return err
	}
	setNested(doc, strings.Split(key, "."), value)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, value)
	fmt.Fprintf(out, "Config saved to %s\n", path)
	return nil
}

// readConfigDoc loads the config file as a generic document so unrelated
// keys and values survive a rewrite. A missing file is an empty document.
func readConfigDoc(path string) (map[string]any, error) {
	doc := map[string]any{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewInvalidInputError("config file is not valid YAML").
			WithField("config").
			WithValue(path).
			WithCause(err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func setNested(doc map[string]any, path []string, value any) {
	for _, part := range path[:len(path)-1] {
		child, ok := doc[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			doc[part] = child
		}
		doc = child
	}
	doc[path[len(path)-1]] = value
}

const defaultConfigFile = `# sixhats configuration
#
# Every key can also be set with an environment variable:
# SIXHATS_<SECTION>_<KEY>, e.g. SIXHATS_COMPLETION_PROVIDER=echo

completion:
  # "anthropic" or "echo" (offline, repeats prompts back)
  provider: anthropic
  model: claude-3-5-sonnet-20241022
  max_tokens: 1024
  timeout_seconds: 60
  # api_key is read from ANTHROPIC_API_KEY when unset

dialogue:
  # Hats used when a request names none
  default_order: [blue, white, red, black, yellow, green]
  # Link each message to the previous one and share recent context
  dialog_mode: true
  # How many of a hat's own messages it sees again
  context_window: 3
  # Optional YAML file overriding persona prompts per hat
  personas_file: ""

render:
  # Panels on stderr while a session runs
  enabled: true
  markdown: true
  # 0 uses the terminal width
  width: 0
  summary_preview: 50

logging:
  enabled: true
  # debug, info, warn, error
  level: info
  # Empty means <config dir>/logs
  dir: ""
  max_size_mb: 10
  max_backups: 3

archive:
  # Store every session in a SQLite database
  enabled: false
  # Empty means <config dir>/sessions.db
  path: ""

web:
  addr: ":3001"

batch:
  max_parallel: 3
`

func runConfigInit(cmd *cobra.Command, g *globalOptions) error {
	path := g.targetFile()

	if _, err := os.Stat(path); err == nil {
		return errors.NewInvalidInputError("config file already exists; use 'sixhats config set' to modify values").
			WithField("config").
			WithValue(path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigFile), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, g *globalOptions) error {
	out := cmd.OutOrStdout()

	if used := g.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintln(out, "\nEnvironment variables: SIXHATS_* (e.g., SIXHATS_COMPLETION_PROVIDER)")
	return nil
}
