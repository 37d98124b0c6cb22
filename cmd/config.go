package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/todo/internal/auth"
	"github.com/joescharf/todo/internal/logging"
	"github.com/joescharf/todo/internal/store"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "todo"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage todo configuration.

Running bare 'todo config' is the same as 'todo config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources and problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# todo configuration
# See: todo config show (for effective values and sources)

# State/data directory (default: ~/.config/todo)
# state_dir: {{ .StateDir }}

store:
  # Backend: sqlite, postgres or memory (default: sqlite)
  driver: "{{ .StoreDriver }}"
  # SQLite database path (default: ~/.config/todo/todo.db)
  sqlite_path: "{{ .SQLitePath }}"
  # Postgres connection string, used when driver is postgres
  postgres_dsn: "{{ .PostgresDSN }}"

auth:
  # Simulated login round trip (default: 600ms)
  latency: "{{ .AuthLatency }}"

dashboard:
  # How long a deleted task can be restored (default: 5s)
  undo_window: "{{ .UndoWindow }}"

api:
  # Port for 'todo serve' (default: 8080)
  port: {{ .APIPort }}
  # Require a bearer token on every API call except login (default: false)
  require_auth: {{ .APIRequireAuth }}

log:
  # trace, debug, info, warn, error or disabled (default: warn)
  level: "{{ .LogLevel }}"
  # console or json (default: console)
  format: "{{ .LogFormat }}"

anthropic:
  # Model used by 'todo import' and 'todo add --enrich'
  model: "{{ .AnthropicModel }}"
`

type configTemplateData struct {
	StateDir       string
	StoreDriver    string
	SQLitePath     string
	PostgresDSN    string
	AuthLatency    string
	UndoWindow     string
	APIPort        int
	APIRequireAuth bool
	LogLevel       string
	LogFormat      string
	AnthropicModel string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		StateDir:       viper.GetString("state_dir"),
		StoreDriver:    viper.GetString("store.driver"),
		SQLitePath:     viper.GetString("store.sqlite_path"),
		PostgresDSN:    viper.GetString("store.postgres_dsn"),
		AuthLatency:    viper.GetString("auth.latency"),
		UndoWindow:     viper.GetString("dashboard.undo_window"),
		APIPort:        viper.GetInt("api.port"),
		APIRequireAuth: viper.GetBool("api.require_auth"),
		LogLevel:       viper.GetString("log.level"),
		LogFormat:      viper.GetString("log.format"),
		AnthropicModel: viper.GetString("anthropic.model"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKey describes a config key for display and checking.
type configKey struct {
	Key    string
	Secret bool
	// Check reports a problem with the effective value, or nil.
	Check func(key string) error
}

var configKeys = []configKey{
	{Key: "state_dir"},
	{Key: "store.driver", Check: checkStoreDriver},
	{Key: "store.sqlite_path"},
	{Key: "store.postgres_dsn", Secret: true},
	{Key: "auth.latency", Check: checkDuration},
	{Key: "auth.token_secret", Secret: true, Check: checkTokenSecret},
	{Key: "dashboard.undo_window", Check: checkDuration},
	{Key: "notify.buffer", Check: checkPositive},
	{Key: "api.port", Check: checkPort},
	{Key: "api.require_auth"},
	{Key: "log.level", Check: checkLogLevel},
	{Key: "log.format", Check: checkLogFormat},
	{Key: "anthropic.api_key", Secret: true},
	{Key: "anthropic.model"},
}

// envVar returns the environment variable viper maps onto key.
func envVar(key string) string {
	return "TODO_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func checkStoreDriver(key string) error {
	switch d := viper.GetString(key); d {
	case store.DriverMemory, store.DriverSQLite:
		return nil
	case store.DriverPostgres:
		if viper.GetString("store.postgres_dsn") == "" {
			return fmt.Errorf("postgres needs store.postgres_dsn")
		}
		return nil
	default:
		return fmt.Errorf("unknown driver %q (use: memory, sqlite, postgres)", d)
	}
}

func checkDuration(key string) error {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fmt.Errorf("not a duration (e.g. 5s, 600ms)")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func checkTokenSecret(key string) error {
	if viper.GetString(key) == auth.DefaultTokenSecret && viper.GetBool("api.require_auth") {
		return fmt.Errorf("still the built-in secret while api.require_auth is on")
	}
	return nil
}

func checkPositive(key string) error {
	if viper.GetInt(key) < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

func checkPort(key string) error {
	if p := viper.GetInt(key); p < 1 || p > 65535 {
		return fmt.Errorf("port %d out of range", p)
	}
	return nil
}

func checkLogLevel(key string) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(viper.GetString(key))); err != nil {
		return fmt.Errorf("unknown level (use: trace, debug, info, warn, error, disabled)")
	}
	return nil
}

func checkLogFormat(key string) error {
	switch viper.GetString(key) {
	case logging.FormatConsole, logging.FormatJSON:
		return nil
	}
	return fmt.Errorf("unknown format (use: console, json)")
}

// configProblems checks every effective value and returns one line per
// problem, in key order.
func configProblems() []string {
	var problems []string
	for _, k := range configKeys {
		if k.Check == nil {
			continue
		}
		if err := k.Check(k.Key); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", k.Key, err))
		}
	}
	return problems
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	fileLines := map[string]int{}
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
		if fileLines, err = configFileLines(cfgPath); err != nil {
			ui.Warning("Config file is not valid YAML: %v", err)
		}
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		if k.Secret && fmt.Sprint(val) != "" {
			val = "********"
		}
		fmt.Fprintf(ui.Out, "  %-24s %v  %s\n", k.Key, val, valueSource(k.Key, fileLines))
	}

	problems := configProblems()
	if len(problems) > 0 {
		fmt.Fprintln(ui.Out)
	}
	for _, p := range problems {
		ui.Warning("%s", p)
	}
	return nil
}

// configFileLines parses the YAML file and maps each leaf key, in dot
// notation, to the line it is set on.
func configFileLines(path string) (map[string]int, error) {
	lines := map[string]int{}

	data, err := os.ReadFile(path)
	if err != nil {
		return lines, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return lines, err
	}
	if len(doc.Content) > 0 {
		collectKeyLines("", doc.Content[0], lines)
	}
	return lines, nil
}

func collectKeyLines(prefix string, n *yaml.Node, lines map[string]int) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		key := k.Value
		if prefix != "" {
			key = prefix + "." + key
		}
		if v.Kind == yaml.MappingNode {
			collectKeyLines(key, v, lines)
			continue
		}
		lines[key] = k.Line
	}
}

// valueSource names where the effective value of key comes from. The
// environment wins over the file, as in viper.
func valueSource(key string, fileLines map[string]int) string {
	if env := envVar(key); os.Getenv(env) != "" {
		return fmt.Sprintf("(env: %s)", env)
	}
	if line, ok := fileLines[key]; ok {
		return fmt.Sprintf("(file:%d)", line)
	}
	return "(default)"
}

// configEditRun opens the config file in $EDITOR and checks the result
// once the editor exits.
func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'todo config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", editor, err)
	}

	return checkConfigFile(cfgPath)
}

// checkConfigFile re-reads cfgPath into viper and warns about values the
// store, server or logger would reject.
func checkConfigFile(cfgPath string) error {
	if _, err := configFileLines(cfgPath); err != nil {
		return fmt.Errorf("config file is not valid YAML: %w", err)
	}
	viper.SetConfigFile(cfgPath)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	problems := configProblems()
	if len(problems) == 0 {
		ui.Success("Config OK")
		return nil
	}
	for _, p := range problems {
		ui.Warning("%s", p)
	}
	return nil
}
