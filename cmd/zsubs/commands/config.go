package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/zsubs-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration stored in ~/.zsubs/config.yml.
type Config struct {
	API          string        `json:"api,omitempty"          yaml:"api,omitempty"`
	Token        string        `json:"token,omitempty"        yaml:"token,omitempty"`
	Organization string        `json:"organization,omitempty" yaml:"organization,omitempty"`
	Output       string        `json:"output,omitempty"       yaml:"output,omitempty"`
	MaxPages     int           `json:"max_pages,omitempty"    yaml:"max_pages,omitempty"`
	Retries      int           `json:"retries,omitempty"      yaml:"retries,omitempty"`
	Cache        CacheSettings `json:"cache"                  yaml:"cache,omitempty"`
}

// CacheSettings selects the list page cache used by the CLI.
type CacheSettings struct {
	Type    string `json:"type,omitempty"     yaml:"type,omitempty"`
	TTL     string `json:"ttl,omitempty"      yaml:"ttl,omitempty"`
	NATSURL string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
	Bucket  string `json:"bucket,omitempty"   yaml:"bucket,omitempty"`
}

type configKey struct {
	set   func(c *Config, value string) error
	get   func(c *Config) string
	unset func(c *Config)
}

func stringKey(field func(c *Config) *string) configKey {
	return configKey{
		set:   func(c *Config, value string) error { *field(c) = value; return nil },
		get:   func(c *Config) string { return *field(c) },
		unset: func(c *Config) { *field(c) = "" },
	}
}

func intKey(field func(c *Config) *int) configKey {
	return configKey{
		set: func(c *Config, value string) error {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid number %q", value)
			}

			*field(c) = n

			return nil
		},
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}

			return strconv.Itoa(*field(c))
		},
		unset: func(c *Config) { *field(c) = 0 },
	}
}

// configKeys lists the keys accepted by config set and unset.
var configKeys = map[string]configKey{
	"api":          stringKey(func(c *Config) *string { return &c.API }),
	"token":        stringKey(func(c *Config) *string { return &c.Token }),
	"organization": stringKey(func(c *Config) *string { return &c.Organization }),
	"output": {
		set: func(c *Config, value string) error {
			switch value {
			case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
				c.Output = value

				return nil
			default:
				return fmt.Errorf("%w: %q", constants.ErrInvalidOutput, value)
			}
		},
		get:   func(c *Config) string { return c.Output },
		unset: func(c *Config) { c.Output = "" },
	},
	"max_pages": intKey(func(c *Config) *int { return &c.MaxPages }),
	"retries":   intKey(func(c *Config) *int { return &c.Retries }),
	"cache.type": stringKey(func(c *Config) *string { return &c.Cache.Type }),
	"cache.ttl": {
		set: func(c *Config, value string) error {
			_, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", value, err)
			}

			c.Cache.TTL = value

			return nil
		},
		get:   func(c *Config) string { return c.Cache.TTL },
		unset: func(c *Config) { c.Cache.TTL = "" },
	},
	"cache.nats_url": stringKey(func(c *Config) *string { return &c.Cache.NATSURL }),
	"cache.bucket":   stringKey(func(c *Config) *string { return &c.Cache.Bucket }),
}

func configKeyNames() []string {
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage zsubs CLI configuration including the API endpoint, token and cache",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigSetTokenCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration. The token is masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = maskToken(config.Token)

			return renderValue(cmd, config, func() error {
				rows := make([][]string, 0, len(configKeys))
				for _, name := range configKeyNames() {
					rows = append(rows, []string{name, formatConfigValue(configKeys[name].get(config))})
				}

				return renderTable(cmd, []string{"Key", "Value"}, rows)
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeyNames(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := configKeys[args[0]]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, args[0])
			}

			config := loadStoredConfig()

			err := key.set(config, args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			printf(cmd, "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := configKeys[args[0]]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, args[0])
			}

			config := loadStoredConfig()
			key.unset(config)

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			printf(cmd, "Unset %s\n", args[0])

			return nil
		},
	}
}

func newConfigSetTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token [TOKEN]",
		Short: "Store the OAuth access token",
		Long:  "Store the OAuth access token. Without an argument the token is read from the terminal without echo.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string

			if len(args) == 1 {
				token = args[0]
			} else {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Access token: ")

				var err error

				token, err = readSecret(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading token: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return constants.ErrEmptyToken
			}

			config := loadStoredConfig()
			config.Token = token

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			printf(cmd, "Token saved\n")

			return nil
		},
	}
}

// readSecret reads a line without echo when in is a terminal.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}

		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}

	return line, nil
}

// loadConfig returns the effective configuration: the config file overlaid
// with environment variables and flags.
func loadConfig() *Config {
	return &Config{
		API:          viper.GetString("api"),
		Token:        viper.GetString("token"),
		Organization: viper.GetString("organization"),
		Output:       viper.GetString("output"),
		MaxPages:     viper.GetInt("max_pages"),
		Retries:      viper.GetInt("retries"),
		Cache: CacheSettings{
			Type:    viper.GetString("cache.type"),
			TTL:     viper.GetString("cache.ttl"),
			NATSURL: viper.GetString("cache.nats_url"),
			Bucket:  viper.GetString("cache.bucket"),
		},
	}
}

// loadStoredConfig reads only the config file, so that values coming from
// flags or the environment are not written back.
func loadStoredConfig() *Config {
	config := &Config{}

	path, err := configFilePath()
	if err != nil {
		return config
	}

	// #nosec G304 -- path is the CLI's own config file
	data, err := os.ReadFile(path)
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

func configFilePath() (string, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return file, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func maskToken(token string) string {
	const visible = 8

	if len(token) <= visible {
		return strings.Repeat("*", len(token))
	}

	return token[:visible] + "..."
}

func formatConfigValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}
