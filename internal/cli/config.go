package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tansive/rallyclient/internal/rally"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

const configVersion = "0.1.0"

// Environment variables that override the config file.
const (
	EnvUsername = "RALLY_USERNAME"
	EnvPassword = "RALLY_PASSWORD"
	EnvURL      = "RALLY_URL"
)

// Config holds the Rally connection settings. The password is never written
// to the config file; it is read from RALLY_PASSWORD.
type Config struct {
	Version   string `yaml:"version"`
	ServerURL string `yaml:"server_url" validate:"required,url"`
	Username  string `yaml:"username" validate:"required"`
	Password  string `yaml:"-" env:"RALLY_PASSWORD" validate:"required"`
}

var config *Config

var configValidator *validator.Validate

func validate() *validator.Validate {
	if configValidator == nil {
		configValidator = validator.New(validator.WithRequiredStructEnabled())
		configValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("env"); name != "" {
				return name
			}
			return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		})
	}
	return configValidator
}

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/rally on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "rally", DefaultConfigFile), nil
}

// LoadConfig reads file, then applies .env and environment overrides. A
// missing file is not an error.
func LoadConfig(file string) (*Config, error) {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	c := Config{Version: configVersion, ServerURL: rally.DefaultURL}
	yamlStr, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlStr, &c); err != nil {
			return nil, fmt.Errorf("unable to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	loadDotEnv()
	if v := os.Getenv(EnvURL); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	c.Password = os.Getenv(EnvPassword)
	c.ServerURL = MorphServer(c.ServerURL)
	return &c, nil
}

// loadDotEnv loads .env from the working directory. Variables already set in
// the environment win.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(cwd, ".env")) // no error if .env doesn't exist
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// Validate checks every field, including the password.
func (cfg *Config) Validate() error {
	return validationError(validate().Struct(cfg))
}

// validateStored checks the fields that are written to the config file.
func (cfg *Config) validateStored() error {
	return validationError(validate().StructExcept(cfg, "Password"))
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
}

// WriteConfig writes the configuration to file.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), 0o700)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// MorphServer ensures the server URL is properly formatted
// Adds https:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}
	server = strings.TrimRight(server, "/")
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}
	return server
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `Write the Rally server URL and username to the config file.
The password is never stored; set RALLY_PASSWORD in your shell or in a .env file.

Example:
  rally config --server rally1.rallydev.com --username me@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			username, _ := cmd.Flags().GetString("username")
			if server == "" && username == "" {
				return cmd.Help()
			}
			return setConfig(cmd, server, username)
		},
	}
	cmd.Flags().String("server", "", "Rally server URL (default "+rally.DefaultURL+")")
	cmd.Flags().String("username", "", "Rally username")
	return cmd
}

// setConfig updates the stored config with the given values.
func setConfig(cmd *cobra.Command, server, username string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	cfg := Config{Version: configVersion, ServerURL: rally.DefaultURL}
	if b, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return fmt.Errorf("unable to parse config file: %w", err)
		}
	}
	if server != "" {
		cfg.ServerURL = MorphServer(server)
	}
	if username != "" {
		cfg.Username = username
	}
	cfg.Version = configVersion
	if err := cfg.validateStored(); err != nil {
		return err
	}

	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]string{
			"server":      cfg.ServerURL,
			"username":    cfg.Username,
			"config_file": configPath,
		})
	}
	okLabel.Fprintf(out, "Server configured: %s\n", cfg.ServerURL)
	fmt.Fprintf(out, "Username: %s\n", cfg.Username)
	fmt.Fprintf(out, "Config file: %s\n", configPath)
	return nil
}
