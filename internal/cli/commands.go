// Package cli implements the rally command line interface.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/tansive/rallyclient/internal/common/apperrors"
	"github.com/tansive/rallyclient/internal/common/httpclient"
	"github.com/tansive/rallyclient/internal/common/logtrace"
	"github.com/tansive/rallyclient/internal/rally"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
	debug      bool
)

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// newRootCmd builds the command tree. Flag variables are reset to their
// defaults each time.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rally [command] [flags]",
		Short: "Rally CLI - A command line client for the Rally Web Services API",
		Long: `Rally CLI is a command line client for the Rally Web Services API (v2.0).
It authenticates with Basic credentials, keeps the session cookies, and adds the
security token to write requests.

Credentials are read from RALLY_USERNAME and RALLY_PASSWORD, either from the
shell or from a .env file in the working directory.

Examples:
  # Store the server and username
  rally config --username me@example.com

  # List projects
  rally projects --query '(Name = "Wombat")'

  # Create a feature
  rally create-feature --workspace 12352608129 --project 14018981482 --name "New feature"`,
		PersistentPreRunE: preRunHandlePersistents,
		SilenceErrors:     true, // Execute prints the error
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "", false, "Log every request to stderr")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newProjectsCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newCreateFeatureCmd())
	return rootCmd
}

// Execute runs the CLI and exits non-zero on error.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if jsonOutput {
			_ = printJSON(os.Stdout, map[string]string{"error": errorMessage(err)})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err))
		}
		os.Exit(1)
	}
}

// errorMessage expands apperrors. Transport failures are reported by status
// and body; the request URL is left out as it may carry the security token.
func errorMessage(err error) string {
	msg := err.Error()
	var appErr apperrors.Error
	if errors.As(err, &appErr) {
		msg = appErr.ErrorAll()
	}
	var te *httpclient.TransportError
	if errors.As(err, &te) {
		if appErr == nil {
			msg = httpclient.ErrTransport.Error()
		}
		msg = fmt.Sprintf("%s: %s returned HTTP %d", msg, te.Method, te.StatusCode)
		if te.Body != "" {
			msg += "\n" + te.Body
		}
	}
	return msg
}

// preRunHandlePersistents initialises logging and loads the configuration for
// commands that talk to Rally.
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	logtrace.InitLogger(debug)

	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "version" {
			return nil
		}
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	config = cfg
	return nil
}

// newClient creates a Rally client from the loaded configuration.
func newClient() *rally.Client {
	cfg := GetConfig()
	return rally.New(httpclient.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
	}, cfg.ServerURL)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rally CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := configFile
			if configPath == "" {
				var err error
				if configPath, err = GetDefaultConfigPath(); err != nil {
					configPath = "unknown"
				}
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version":     getCLIVersion(),
					"config_file": configPath,
				})
			}
			cmd.Printf("rally CLI %s\n", getCLIVersion())
			cmd.Printf("Config file: %s\n", configPath)
			return nil
		},
	}
}

// printJSON prints data as indented JSON.
func printJSON(w io.Writer, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// printRaw prints a JSON document as JSON or YAML depending on --json.
func printRaw(w io.Writer, doc []byte) error {
	if jsonOutput {
		return printJSON(w, json.RawMessage(doc))
	}
	yamlBytes, err := yaml.JSONToYAML(doc)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	_, err = w.Write(yamlBytes)
	return err
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
