package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marshallshelly/agroexport/cmd/agroexport/output"
	"github.com/marshallshelly/agroexport/pkg/config"
)

var forceInit bool

// configCmd manages the configuration file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write or show the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Write the default configuration to --config.

Examples:
  agroexport config init                   # Write agroexport.yaml
  agroexport config init -c prod.yaml -f   # Overwrite an existing file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigInit()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying the file, the environment and the
command-line flags. The admin token and database password are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
}

func runConfigInit() error {
	if _, err := os.Stat(cfgFile); err == nil && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}
	if err := config.Default().Save(cfgFile); err != nil {
		return err
	}
	output.Success("Wrote %s", cfgFile)
	return nil
}

func runConfigShow() error {
	shown := *cfg
	if shown.Admin.Token != "" {
		shown.Admin.Token = "********"
	}
	if shown.Database.Password != "" {
		shown.Database.Password = "********"
	}
	if jsonOutput {
		return printJSON(shown)
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = output.Writer.Write(data)
	return err
}
