package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/jats/internal/config"
)

// ConfigResponse is the JSON output of config show.
type ConfigResponse struct {
	Path   string         `json:"path"`
	Config *config.Config `json:"config"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after environment overrides are applied.

The file is read from --config, $JATS_CONFIG or
$XDG_CONFIG_HOME/jats/config.yml, in that order.`,
	Args: cobra.NoArgs,
	Run:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	path := config.Path(configPath)
	cfg := mustLoadConfig()

	if !humanOutput {
		outputJSON(ConfigResponse{Path: path, Config: cfg})
		return
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		exitWithError(ExitError, "encoding config: %v", err)
	}
	fmt.Printf("# %s\n%s", path, out)
}
