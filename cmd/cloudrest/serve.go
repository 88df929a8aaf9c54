package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/cloudrest/bootstrap"
	"github.com/artpar/cloudrest/config"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the cloudrest HTTP server.

The server will:
  - Load configuration from cloudrest.yaml (or --config)
  - Or load configuration from CLOUDREST_* environment variables
  - Register the providers of the enabled services
  - Serve /{service}/{provider}/... and the OpenAPI document

Environment variables (for Docker deployments):
  CLOUDREST_SERVER_PORT     - Server port (default: 5000)
  CLOUDREST_LOG_LEVEL       - Log level: debug, info, warn, error
  CLOUDREST_STORAGE_PATH    - SQLite storage database
  CLOUDREST_SERVICES        - Comma separated services to serve

Examples:
  cloudrest serve
  cloudrest serve --config /etc/cloudrest/cloudrest.yaml
  cloudrest serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err != nil && !config.HasEnvConfig() {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s found, running with defaults\n", cfgFile)
	}

	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: cfgFile,
		HotReload:  hotReload,
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
