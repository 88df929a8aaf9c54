package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/cloudrest/bootstrap"
	"github.com/artpar/cloudrest/config"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cloudrest",
	Short: "REST interface to cloud provider drivers",
	Long: `cloudrest exposes compute, DNS, load balancer and storage drivers
over HTTP/JSON. Method arguments, types and documentation are read from the
driver docstrings.

Quick start:
  cloudrest serve                      # Start the HTTP server
  cloudrest providers compute          # List compute providers
  cloudrest describe dns dummy         # Show the methods of a provider
  cloudrest invoke compute dummy list_nodes --creds 2`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "config file path")
}

// loadCatalog builds the provider registries without starting a server.
func loadCatalog() (*bootstrap.Catalog, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return bootstrap.NewCatalog(cfg)
}
