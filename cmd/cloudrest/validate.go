package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/cloudrest/adapters/sqlite"
	"github.com/artpar/cloudrest/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the cloudrest configuration file.

Checks:
  - YAML syntax is valid
  - Values are in range and services are known
  - Storage database is writable (optional)

Examples:
  cloudrest validate
  cloudrest validate --config /etc/cloudrest/cloudrest.yaml --check-storage`,
	RunE: runValidate,
}

var (
	validateCheckStorage bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckStorage, "check-storage", false, "check if the storage database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Fprintf(out, "  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(out, "  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config syntax valid\n", checkMark)

	fmt.Fprintf(out, "  %s Listen address: %s\n", checkMark, cfg.Server.Addr())
	fmt.Fprintf(out, "  %s Services: %v\n", checkMark, cfg.Providers.Services)
	fmt.Fprintf(out, "  %s Storage: %s\n", checkMark, cfg.Storage.Path)

	if validateCheckStorage {
		if err := checkStorageWritable(cfg.Storage.Path); err != nil {
			fmt.Fprintf(out, "  %s Storage writable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
		} else {
			fmt.Fprintf(out, "  %s Storage writable\n", checkMark)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

func checkStorageWritable(path string) error {
	db, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Migrate()
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
