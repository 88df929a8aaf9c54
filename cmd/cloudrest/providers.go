package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/cloudrest/core/formatter"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/provider"
)

var (
	outputFormat string
	outputCols   []string
	noHeader     bool
)

var providersCmd = &cobra.Command{
	Use:   "providers <service>",
	Short: "List the providers of a service",
	Long: `List the providers registered for a service.

Examples:
  cloudrest providers compute
  cloudrest providers storage --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runProviders,
}

var describeCmd = &cobra.Command{
	Use:   "describe <service> <provider> [method]",
	Short: "Describe a provider or one of its methods",
	Long: `Describe the credential headers and supported methods of a provider,
or the arguments and result of one method.

Methods whose documentation cannot be parsed are left out.

Examples:
  cloudrest describe compute dummy
  cloudrest describe dns dummy create_record --format yaml`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runDescribe,
}

func init() {
	for _, cmd := range []*cobra.Command{providersCmd, describeCmd} {
		cmd.Flags().StringVarP(&outputFormat, "format", "o", "table", "output format: "+strings.Join(formatNames(), ", "))
		cmd.Flags().StringSliceVar(&outputCols, "columns", nil, "columns to show")
		cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit the table header")
		rootCmd.AddCommand(cmd)
	}
}

func formatNames() []string {
	names := formatter.List()
	sort.Strings(names)
	return names
}

func selectFormatter() (formatter.Formatter, formatter.FormatOptions, error) {
	f, ok := formatter.Get(outputFormat)
	if !ok {
		return nil, formatter.FormatOptions{}, fmt.Errorf("unknown format %q (available: %s)", outputFormat, strings.Join(formatNames(), ", "))
	}
	return f, formatter.FormatOptions{Columns: outputCols, NoHeader: noHeader}, nil
}

func runProviders(cmd *cobra.Command, args []string) error {
	f, opts, err := selectFormatter()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	reg, err := catalog.Service(args[0])
	if err != nil {
		return err
	}
	return f.FormatList(cmd.OutOrStdout(), formatter.ProviderView, formatter.ProviderRecords(reg.List()), opts)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	f, opts, err := selectFormatter()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	reg, err := catalog.Service(args[0])
	if err != nil {
		return err
	}

	info, err := reg.Info(args[1], catalog.Cache, provider.OnSkip(func(name string, err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", name, err)
	}))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tabular := f.Name() == "table"

	if len(args) == 3 {
		desc, ok := info.SupportedMethods[args[2]]
		if !ok {
			return fmt.Errorf("%w: %s", method.ErrUnknownMethod, args[2])
		}
		if !tabular {
			return f.FormatRecord(out, formatter.MethodView, formatter.MethodRecord(desc), opts)
		}
		if err := f.FormatRecord(out, formatter.MethodView, formatter.MethodRecord(desc), formatter.FormatOptions{}); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return f.FormatList(out, formatter.ArgumentView, formatter.ArgumentRecords(desc), opts)
	}

	record := formatter.DriverRecord(info)
	if !tabular {
		record["supported_methods"] = formatter.MethodRecords(info)
		return f.FormatRecord(out, formatter.DriverView, record, opts)
	}
	if err := f.FormatRecord(out, formatter.DriverView, record, formatter.FormatOptions{}); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return f.FormatList(out, formatter.MethodView, formatter.MethodRecords(info), opts)
}
