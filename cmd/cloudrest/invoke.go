package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/artpar/cloudrest/core/apierror"
	"github.com/artpar/cloudrest/core/filter"
	"github.com/artpar/cloudrest/core/invoke"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/provider"
)

var (
	invokeData    string
	invokeFilter  string
	invokeTimeout time.Duration
	invokeCreds   = map[string]*string{}
	invokePort    int
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <service> <provider> <method>",
	Short: "Call a driver method with a JSON document",
	Long: `Call one method of a provider driver.

The JSON document holds the method arguments. Use --data @file to read it
from a file or --data - to read it from stdin. Credentials are passed to the
driver constructor. --secret - prompts for the secret without echo.

--filter keeps the elements of a list result for which the expression is
true. Object fields are variables, e.g. 'state == "running"'.

On failure the classified error document is printed to stderr.

Examples:
  cloudrest invoke compute dummy list_nodes --creds 2
  cloudrest invoke compute dummy list_nodes --creds 5 --filter 'name endsWith "3"'
  cloudrest invoke dns dummy create_zone --key user --secret s3cr3t \
      --data '{"domain": "example.com"}'`,
	Args: cobra.ExactArgs(3),
	RunE: runInvoke,
}

func init() {
	rootCmd.AddCommand(invokeCmd)

	invokeCmd.Flags().StringVarP(&invokeData, "data", "d", "", "JSON argument document, @file or - for stdin")
	invokeCmd.Flags().StringVar(&invokeFilter, "filter", "", "expression selecting elements of a list result")
	invokeCmd.Flags().DurationVar(&invokeTimeout, "timeout", 60*time.Second, "call timeout")
	for _, arg := range []string{"key", "secret", "path", "host", "creds"} {
		header := provider.ArgumentHeaders[arg]
		invokeCreds[arg] = invokeCmd.Flags().String(arg, "", fmt.Sprintf("driver %s (header %s)", arg, header))
	}
	invokeCmd.Flags().IntVar(&invokePort, "port", 0, "driver port (header "+provider.ArgumentHeaders["port"]+")")
}

func runInvoke(cmd *cobra.Command, args []string) error {
	service, providerID, name := args[0], args[1], args[2]

	if invokeData == "-" && invokeCreds["secret"] != nil && *invokeCreds["secret"] == "-" {
		return errors.New("--data - and --secret - both read stdin")
	}

	var f *filter.Filter
	if invokeFilter != "" {
		var err error
		if f, err = filter.Compile(invokeFilter); err != nil {
			return err
		}
	}

	body, err := readData(cmd.InOrStdin(), invokeData)
	if err != nil {
		return err
	}
	creds, err := credentialFlags(cmd)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	reg, err := catalog.Service(service)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), invokeTimeout)
	defer cancel()

	result, err := call(ctx, catalog.Cache, reg, providerID, name, creds, body)
	if err != nil {
		e := apierror.From(err)
		cmd.ErrOrStderr().Write(e.ToJSON())
		fmt.Fprintln(cmd.ErrOrStderr())
		return fmt.Errorf("%s failed: %s", name, e.Name)
	}

	if f != nil {
		if result, err = applyFilter(f, result); err != nil {
			return err
		}
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(result)
	}
	pretty.WriteByte('\n')
	_, err = pretty.WriteTo(cmd.OutOrStdout())
	return err
}

func call(ctx context.Context, cache *method.Cache, reg *provider.Registry, providerID, name string, creds map[string]any, body []byte) ([]byte, error) {
	d, err := reg.Get(providerID)
	if err != nil {
		return nil, err
	}
	driver, err := provider.Connect(ctx, cache, d, creds)
	if err != nil {
		return nil, err
	}
	s, err := cache.Get(d.Type, name)
	if err != nil {
		return nil, err
	}
	return invoke.Invoke(ctx, s, driver, body)
}

func credentialFlags(cmd *cobra.Command) (map[string]any, error) {
	creds := make(map[string]any)
	for arg, v := range invokeCreds {
		if cmd.Flags().Changed(arg) {
			creds[arg] = *v
		}
	}
	if creds["secret"] == "-" {
		secret, err := promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Secret: ")
		if err != nil {
			return nil, err
		}
		creds["secret"] = secret
	}
	if cmd.Flags().Changed("port") {
		creds["port"] = invokePort
	}
	return creds, nil
}

// promptSecret reads a secret without echo when in is a terminal, and a
// single line otherwise.
func promptSecret(in io.Reader, out io.Writer, label string) (string, error) {
	if file, ok := in.(*os.File); ok {
		fd := int(file.Fd())
		if term.IsTerminal(fd) {
			fmt.Fprint(out, label)
			secret, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			if err != nil {
				return "", fmt.Errorf("read secret: %w", err)
			}
			return string(secret), nil
		}
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func applyFilter(f *filter.Filter, result []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(result, &v); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	kept, err := f.Apply(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(kept)
}

func readData(stdin io.Reader, data string) ([]byte, error) {
	switch {
	case data == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("read data: %w", err)
		}
		return b, nil
	}
	return []byte(data), nil
}
