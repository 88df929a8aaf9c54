package provider

import (
	"fmt"
	"strings"

	"github.com/artpar/cloudrest/core/entry"
)

// HeaderArguments maps credential request headers to constructor argument
// names. Header names are lower case.
var HeaderArguments = map[string]string{
	"x-auth-user":     "key",
	"x-api-key":       "secret",
	"x-provider-path": "path",
	"x-provider-port": "port",
	"x-provider-host": "host",
	"x-dummy-creds":   "creds",
}

// ArgumentHeaders is the inverse of HeaderArguments.
var ArgumentHeaders = func() map[string]string {
	m := make(map[string]string, len(HeaderArguments))
	for h, arg := range HeaderArguments {
		m[arg] = h
	}
	return m
}()

func headerName(arg string) string {
	if h, ok := ArgumentHeaders[arg]; ok {
		return h
	}
	return arg
}

// MissingHeadersError lists credential headers the constructor requires.
type MissingHeadersError struct {
	Alternatives [][]string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing headers: %s", e.Headers())
}

// Headers renders the alternatives, e.g. "x-auth-user, x-api-key or x-provider-host".
func (e *MissingHeadersError) Headers() string {
	parts := make([]string, 0, len(e.Alternatives))
	for _, set := range e.Alternatives {
		parts = append(parts, strings.Join(set, ", "))
	}
	return strings.Join(parts, " or ")
}

func missingHeaders(err *entry.MissingArgumentsError) *MissingHeadersError {
	out := &MissingHeadersError{}
	for _, set := range err.Alternatives {
		headers := make([]string, len(set))
		for i, arg := range set {
			headers[i] = headerName(arg)
		}
		out.Alternatives = append(out.Alternatives, headers)
	}
	return out
}

// UnknownHeadersError lists credential headers the constructor does not take.
type UnknownHeadersError struct {
	Headers []string
}

func (e *UnknownHeadersError) Error() string {
	return fmt.Sprintf("unknown headers: %s", strings.Join(e.Headers, ", "))
}
