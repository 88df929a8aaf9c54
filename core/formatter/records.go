package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/provider"
)

// Views of the records built below.
var (
	ProviderView = View{
		Name:    "provider",
		Columns: []string{"id", "friendly_name", "website"},
	}
	DriverView = View{
		Name:    "driver",
		Columns: []string{"name", "website", "headers", "methods"},
	}
	MethodView = View{
		Name:     "method",
		Columns:  []string{"name", "signature", "returns", "summary"},
		Internal: []string{"signature", "summary"},
	}
	ArgumentView = View{
		Name:    "argument",
		Columns: []string{"name", "type", "required", "default", "description"},
	}
)

// ProviderRecords converts a provider listing.
func ProviderRecords(list []provider.Summary) []map[string]any {
	out := make([]map[string]any, len(list))
	for i, s := range list {
		out[i] = map[string]any{
			"id":            s.ID,
			"friendly_name": s.FriendlyName,
			"website":       s.Website,
		}
	}
	return out
}

// DriverRecord converts the description of one driver.
func DriverRecord(info *provider.Info) map[string]any {
	headers := make([]string, len(info.Headers))
	for i, h := range info.Headers {
		headers[i] = h.Name
		if !h.Required {
			headers[i] += "?"
		}
	}
	return map[string]any{
		"name":    info.Name,
		"website": info.Website,
		"headers": headers,
		"methods": len(info.SupportedMethods),
	}
}

// MethodRecords converts the supported methods of a driver, sorted by name.
func MethodRecords(info *provider.Info) []map[string]any {
	names := make([]string, 0, len(info.SupportedMethods))
	for name := range info.SupportedMethods {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]map[string]any, len(names))
	for i, name := range names {
		out[i] = MethodRecord(info.SupportedMethods[name])
	}
	return out
}

// MethodRecord converts one method description.
func MethodRecord(d method.Description) map[string]any {
	args := make([]map[string]any, len(d.Arguments))
	for i, a := range d.Arguments {
		args[i] = argumentRecord(a)
	}
	return map[string]any{
		"name":        d.Name,
		"description": d.Description,
		"arguments":   args,
		"returns":     d.Return.Type,
		"signature":   Signature(d),
		"summary":     firstLine(d.Description),
	}
}

// ArgumentRecords converts the arguments of one method.
func ArgumentRecords(d method.Description) []map[string]any {
	out := make([]map[string]any, len(d.Arguments))
	for i, a := range d.Arguments {
		out[i] = argumentRecord(a)
	}
	return out
}

func argumentRecord(a entry.Argument) map[string]any {
	return map[string]any{
		"name":        a.Name,
		"type":        a.Type,
		"required":    a.Required,
		"default":     a.Default,
		"description": a.Description,
	}
}

// Signature renders the argument list of a method, e.g.
// "node_id: string, [name: string]".
func Signature(d method.Description) string {
	parts := make([]string, len(d.Arguments))
	for i, a := range d.Arguments {
		p := a.Name + ": " + a.Type
		if !a.Required {
			if a.Default != nil {
				p += fmt.Sprintf(" = %v", a.Default)
			}
			p = "[" + p + "]"
		}
		parts[i] = p
	}
	return strings.Join(parts, ", ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
