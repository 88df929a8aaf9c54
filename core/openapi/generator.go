// Package openapi generates OpenAPI 3.0 specifications from provider method
// schemas. Every supported method becomes one POST operation whose request
// body schema is derived from the method arguments.
package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/artpar/cloudrest/core/apierror"
	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/provider"
)

// Spec represents an OpenAPI 3.0 specification.
type Spec struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Servers    []Server            `json:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components"`
	Tags       []Tag               `json:"tags,omitempty"`
}

// Info provides API metadata.
type Info struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version"`
	Contact     *Contact `json:"contact,omitempty"`
	License     *License `json:"license,omitempty"`
}

// Contact provides contact information.
type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

// License provides license information.
type License struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Server represents a server URL.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// PathItem contains operations for a path.
type PathItem struct {
	Get    *Operation `json:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
}

// Operation represents an API operation.
type Operation struct {
	Tags        []string            `json:"tags,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	Description string              `json:"description,omitempty"`
	OperationID string              `json:"operationId,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

// Parameter represents an API parameter.
type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"` // path, query, header
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

// RequestBody represents a request body.
type RequestBody struct {
	Description string               `json:"description,omitempty"`
	Required    bool                 `json:"required,omitempty"`
	Content     map[string]MediaType `json:"content"`
}

// Response represents an API response.
type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType represents a media type.
type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

// Schema represents a JSON Schema.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Format      string             `json:"format,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Default     any                `json:"default,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
}

// Components contains reusable schemas.
type Components struct {
	Schemas map[string]*Schema `json:"schemas,omitempty"`
}

// Tag provides metadata for a group of operations.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Generator generates OpenAPI specs from provider registries.
type Generator struct {
	cache    *method.Cache
	services map[string]*provider.Registry
	info     Info
	servers  []Server
}

// NewGenerator creates a generator describing the given services.
func NewGenerator(cache *method.Cache, services ...*provider.Registry) *Generator {
	g := &Generator{
		cache:    cache,
		services: make(map[string]*provider.Registry, len(services)),
		info: Info{
			Title:       "cloudrest API",
			Version:     "1.0.0",
			Description: "Auto-generated API documentation from provider method schemas",
		},
	}
	for _, s := range services {
		g.services[s.Service()] = s
	}
	return g
}

// SetInfo sets the API info.
func (g *Generator) SetInfo(info Info) {
	g.info = info
}

// AddServer adds a server URL.
func (g *Generator) AddServer(url, description string) {
	g.servers = append(g.servers, Server{
		URL:         url,
		Description: description,
	})
}

// Generate describes every provider of every service.
func (g *Generator) Generate() (*Spec, error) {
	spec := g.newSpec()

	var names []string
	for name := range g.services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		reg := g.services[name]
		for _, p := range reg.List() {
			if err := g.addProvider(spec, reg, p.ID); err != nil {
				return nil, err
			}
		}
	}
	return spec, nil
}

// GenerateProvider describes a single provider.
func (g *Generator) GenerateProvider(service, id string) (*Spec, error) {
	reg, ok := g.services[service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", service)
	}
	spec := g.newSpec()
	if err := g.addProvider(spec, reg, id); err != nil {
		return nil, err
	}
	return spec, nil
}

func (g *Generator) newSpec() *Spec {
	return &Spec{
		OpenAPI: "3.0.3",
		Info:    g.info,
		Servers: g.servers,
		Paths:   make(map[string]PathItem),
		Components: Components{
			Schemas: map[string]*Schema{"Error": errorSchema()},
		},
		Tags: make([]Tag, 0),
	}
}

func (g *Generator) addProvider(spec *Spec, reg *provider.Registry, id string) error {
	info, err := reg.Info(id, g.cache)
	if err != nil {
		return err
	}
	d, err := reg.Get(id)
	if err != nil {
		return err
	}

	tag := reg.Service() + "/" + d.ID
	spec.Tags = append(spec.Tags, Tag{Name: tag, Description: info.Name})

	headers := make([]Parameter, 0, len(info.Headers))
	for _, h := range info.Headers {
		headers = append(headers, Parameter{
			Name:        h.Name,
			In:          "header",
			Description: h.Description,
			Required:    h.Required,
			Schema:      tagSchema(h.Type),
		})
	}

	var names []string
	for name := range info.SupportedMethods {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		desc := info.SupportedMethods[name]
		body := RequestSchema(desc)
		if _, err := Compile(body); err != nil {
			return fmt.Errorf("%s %s.%s: %w", reg.Service(), d.ID, name, err)
		}

		path := "/" + reg.Service() + "/" + d.ID + "/" + name
		spec.Paths[path] = PathItem{Post: &Operation{
			Tags:        []string{tag},
			Summary:     summary(desc.Description),
			Description: desc.Description,
			OperationID: operationID(reg.Service(), d.ID, name),
			Parameters:  headers,
			RequestBody: &RequestBody{
				Required: len(body.Required) > 0,
				Content:  map[string]MediaType{"application/json": {Schema: body}},
			},
			Responses: map[string]Response{
				"200": {
					Description: nonEmpty(desc.Return.Description, "Method result"),
					Content:     map[string]MediaType{"application/json": {Schema: tagSchema(desc.Return.Type)}},
				},
				"default": {
					Description: "Error",
					Content:     map[string]MediaType{"application/json": {Schema: &Schema{Ref: "#/components/schemas/Error"}}},
				},
			},
		}}
	}
	return nil
}

// RequestSchema builds the request body schema of a method: an object with
// one property per argument.
func RequestSchema(desc method.Description) *Schema {
	s := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema, len(desc.Arguments)),
	}
	for _, a := range desc.Arguments {
		p := tagSchema(a.Type)
		p.Description = a.Description
		p.Default = a.Default
		s.Properties[a.Name] = p
		if a.Required {
			s.Required = append(s.Required, a.Name)
		}
	}
	return s
}

// Compile compiles s as a JSON schema.
func Compile(s *Schema) (*jsonschema.Schema, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("request.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("request.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// tagSchema maps a canonical type tag to a schema. Object references and
// unions are described as plain objects named by the tag.
func tagSchema(tag string) *Schema {
	switch tag {
	case entry.TagString:
		return &Schema{Type: "string"}
	case entry.TagInteger:
		return &Schema{Type: "integer"}
	case entry.TagFloat:
		return &Schema{Type: "number"}
	case entry.TagBoolean:
		return &Schema{Type: "boolean"}
	case entry.TagMapping:
		return &Schema{Type: "object"}
	case entry.TagNone:
		return &Schema{Nullable: true, Description: "null"}
	}
	if elem, ok := strings.CutPrefix(tag, entry.ListContainer+" of "); ok {
		return &Schema{Type: "array", Items: tagSchema(elem)}
	}
	return &Schema{Type: "object", Description: tag}
}

func errorSchema() *Schema {
	return &Schema{
		Type:     "object",
		Required: []string{"error"},
		Properties: map[string]*Schema{
			"error": {
				Type:     "object",
				Required: []string{"code", "name", "message"},
				Properties: map[string]*Schema{
					"code":    {Type: "integer", Description: "Error class code"},
					"name":    {Type: "string", Description: "Error class name"},
					"message": {Type: "string"},
					"detail":  {Type: "string"},
				},
			},
		},
		Description: fmt.Sprintf("Classified error, e.g. %d %s", apierror.MissingArguments.Code, apierror.MissingArguments.Name),
	}
}

func summary(description string) string {
	line, _, _ := strings.Cut(description, "\n")
	return strings.TrimSpace(line)
}

func operationID(service, provider, method string) string {
	return service + "_" + strings.ToLower(provider) + "_" + method
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ToJSON converts the spec to JSON.
func (spec *Spec) ToJSON() ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// ToJSONCompact converts the spec to compact JSON.
func (spec *Spec) ToJSONCompact() ([]byte, error) {
	return json.Marshal(spec)
}
