// Package provider keeps the provider drivers of each service and describes
// them for introspection.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/invoke"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/target"
)

var (
	ErrProviderNotSupported = errors.New("provider is not supported")
	ErrDuplicateProvider    = errors.New("provider already registered")
	ErrNotAService          = errors.New("driver type does not descend from the service type")
)

// NotSupportedError reports an unknown provider id.
type NotSupportedError struct {
	Provider string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("provider %s is not supported", e.Provider)
}

func (e *NotSupportedError) Is(target error) bool {
	return target == ErrProviderNotSupported
}

// Driver is a provider implementation of a service.
type Driver struct {
	ID      string
	Name    string
	Website string
	// Type descends from the service base type and declares the
	// constructor taking the provider credentials.
	Type *target.Type
}

// Summary is the listing form of a driver.
type Summary struct {
	ID           string `json:"id" yaml:"id"`
	FriendlyName string `json:"friendly_name" yaml:"friendly_name"`
	Website      string `json:"website" yaml:"website"`
}

// Registry holds the drivers of one service.
type Registry struct {
	mu sync.RWMutex

	service string
	base    *target.Type
	drivers map[string]Driver
}

// New creates a registry for service whose drivers descend from base.
func New(service string, base *target.Type) *Registry {
	return &Registry{
		service: service,
		base:    base,
		drivers: make(map[string]Driver),
	}
}

// Service returns the service name.
func (r *Registry) Service() string {
	return r.service
}

// Base returns the service base type.
func (r *Registry) Base() *target.Type {
	return r.base
}

// Register adds a driver. Ids are case-insensitive.
func (r *Registry) Register(d Driver) error {
	if d.Type == nil || !d.Type.Is(r.base) {
		return fmt.Errorf("%w: %s", ErrNotAService, d.ID)
	}
	id := strings.ToUpper(d.ID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[id]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateProvider, r.service, id)
	}
	d.ID = id
	r.drivers[id] = d
	return nil
}

// Get returns the driver with the given id.
func (r *Registry) Get(id string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[strings.ToUpper(id)]
	if !ok {
		return Driver{}, &NotSupportedError{Provider: strings.ToUpper(id)}
	}
	return d, nil
}

// List returns the registered drivers sorted by id.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.drivers))
	for _, d := range r.drivers {
		out = append(out, Summary{ID: d.ID, FriendlyName: d.Name, Website: d.Website})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Info is the introspection form of a driver.
type Info struct {
	Name             string                        `json:"name" yaml:"name"`
	Website          string                        `json:"website" yaml:"website"`
	Headers          []entry.Argument              `json:"X-headers" yaml:"X-headers"`
	SupportedMethods map[string]method.Description `json:"supported_methods" yaml:"supported_methods"`
}

// InfoOption configures Info.
type InfoOption func(*infoConfig)

type infoConfig struct {
	onSkip func(method string, err error)
}

// OnSkip reports methods left out of the description because their schema
// does not build.
func OnSkip(fn func(method string, err error)) InfoOption {
	return func(c *infoConfig) { c.onSkip = fn }
}

// Info describes the driver id: its credential headers and every public
// method whose schema builds.
func (r *Registry) Info(id string, cache *method.Cache, opts ...InfoOption) (*Info, error) {
	var cfg infoConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	d, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Name:             d.Name,
		Website:          d.Website,
		Headers:          []entry.Argument{},
		SupportedMethods: make(map[string]method.Description),
	}
	for _, name := range d.Type.Methods() {
		s, err := cache.Get(d.Type, name)
		if err != nil {
			if cfg.onSkip != nil {
				cfg.onSkip(name, err)
			}
			continue
		}
		info.SupportedMethods[name] = s.Describe()
	}

	ctor, err := cache.Get(d.Type, target.Constructor)
	if err != nil {
		return nil, err
	}
	for _, arg := range ctor.Describe().Arguments {
		if h, ok := ArgumentHeaders[arg.Name]; ok {
			arg.Name = h
		}
		info.Headers = append(info.Headers, arg)
	}
	return info, nil
}

// Connect builds a driver instance by running its constructor with the
// given credentials, keyed by constructor argument name.
func Connect(ctx context.Context, cache *method.Cache, d Driver, creds map[string]any) (any, error) {
	s, err := cache.Get(d.Type, target.Constructor)
	if err != nil {
		return nil, err
	}

	accepted := make(map[string]bool)
	for _, e := range s.Entries() {
		for _, a := range e.Arguments() {
			accepted[a.Name] = true
		}
	}
	var unknown []string
	for name := range creds {
		if !accepted[name] {
			unknown = append(unknown, headerName(name))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownHeadersError{Headers: unknown}
	}

	instance, err := invoke.Call(ctx, s, nil, entry.Document(creds))
	if err != nil {
		var missing *entry.MissingArgumentsError
		if errors.As(err, &missing) {
			return nil, missingHeaders(missing)
		}
		return nil, err
	}
	return instance, nil
}
