package openapi

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Service serves generated specs. Provider registries do not change after
// startup, so each spec is generated once and cloned per request with the
// caller's server URL.
type Service struct {
	gen    *Generator
	logger zerolog.Logger

	mu        sync.Mutex
	full      *Spec
	providers map[string]*Spec // "service/PROVIDER" -> spec
}

// ServiceConfig contains configuration for the OpenAPI service.
type ServiceConfig struct {
	Generator *Generator
	Logger    zerolog.Logger
}

// NewService creates a new OpenAPI service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		gen:       cfg.Generator,
		logger:    cfg.Logger,
		providers: make(map[string]*Spec),
	}
}

// Spec returns the document of every provider with baseURL as its server.
func (s *Service) Spec(baseURL string) (*Spec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.full == nil {
		spec, err := s.gen.Generate()
		if err != nil {
			return nil, err
		}
		s.logger.Debug().Int("paths", len(spec.Paths)).Msg("OpenAPI spec generated")
		s.full = spec
	}
	return s.cloneSpecWithServer(s.full, baseURL), nil
}

// ProviderSpec returns the document of one provider.
func (s *Service) ProviderSpec(service, id, baseURL string) (*Spec, error) {
	key := service + "/" + strings.ToUpper(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	spec, ok := s.providers[key]
	if !ok {
		var err error
		spec, err = s.gen.GenerateProvider(service, id)
		if err != nil {
			return nil, err
		}
		s.providers[key] = spec
	}
	return s.cloneSpecWithServer(spec, baseURL), nil
}

// InvalidateCache forces the next call to regenerate.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.full = nil
	s.providers = make(map[string]*Spec)
	s.logger.Debug().Msg("OpenAPI cache invalidated")
}

// cloneSpecWithServer creates a copy of the spec with the given server URL.
func (s *Service) cloneSpecWithServer(spec *Spec, baseURL string) *Spec {
	data, err := json.Marshal(spec)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to clone OpenAPI spec")
		return spec
	}

	var cloned Spec
	if err := json.Unmarshal(data, &cloned); err != nil {
		s.logger.Error().Err(err).Msg("Failed to unmarshal cloned OpenAPI spec")
		return spec
	}

	if baseURL == "" {
		return &cloned
	}
	if len(cloned.Servers) > 0 {
		cloned.Servers[0].URL = baseURL
	} else {
		cloned.Servers = []Server{{URL: baseURL, Description: "Current server"}}
	}
	return &cloned
}
