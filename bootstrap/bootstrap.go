// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/artpar/cloudrest/adapters/clock"
	"github.com/artpar/cloudrest/adapters/hasher"
	apihttp "github.com/artpar/cloudrest/adapters/http"
	"github.com/artpar/cloudrest/adapters/memory"
	"github.com/artpar/cloudrest/adapters/metrics"
	"github.com/artpar/cloudrest/adapters/sqlite"
	"github.com/artpar/cloudrest/config"
	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/openapi"
	"github.com/artpar/cloudrest/core/provider"
	"github.com/artpar/cloudrest/domain/compute"
	"github.com/artpar/cloudrest/domain/dns"
	"github.com/artpar/cloudrest/domain/loadbalancer"
	"github.com/artpar/cloudrest/domain/storage"
)

// APIVersion is reported by the index endpoint.
const APIVersion = "0.1"

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	Catalog    *Catalog
	Metrics    *metrics.Collector
	OpenAPI    *openapi.Service
	HTTPServer *http.Server

	holder *config.Holder
}

// Options provides optional configuration for application initialization.
type Options struct {
	// ConfigPath names the YAML configuration. When the file does not
	// exist the configuration comes from CLOUDREST_* variables.
	ConfigPath string

	// HotReload watches ConfigPath and SIGHUP for changes.
	HotReload bool

	// Output receives log lines, os.Stdout if nil.
	Output io.Writer

	// Registerer receives the metrics, the default registry if nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	var (
		cfg    *config.Config
		holder *config.Holder
		err    error
	)
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if opts.HotReload && opts.ConfigPath != "" {
		if _, statErr := os.Stat(opts.ConfigPath); statErr == nil {
			// The logger depends on the loaded configuration and is handed
			// to the holder once built.
			holder, err = config.NewHolder(opts.ConfigPath, zerolog.Nop())
			if err != nil {
				return nil, err
			}
			cfg = holder.Get()
		}
	}
	if cfg == nil {
		cfg, err = config.LoadWithFallback(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	logger := SetupLogger(cfg.Logging, out)
	if holder != nil {
		holder.SetLogger(logger.With().Str("component", "config").Logger())
	}
	logger.Info().Strs("services", cfg.Providers.Services).Msg("initializing cloudrest")

	a := &App{
		Logger: logger,
		Config: cfg,
		holder: holder,
	}

	var cacheOpts []method.CacheOption
	if cfg.Metrics.Enabled {
		reg := opts.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		a.Metrics = metrics.NewWithRegistry(reg)
		cacheOpts = append(cacheOpts, method.WithObserver(a.Metrics.ObserveSchemaBuild))
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	a.Catalog, err = NewCatalog(cfg, cacheOpts...)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	if cfg.OpenAPI.Enabled {
		a.OpenAPI = openapi.NewService(openapi.ServiceConfig{
			Generator: openapi.NewGenerator(a.Catalog.Cache, a.Catalog.Services...),
			Logger:    logger,
		})
	}

	a.initHTTPServer(opts.Gatherer)

	if holder != nil {
		a.watchConfig()
	}

	return a, nil
}

func (a *App) initHTTPServer(gatherer prometheus.Gatherer) {
	cfg := a.Config

	var metricsHandler http.Handler
	if gatherer != nil {
		metricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	router := apihttp.NewRouter(apihttp.RouterConfig{
		Cache:          a.Catalog.Cache,
		Services:       a.Catalog.Services,
		Logger:         a.Logger,
		APIVersion:     APIVersion,
		Metrics:        a.Metrics,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		OpenAPI:        a.OpenAPI,
	})

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// watchConfig applies reloadable settings when the configuration changes.
func (a *App) watchConfig() {
	a.holder.OnChange(func(cfg *config.Config) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
		}
		level, err := zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return
		}
		zerolog.SetGlobalLevel(level)
		a.Logger.Info().Str("level", level.String()).Msg("log level applied")
	})

	if err := a.holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	a.holder.WatchSignals()
}

// Handler returns the HTTP handler of the application.
func (a *App) Handler() http.Handler {
	return a.HTTPServer.Handler
}

// Run starts the HTTP server and blocks until it fails or the process is
// interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve runs the HTTP server until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.Logger.Info().Msg("shutting down")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
		a.holder = nil
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if err := sqlite.CloseAll(); err != nil {
		a.Logger.Error().Err(err).Msg("database close error")
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// Catalog holds the type tag registry, the schema cache and one provider
// registry per served service.
type Catalog struct {
	Entries  *entry.Registry
	Cache    *method.Cache
	Services []*provider.Registry
}

// Service returns the provider registry of a served service.
func (c *Catalog) Service(name string) (*provider.Registry, error) {
	for _, reg := range c.Services {
		if reg.Service() == name {
			return reg, nil
		}
	}
	return nil, fmt.Errorf("service %q is not served", name)
}

// NewCatalog registers the entries of every service and the providers of
// the services enabled by cfg.
func NewCatalog(cfg *config.Config, opts ...method.CacheOption) (*Catalog, error) {
	entries := entry.New()
	for _, register := range []func(*entry.Registry) error{
		compute.RegisterEntries,
		dns.RegisterEntries,
		loadbalancer.RegisterEntries,
		storage.RegisterEntries,
	} {
		if err := register(entries); err != nil {
			return nil, fmt.Errorf("register entries: %w", err)
		}
	}
	entries.Freeze()

	c := &Catalog{
		Entries: entries,
		Cache:   method.NewCache(entries, opts...),
	}

	for _, name := range cfg.Providers.Services {
		reg, err := newService(name, cfg)
		if err != nil {
			return nil, err
		}
		c.Services = append(c.Services, reg)
	}
	return c, nil
}

func newService(name string, cfg *config.Config) (*provider.Registry, error) {
	var (
		reg     *provider.Registry
		drivers []provider.Driver
	)
	switch name {
	case "compute":
		reg = provider.New(name, compute.NodeDriver)
		drivers = []provider.Driver{{
			ID:      "DUMMY",
			Name:    "Dummy Node Provider",
			Website: "http://example.com",
			Type:    memory.DummyNodeDriver,
		}}
	case "dns":
		reg = provider.New(name, dns.DNSDriver)
		drivers = []provider.Driver{{
			ID:      "DUMMY",
			Name:    "Dummy DNS Provider",
			Website: "http://example.com",
			Type:    memory.DummyDNSDriver,
		}}
	case "loadbalancer":
		reg = provider.New(name, loadbalancer.LoadBalancerDriver)
		drivers = []provider.Driver{{
			ID:      "DUMMY",
			Name:    "Dummy Load Balancer",
			Website: "http://example.com",
			Type:    memory.DummyLBDriver,
		}}
	case "storage":
		reg = provider.New(name, storage.StorageDriver)
		drivers = []provider.Driver{{
			ID:      sqlite.ProviderID,
			Name:    "SQLite Storage",
			Website: "https://sqlite.org",
			Type: sqlite.NewDriverType(sqlite.Options{
				DefaultPath:  cfg.Storage.Path,
				MaxDatabases: cfg.Storage.MaxDatabases,
				Hasher:       hasher.Blake2b{},
				Clock:        clock.UTC{},
			}),
		}}
	default:
		return nil, fmt.Errorf("unknown service %q", name)
	}

	for _, d := range drivers {
		if err := reg.Register(d); err != nil {
			return nil, fmt.Errorf("register %s provider %s: %w", name, d.ID, err)
		}
	}
	return reg, nil
}

// SetupLogger builds the process logger and sets the global level.
func SetupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
