// Package config provides configuration loading and hot reload.
package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// setting is one configuration key compared across reloads.
type setting struct {
	name       string
	reloadable bool
	value      func(*Config) string
}

var settings = []setting{
	{"server.host", false, func(c *Config) string { return c.Server.Host }},
	{"server.port", false, func(c *Config) string { return strconv.Itoa(c.Server.Port) }},
	{"server.read_timeout", false, func(c *Config) string { return c.Server.ReadTimeout.String() }},
	{"server.write_timeout", false, func(c *Config) string { return c.Server.WriteTimeout.String() }},
	{"logging.level", true, func(c *Config) string { return c.Logging.Level }},
	{"logging.format", false, func(c *Config) string { return c.Logging.Format }},
	{"metrics.enabled", false, func(c *Config) string { return strconv.FormatBool(c.Metrics.Enabled) }},
	{"metrics.path", false, func(c *Config) string { return c.Metrics.Path }},
	{"openapi.enabled", false, func(c *Config) string { return strconv.FormatBool(c.OpenAPI.Enabled) }},
	{"storage.path", false, func(c *Config) string { return c.Storage.Path }},
	{"storage.max_databases", false, func(c *Config) string { return strconv.Itoa(c.Storage.MaxDatabases) }},
	{"providers.services", false, func(c *Config) string { return strings.Join(c.Providers.Services, ",") }},
}

// ReloadableFields returns the settings applied without a restart.
func ReloadableFields() []string {
	return settingNames(true)
}

// NonReloadableFields returns the settings that need a restart to apply.
func NonReloadableFields() []string {
	return settingNames(false)
}

func settingNames(reloadable bool) []string {
	var names []string
	for _, s := range settings {
		if s.reloadable == reloadable {
			names = append(names, s.name)
		}
	}
	return names
}

// Changed returns the names of the settings that differ between prev and next.
func Changed(prev, next *Config) []string {
	var names []string
	for _, s := range settings {
		if s.value(prev) != s.value(next) {
			names = append(names, s.name)
		}
	}
	return names
}

// Holder keeps the current configuration and replaces it when the file
// changes or the process receives SIGHUP. Listeners run after every reload
// that changes a setting.
type Holder struct {
	path string

	mu        sync.RWMutex
	current   *Config
	logger    zerolog.Logger
	listeners []func(*Config)

	watcher  *fsnotify.Watcher
	stop     chan struct{}
	stopOnce sync.Once
}

// NewHolder loads path and returns a holder for it.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	return &Holder{
		path:    abs,
		current: cfg,
		logger:  logger,
		stop:    make(chan struct{}),
	}, nil
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// SetLogger replaces the logger, typically once the logger described by the
// loaded configuration exists.
func (h *Holder) SetLogger(logger zerolog.Logger) {
	h.mu.Lock()
	h.logger = logger
	h.mu.Unlock()
}

func (h *Holder) log() *zerolog.Logger {
	h.mu.RLock()
	defer h.mu.RUnlock()
	l := h.logger
	return &l
}

// OnChange registers fn to run after each effective reload.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Reload reads the file again. An invalid file keeps the current
// configuration and returns the error.
func (h *Holder) Reload() error {
	next, err := Load(h.path)
	if err != nil {
		h.log().Error().Err(err).Str("path", h.path).Msg("config reload failed, keeping current config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	listeners := append(([]func(*Config))(nil), h.listeners...)
	h.mu.Unlock()

	changed := Changed(prev, next)
	if len(changed) == 0 {
		h.log().Debug().Str("path", h.path).Msg("config reloaded, nothing changed")
		return nil
	}
	h.report(prev, next, changed)

	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// report logs every changed setting. Settings that only apply at startup
// are logged as warnings.
func (h *Holder) report(prev, next *Config, changed []string) {
	logger := h.log()
	for _, name := range changed {
		for _, s := range settings {
			if s.name != name {
				continue
			}
			if s.reloadable {
				logger.Info().Str("setting", name).Str("old", s.value(prev)).Str("new", s.value(next)).
					Msg("setting changed")
			} else {
				logger.Warn().Str("setting", name).Str("old", s.value(prev)).Str("new", s.value(next)).
					Msg("setting changed, restart required")
			}
		}
	}
}

// WatchFile reloads the configuration when its file is written or
// replaced. The directory is watched so that editors saving through a
// rename are noticed.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.watcher = watcher

	go h.watch(watcher)
	h.log().Info().Str("path", h.path).Msg("watching config file")
	return nil
}

func (h *Holder) watch(w *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Name != h.path && filepath.Base(event.Name) != filepath.Base(h.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			_ = h.Reload()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.log().Error().Err(err).Msg("config watcher error")
		case <-h.stop:
			return
		}
	}
}

// WatchSignals reloads the configuration on SIGHUP.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				h.log().Info().Msg("SIGHUP received, reloading config")
				_ = h.Reload()
			case <-h.stop:
				return
			}
		}
	}()
}

// Stop ends file and signal watching. It is safe to call more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}
