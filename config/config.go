// Package config provides the configuration layer for foyer applications:
// a single Provider interface over file-based configuration (TOML, YAML or
// JSON), environment variable overrides and hot reload of the backing file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Provider is what application code depends on. Keys are dot-separated
// ("server.read_timeout"); lookups descend into nested maps produced by the
// file parsers.
type Provider interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string
	Set(key string, value any)
	Has(key string) bool
	AllSettings() map[string]any

	// AddChangeListener registers a callback invoked after the backing file
	// is reloaded. The callback must not block; it runs on the watch
	// goroutine.
	AddChangeListener(listener func())

	// Unmarshal decodes the subtree at key (the whole tree when key is
	// empty) into v.
	Unmarshal(key string, v any) error
}

// Configuration implements Provider. Values merge in order: defaults, then
// the config file, then environment variables — later sources win.
type Configuration struct {
	data       map[string]any
	envPrefix  string
	configFile string
	fileFormat string
	watcher    *fsnotify.Watcher
	listeners  []func()
	mu         sync.RWMutex
}

// Option configures a Configuration during construction.
type Option func(*Configuration)

// WithEnvPrefix sets the prefix selecting which environment variables are
// merged in. With prefix "APP_", APP_SERVER_ADDR becomes key "server.addr".
func WithEnvPrefix(prefix string) Option {
	return func(c *Configuration) {
		c.envPrefix = prefix
	}
}

// WithConfigFile sets the backing file; the format is inferred from the
// extension.
func WithConfigFile(file string) Option {
	return func(c *Configuration) {
		c.configFile = file
		switch strings.ToLower(filepath.Ext(file)) {
		case ".yaml", ".yml":
			c.fileFormat = "yaml"
		case ".json":
			c.fileFormat = "json"
		case ".toml":
			c.fileFormat = "toml"
		default:
			c.fileFormat = "unknown"
		}
	}
}

// WithDefaults seeds values that file and environment may override.
func WithDefaults(defaults map[string]any) Option {
	return func(c *Configuration) {
		for k, v := range defaults {
			c.data[k] = v
		}
	}
}

// New builds a Configuration, performs the initial load and, when a config
// file is set, starts watching it for changes.
func New(options ...Option) (*Configuration, error) {
	c := &Configuration{
		data: make(map[string]any),
	}
	for _, opt := range options {
		opt(c)
	}

	if err := c.Load(); err != nil {
		return nil, err
	}

	if c.configFile != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("config: cannot create file watcher: %w", err)
		}
		c.watcher = watcher
		go c.watchConfigFile()
	}

	return c, nil
}

// Load re-reads the config file (if any) and the environment on top of the
// current data.
func (c *Configuration) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.configFile != "" {
		if err := c.loadConfigFile(); err != nil {
			return err
		}
	}
	c.loadEnvironmentVariables()
	return nil
}

// Close stops the file watcher.
func (c *Configuration) Close() error {
	if c.watcher == nil {
		return nil
	}
	return c.watcher.Close()
}

func (c *Configuration) loadConfigFile() error {
	data, err := os.ReadFile(c.configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: cannot read %s: %w", c.configFile, err)
	}

	var parsed map[string]any
	switch c.fileFormat {
	case "yaml":
		err = yaml.Unmarshal(data, &parsed)
	case "json":
		err = json.Unmarshal(data, &parsed)
	case "toml":
		err = toml.Unmarshal(data, &parsed)
	default:
		return fmt.Errorf("config: unsupported file format %q", c.fileFormat)
	}
	if err != nil {
		return fmt.Errorf("config: cannot parse %s: %w", c.configFile, err)
	}

	for k, v := range parsed {
		c.data[k] = v
	}
	return nil
}

func (c *Configuration) loadEnvironmentVariables() {
	if c.envPrefix == "" {
		return
	}
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, c.envPrefix) {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], c.envPrefix))
		key = strings.ReplaceAll(key, "_", ".")
		c.data[key] = parts[1]
	}
}

func (c *Configuration) watchConfigFile() {
	if err := c.watcher.Add(filepath.Dir(c.configFile)); err != nil {
		return
	}
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && filepath.Clean(event.Name) == filepath.Clean(c.configFile) {
				if err := c.Load(); err != nil {
					continue
				}
				c.notifyListeners()
			}
		case _, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (c *Configuration) notifyListeners() {
	c.mu.RLock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, listener := range listeners {
		listener()
	}
}

// AddChangeListener registers a reload callback.
func (c *Configuration) AddChangeListener(listener func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Get resolves a dot-separated key, descending into nested maps.
func (c *Configuration) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if value, ok := c.data[key]; ok {
		return value, true
	}

	parts := strings.Split(key, ".")
	current := c.data
	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		nested, ok := toStringMap(v)
		if !ok {
			return nil, false
		}
		current = nested
	}
	return nil, false
}

// Set writes a value under the literal key.
func (c *Configuration) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Has reports whether a key resolves.
func (c *Configuration) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// AllSettings returns a shallow copy of the top-level tree.
func (c *Configuration) AllSettings() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

func (c *Configuration) GetString(key string) string {
	value, ok := c.Get(key)
	if !ok {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", value)
}

func (c *Configuration) GetInt(key string) int {
	value, ok := c.Get(key)
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return 0
}

func (c *Configuration) GetBool(key string) bool {
	value, ok := c.Get(key)
	if !ok {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.ToLower(v) == "true" || v == "1"
	case int:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

// GetDuration parses strings with time.ParseDuration; bare numbers are
// taken as seconds.
func (c *Configuration) GetDuration(key string) time.Duration {
	value, ok := c.Get(key)
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case time.Duration:
		return v
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v) * time.Second
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 0
}

func (c *Configuration) GetStringSlice(key string) []string {
	value, ok := c.Get(key)
	if !ok {
		return nil
	}
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, len(v))
		for i, val := range v {
			result[i] = fmt.Sprintf("%v", val)
		}
		return result
	}
	return nil
}

// Unmarshal decodes the subtree at key into v using mapstructure, with
// string→duration conversion enabled so "30s" decodes into a
// time.Duration field.
func (c *Configuration) Unmarshal(key string, v any) error {
	var source any
	if key == "" {
		source = c.AllSettings()
	} else {
		val, ok := c.Get(key)
		if !ok {
			return fmt.Errorf("config: key %q not found", key)
		}
		source = val
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(source)
}

// toStringMap normalizes the nested map types the different parsers
// produce.
func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out, true
	}
	return nil, false
}
