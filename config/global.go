package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	globalConfig Provider
	once         sync.Once
)

// Init builds the process-wide Provider. Subsequent calls are no-ops; the
// first configuration wins.
func Init(options ...Option) error {
	var err error
	once.Do(func() {
		var c *Configuration
		c, err = New(options...)
		if err != nil {
			return
		}
		globalConfig = c
	})
	return err
}

// Get returns the process-wide Provider, initializing an empty one if Init
// was never called.
func Get() Provider {
	if globalConfig == nil {
		_ = Init()
	}
	return globalConfig
}

// AutoInit locates a config file in the conventional spots (./, ./configs,
// ./conf — yaml, json or toml) and initializes the global provider with it,
// using strings.ToUpper(appName)+"_" as the environment prefix.
func AutoInit(appName string) error {
	candidates := make([]string, 0, 12)
	for _, dir := range []string{".", "configs", "conf"} {
		for _, name := range []string{"config.yaml", "config.yml", "config.json", "config.toml"} {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	options := []Option{WithEnvPrefix(strings.ToUpper(appName) + "_")}
	for _, file := range candidates {
		if fileExists(file) {
			options = append(options, WithConfigFile(file))
			break
		}
	}
	return Init(options...)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
