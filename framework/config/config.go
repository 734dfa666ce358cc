package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the typed configuration of an application built on the container.
type Config struct {
	App       AppConfig
	Log       LogConfig
	Inspector InspectorConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string
}

type LogConfig struct {
	Level string // debug | info | warn | error
}

type InspectorConfig struct {
	Enabled bool
	Prefix  string
}

// Env is a key-value source made of .env files overlaid by the process
// environment. It satisfies container.Environment.
//
// Unlike godotenv.Load it never writes to the process environment, so two
// Envs loaded from different files can coexist (one per container scope).
type Env struct {
	file map[string]string
}

// LoadEnv reads the given .env files (".env" when none are given). Missing or
// unreadable files are skipped: .env may not exist in production.
func LoadEnv(envFiles ...string) *Env {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	merged := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if err != nil {
			continue
		}
		// Earlier files win, like godotenv.Load.
		for k, v := range values {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return &Env{file: merged}
}

// Lookup returns the process value for key when set and non-blank, else the
// .env value.
func (e *Env) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	v, ok := e.file[key]
	return v, ok
}

// Get returns the value for key, falling back to defaultVal when unset or empty.
func (e *Env) Get(key, defaultVal string) string {
	if v, ok := e.Lookup(key); ok && v != "" {
		return v
	}
	return defaultVal
}

// GetInt returns an int value, falling back to defaultVal when unset or invalid.
func (e *Env) GetInt(key string, defaultVal int) int {
	v, ok := e.Lookup(key)
	if !ok || v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool value, falling back to defaultVal when unset or invalid.
func (e *Env) GetBool(key string, defaultVal bool) bool {
	v, ok := e.Lookup(key)
	if !ok || v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// Load reads .env files and builds a Config.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	return FromEnv(LoadEnv(envFiles...))
}

// FromEnv builds a Config from an already loaded Env.
func FromEnv(e *Env) *Config {
	return &Config{
		App: AppConfig{
			Name:  e.Get("APP_NAME", "GoContainer"),
			Env:   e.Get("APP_ENV", "local"),
			Debug: e.GetBool("APP_DEBUG", true),
			Port:  e.Get("APP_PORT", "8000"),
		},
		Log: LogConfig{
			Level: e.Get("LOG_LEVEL", "info"),
		},
		Inspector: InspectorConfig{
			Enabled: e.GetBool("INSPECTOR_ENABLED", true),
			Prefix:  e.Get("INSPECTOR_PREFIX", "/_container"),
		},
	}
}
