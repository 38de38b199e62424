package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ConfigManager loads the configuration once at startup.
//
// Precedence (highest first): process environment, .env files, config file,
// built-in defaults.
type ConfigManager struct {
	path     string
	envFiles []string
	lookup   func(string) (string, bool)

	cfg *Config
}

func NewConfigManager(path string) *ConfigManager {
	return &ConfigManager{path: path, lookup: os.LookupEnv}
}

// SetEnvFiles sets the dotenv files to read. Missing files are ignored.
func (m *ConfigManager) SetEnvFiles(files ...string) { m.envFiles = files }

// SetLookupEnv replaces os.LookupEnv (tests).
func (m *ConfigManager) SetLookupEnv(fn func(string) (string, bool)) {
	if fn == nil {
		fn = os.LookupEnv
	}
	m.lookup = fn
}

// Parse reads and strictly decodes the config file.
// An empty path yields Default().
func (m *ConfigManager) Parse() (*Config, error) {
	if strings.TrimSpace(m.path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	jb, format, err := coerceToJSONBytes(m.path, b)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%s config %s: %w", format, m.path, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	return cfg, nil
}

// Load parses the file and applies dotenv files and the environment.
// It does not validate; call Validate before using the result.
func (m *ConfigManager) Load() (*Config, error) {
	cfg, err := m.Parse()
	if err != nil {
		return nil, err
	}
	dotenv, err := readEnvFiles(m.envFiles)
	if err != nil {
		return nil, err
	}
	lookup := m.lookup
	ApplyEnv(cfg, func(k string) (string, bool) {
		// an empty process variable does not hide the dotenv value
		if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
		v, ok := dotenv[k]
		return v, ok
	})
	m.cfg = cfg
	return cfg, nil
}

func (m *ConfigManager) Get() *Config { return m.cfg }

func readEnvFiles(files []string) (map[string]string, error) {
	out := map[string]string{}
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("env file %s: %w", f, err)
		}
		// earlier files win, like godotenv.Load
		for k, v := range vals {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}
