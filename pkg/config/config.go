// Package config reads the assistant configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/hsn/pkg/persistence/middleware"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "hsn.yaml"

// Environment overrides.
const (
	EnvDataFile       = "HSN_DATA_FILE"
	EnvLogLevel       = "HSN_LOG_LEVEL"
	EnvSessionBackend = "HSN_SESSION_BACKEND"
	EnvRedisAddr      = "HSN_REDIS_ADDR"
	EnvRedisPassword  = "HSN_REDIS_PASSWORD"
	EnvMaxInputSize   = "HSN_MAX_INPUT_SIZE"
	EnvSessionKey     = "HSN_SESSION_KEY"
)

type Config struct {
	Data       Data       `yaml:"data" json:"data"`
	Log        Log        `yaml:"log" json:"log"`
	Server     Server     `yaml:"server" json:"server"`
	MCP        MCP        `yaml:"mcp" json:"mcp"`
	Session    Session    `yaml:"session" json:"session"`
	Guardrails Guardrails `yaml:"guardrails" json:"guardrails"`
	Persona    Persona    `yaml:"persona" json:"persona"`
	Metrics    Metrics    `yaml:"metrics" json:"metrics"`
}

// Data describes the reference table source.
type Data struct {
	File              string `yaml:"file" json:"file"`
	Sheet             string `yaml:"sheet" json:"sheet,omitempty"`
	Table             string `yaml:"table" json:"table,omitempty"`
	CodeColumn        string `yaml:"code_column" json:"code_column"`
	DescriptionColumn string `yaml:"description_column" json:"description_column"`
	Watch             bool   `yaml:"watch" json:"watch"`
}

type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type Server struct {
	Port int `yaml:"port" json:"port"`
}

type MCP struct {
	Transport string `yaml:"transport" json:"transport"`
	Port      int    `yaml:"port" json:"port"`
}

type Session struct {
	Backend string        `yaml:"backend" json:"backend"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
	Redis   Redis         `yaml:"redis" json:"redis"`
	// EncryptionKey is a base64 AES-256 key. When set, session state is
	// encrypted at rest; FallbackKeys still decrypt during key rotation.
	EncryptionKey string   `yaml:"encryption_key" json:"-"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"-"`
	// RedactKeys are regular expressions; matching state keys are masked
	// before they are stored.
	RedactKeys []string `yaml:"redact_keys" json:"redact_keys,omitempty"`
}

type Redis struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix,omitempty"`
}

type Guardrails struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	BlockedKeywords  []string `yaml:"blocked_keywords" json:"blocked_keywords"`
	BlockedPrefixes  []string `yaml:"blocked_prefixes" json:"blocked_prefixes"`
	MaxMessageLength int      `yaml:"max_message_length" json:"max_message_length"`
}

// Persona points at a directory holding agent.md. Empty means the built-in card.
type Persona struct {
	Dir string `yaml:"dir" json:"dir,omitempty"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Backends and transports accepted by Validate.
const (
	BackendMemory  = "memory"
	BackendRedis   = "redis"
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Data: Data{
			File:              "HSN_Master_Data.xlsx",
			CodeColumn:        "HSNCode",
			DescriptionColumn: "Description",
		},
		Log:    Log{Level: "info", Format: "text"},
		Server: Server{Port: 8080},
		MCP:    MCP{Transport: TransportStdio, Port: 8080},
		Session: Session{
			Backend: BackendMemory,
			TTL:     24 * time.Hour,
			Redis:   Redis{Addr: "localhost:6379"},
		},
		Guardrails: Guardrails{
			Enabled:          true,
			BlockedKeywords:  []string{"STUPID", "IDIOT"},
			BlockedPrefixes:  []string{"12345"},
			MaxMessageLength: 4096,
		},
		Metrics: Metrics{Enabled: true},
	}
}

// Load reads path over Default and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDataFile); ok && v != "" {
		c.Data.File = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvSessionBackend); ok && v != "" {
		c.Session.Backend = strings.ToLower(v)
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Session.Redis.Addr = v
	}
	if v, ok := lookup(EnvRedisPassword); ok {
		c.Session.Redis.Password = v
	}
	if v, ok := lookup(EnvSessionKey); ok && v != "" {
		c.Session.EncryptionKey = v
	}
	if v, ok := lookup(EnvMaxInputSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxInputSize, err)
		}
		c.Guardrails.MaxMessageLength = n
	}
	return nil
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Data.CodeColumn) == "" || strings.TrimSpace(c.Data.DescriptionColumn) == "" {
		errs = append(errs, errors.New("data: code_column and description_column must be set"))
	}
	switch c.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Session.Redis.Addr == "" {
			errs = append(errs, errors.New("session.redis: addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("session: unknown backend %q", c.Session.Backend))
	}
	if c.Session.TTL < 0 {
		errs = append(errs, errors.New("session: ttl must not be negative"))
	}
	if c.Session.EncryptionKey != "" {
		if _, err := middleware.ParseKeys(c.Session.EncryptionKey, c.Session.FallbackKeys...); err != nil {
			errs = append(errs, fmt.Errorf("session: %w", err))
		}
	} else if len(c.Session.FallbackKeys) > 0 {
		errs = append(errs, errors.New("session: fallback_keys require encryption_key"))
	}
	for _, p := range c.Session.RedactKeys {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("session: invalid redact pattern %q", p))
		}
	}
	switch c.MCP.Transport {
	case TransportStdio, TransportSSE:
	default:
		errs = append(errs, fmt.Errorf("mcp: unknown transport %q", c.MCP.Transport))
	}
	if !validPort(c.Server.Port) {
		errs = append(errs, fmt.Errorf("server: port %d out of range", c.Server.Port))
	}
	if !validPort(c.MCP.Port) {
		errs = append(errs, fmt.Errorf("mcp: port %d out of range", c.MCP.Port))
	}
	if c.Guardrails.MaxMessageLength <= 0 {
		errs = append(errs, errors.New("guardrails: max_message_length must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func validPort(p int) bool {
	return p > 0 && p < 65536
}
