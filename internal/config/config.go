// Package config loads the flowsmith configuration file and opens the
// flow store it names. The CLI layers flags on top of what Load returns.
package config

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flowsmith/flowsmith/pkg/adapters/file"
	"github.com/flowsmith/flowsmith/pkg/adapters/memory"
	"github.com/flowsmith/flowsmith/pkg/adapters/mongo"
	"github.com/flowsmith/flowsmith/pkg/adapters/redis"
	"github.com/flowsmith/flowsmith/pkg/persistence/middleware"
	"github.com/flowsmith/flowsmith/pkg/ports"
)

// DefaultFile is the config file checked when no --config flag is given.
const DefaultFile = "flowsmith.yaml"

// Store backends accepted in the config file and the --store flag.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the full flowsmith configuration.
type Config struct {
	Addr  string      `yaml:"addr"`
	Log   LogConfig   `yaml:"log"`
	Store StoreConfig `yaml:"store"`
}

// LogConfig selects the logger's verbosity and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig names the flow store backend and its settings. Only the
// backend section matching Backend is read; the encryption and pii
// sections apply to whichever backend is selected.
type StoreConfig struct {
	Backend    string           `yaml:"backend"`
	File       FileConfig       `yaml:"file"`
	Redis      RedisConfig      `yaml:"redis"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Encryption EncryptionConfig `yaml:"encryption"`
	PII        PIIConfig        `yaml:"pii"`
}

// FileConfig configures the on-disk store.
type FileConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	Prefix   string   `yaml:"prefix"`
	TTL      Duration `yaml:"ttl"`
}

// MongoConfig configures the MongoDB store.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// EncryptionConfig enables at-rest encryption of saved flows. Key is the
// base64-encoded 32-byte AES-256 key used for new saves; FallbackKeys are
// previous keys still accepted on load, for zero-downtime rotation.
type EncryptionConfig struct {
	Key          string   `yaml:"key"`
	FallbackKeys []string `yaml:"fallback_keys"`
}

// PIIConfig masks node data values before they reach the store. Patterns
// are regular expressions matched against data keys.
type PIIConfig struct {
	Patterns []string `yaml:"patterns"`
}

// Duration is a time.Duration that unmarshals from strings like "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Addr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			File: FileConfig{
				Path: ".flowsmith/flows",
			},
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "flowsmith",
			},
		},
	}
}

// Load reads the config file at path and merges it over Default.
// With an empty path, DefaultFile is tried and a missing file is fine;
// an explicit path that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if explicit {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// OpenStore opens the flow store cfg names, wrapped in the configured
// persistence middleware. The returned close func is non-nil and releases
// the store's connections; for stores without connections it is a no-op.
func OpenStore(ctx context.Context, cfg StoreConfig) (ports.FlowStore, func() error, error) {
	store, closeStore, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	wrapped, err := applyMiddleware(store, cfg)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return wrapped, closeStore, nil
}

func openBackend(ctx context.Context, cfg StoreConfig) (ports.FlowStore, func() error, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return memory.NewStore(), noopClose, nil

	case BackendFile:
		path := cfg.File.Path
		if path == "" {
			path = Default().Store.File.Path
		}
		return file.New(path), noopClose, nil

	case BackendRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(time.Duration(cfg.Redis.TTL)))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return store, store.Close, nil

	case BackendMongo:
		store, err := mongo.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		return store, func() error { return store.Close(context.Background()) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q (want memory, file, redis or mongo)", cfg.Backend)
	}
}

// applyMiddleware wraps the store per the encryption and pii sections.
// Masking wraps the encrypted store, so masked data is what gets sealed.
func applyMiddleware(store ports.FlowStore, cfg StoreConfig) (ports.FlowStore, error) {
	if cfg.Encryption.Key != "" {
		encCfg, err := decodeEncryption(cfg.Encryption)
		if err != nil {
			return nil, err
		}
		store = middleware.NewEncryptionMiddleware(encCfg)(store)
	}

	if len(cfg.PII.Patterns) > 0 {
		for _, p := range cfg.PII.Patterns {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
			}
		}
		store = middleware.NewPIIMiddleware(cfg.PII.Patterns)(store)
	}

	return store, nil
}

func decodeEncryption(cfg EncryptionConfig) (middleware.EncryptionConfig, error) {
	key, err := decodeKey(cfg.Key)
	if err != nil {
		return middleware.EncryptionConfig{}, err
	}
	out := middleware.EncryptionConfig{ActiveKey: key}
	for _, fallback := range cfg.FallbackKeys {
		decoded, err := decodeKey(fallback)
		if err != nil {
			return middleware.EncryptionConfig{}, err
		}
		out.FallbackKeys = append(out.FallbackKeys, decoded)
	}
	return out, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes (AES-256), got %d", len(key))
	}
	return key, nil
}

func noopClose() error { return nil }
