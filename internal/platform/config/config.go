package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	defaultTokenTTL     = 7 * 24 * time.Hour

	secretScheme = "secret://"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Firestore FirestoreConfig
	Storage   StorageConfig
	PubSub    PubSubConfig
	Auth      AuthConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// StorageConfig lists bucket names used by the application.
type StorageConfig struct {
	ProductImagesBucket string
}

// PubSubConfig stores event topic parameters.
type PubSubConfig struct {
	ProjectID   string
	OrdersTopic string
}

// AuthConfig groups token issuance settings. JWTSecret may be supplied as a
// secret:// reference resolved at load time.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// SecretResolver resolves secret:// references into plaintext values.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts a function to the SecretResolver interface.
type SecretResolverFunc func(ctx context.Context, ref string) (string, error)

// ResolveSecret implements SecretResolver.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError reports configuration fields that failed validation.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid fields: %s", strings.Join(e.fields, ", "))
}

// Fields returns the names of the invalid fields.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

type loadOptions struct {
	envFile        string
	envMap         map[string]string
	skipSystemEnv  bool
	secretResolver SecretResolver
}

// Option customises configuration loading.
type Option func(*loadOptions)

// WithEnvFile overrides the .env file path consulted during loading.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies explicit values that take precedence over the environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loadOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment, primarily for tests.
func WithoutSystemEnv() Option {
	return func(o *loadOptions) {
		o.skipSystemEnv = true
	}
}

// WithSecretResolver installs the resolver used for secret:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loadOptions) {
		o.secretResolver = resolver
	}
}

// Load assembles the configuration from the environment, an optional .env
// file, and any explicitly supplied values.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loadOptions{envFile: defaultEnvFile}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	fileValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if !options.skipSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := fileValues[key]
		return value, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "FIRESTORE_PROJECT_ID", stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", "")),
			EmulatorHost: stringWithDefault(lookup, "FIRESTORE_EMULATOR_HOST", ""),
		},
		Storage: StorageConfig{
			ProductImagesBucket: stringWithDefault(lookup, "STORAGE_PRODUCT_IMAGES_BUCKET", ""),
		},
		PubSub: PubSubConfig{
			ProjectID:   stringWithDefault(lookup, "PUBSUB_PROJECT_ID", stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", "")),
			OrdersTopic: stringWithDefault(lookup, "PUBSUB_ORDERS_TOPIC", ""),
		},
		Auth: AuthConfig{
			JWTSecret: stringWithDefault(lookup, "JWT_SECRET", ""),
			TokenTTL:  durationWithDefault(lookup, "JWT_TOKEN_TTL", defaultTokenTTL),
		},
	}

	secret, err := resolveSecret(ctx, cfg.Auth.JWTSecret, options.secretResolver)
	if err != nil {
		return Config{}, err
	}
	cfg.Auth.JWTSecret = secret

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, secretScheme) {
		return value, nil
	}
	if resolver == nil {
		return "", errors.New("config: secret reference present but no resolver configured")
	}
	resolved, err := resolver.ResolveSecret(ctx, strings.TrimPrefix(value, secretScheme))
	if err != nil {
		return "", fmt.Errorf("config: resolve secret: %w", err)
	}
	return strings.TrimSpace(resolved), nil
}

func validateConfig(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "PORT")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		invalid = append(invalid, "JWT_SECRET")
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	return &ValidationError{fields: invalid}
}

func loadDotEnv(path string) (map[string]string, error) {
	values := map[string]string{}
	if strings.TrimSpace(path) == "" {
		return values, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("config: open env file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key != "" {
			values[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read env file %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
