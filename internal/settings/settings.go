package settings

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

const (
	// DefaultResource is the name of the bundled defaults file.
	DefaultResource = "application.properties"
	// OverrideEnv names the environment variable holding the override file path.
	OverrideEnv = "APP_CONFIG"

	keyBaseURL = "application.baseUrl"
	keyMode    = "application.mode"
	devMode    = "dev"
)

//go:embed application.properties
var bundled embed.FS

// RequestBaseURL reports the base URL of the request carried by ctx. It
// returns false when ctx is not bound to an inbound request.
type RequestBaseURL func(ctx context.Context) (string, bool)

// Store holds the merged settings mapping. The mapping is never modified
// after Load returns.
type Store struct {
	values     map[string]string
	requestURL RequestBaseURL
	tokens     tokens
}

// Option configures Load.
type Option func(*options)

type options struct {
	defaultsFS   fs.FS
	defaultsName string
	overridePath *string
	requestURL   RequestBaseURL
	logger       *zap.Logger
	tokens       tokens
}

// WithDefaults replaces the bundled defaults resource (primarily for tests).
func WithDefaults(fsys fs.FS, name string) Option {
	return func(o *options) {
		o.defaultsFS = fsys
		o.defaultsName = name
	}
}

// WithOverrideFile sets the override file path, taking precedence over APP_CONFIG.
// A blank path disables the override.
func WithOverrideFile(path string) Option {
	return func(o *options) {
		o.overridePath = &path
	}
}

// WithRequestBaseURL wires the collaborator consulted by BaseURL.
func WithRequestBaseURL(fn RequestBaseURL) Option {
	return func(o *options) {
		o.requestURL = fn
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source used for date tokens, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.tokens.now = clock
		}
	}
}

type overrideEnv struct {
	Path string `env:"APP_CONFIG"`
}

// Load reads the bundled defaults and overlays the override file, if any.
func Load(opts ...Option) (*Store, error) {
	o := options{
		defaultsFS:   bundled,
		defaultsName: DefaultResource,
		logger:       zap.NewNop(),
		tokens:       systemTokens(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	values, err := loadDefaults(o.defaultsFS, o.defaultsName)
	if err != nil {
		return nil, err
	}

	overridePath, err := resolveOverridePath(o.overridePath)
	if err != nil {
		return nil, err
	}
	if overridePath != "" {
		override, err := loadOverride(overridePath)
		if err != nil {
			return nil, err
		}
		maps.Copy(values, override)
		o.logger.Info("settings override applied",
			zap.String("path", overridePath),
			zap.Int("keys", len(override)),
		)
	}

	o.logger.Debug("settings loaded", zap.Int("keys", len(values)))

	return &Store{
		values:     values,
		requestURL: o.requestURL,
		tokens:     o.tokens,
	}, nil
}

func resolveOverridePath(explicit *string) (string, error) {
	if explicit != nil {
		return strings.TrimSpace(*explicit), nil
	}
	var e overrideEnv
	if err := env.Parse(&e); err != nil {
		return "", fmt.Errorf("read %s: %w", OverrideEnv, err)
	}
	return strings.TrimSpace(e.Path), nil
}

// Lookup returns the substituted value for key and whether the key is present.
func (s *Store) Lookup(key string) (string, bool) {
	value, ok := s.values[key]
	if !ok {
		return "", false
	}
	return s.tokens.substitute(value), true
}

// String returns the substituted value for key, or the substituted def when
// the key is absent or its value is blank.
func (s *Store) String(key, def string) string {
	value, ok := s.values[key]
	if !ok || strings.TrimSpace(value) == "" {
		value = def
	}
	return s.tokens.substitute(value)
}

// Int returns the value for key parsed as a decimal integer, or def.
func (s *Store) Int(key string, def int) int {
	value, ok := s.Lookup(key)
	if !ok {
		return def
	}
	if n, ok := parseInt(value); ok {
		return n
	}
	return def
}

// Bool returns the value for key parsed as "true" or "false" (any case), or def.
func (s *Store) Bool(key string, def bool) bool {
	value, ok := s.Lookup(key)
	if !ok {
		return def
	}
	if b, ok := parseBool(value); ok {
		return b
	}
	return def
}

// Path is String for values naming filesystem locations.
func (s *Store) Path(key, def string) string {
	return s.String(key, def)
}

// BaseURL returns the base URL of the current request when ctx carries one,
// otherwise the application.baseUrl setting ("" when unset).
func (s *Store) BaseURL(ctx context.Context) string {
	if s.requestURL != nil {
		if url, ok := s.requestURL(ctx); ok && url != "" {
			return url
		}
	}
	url, _ := s.Lookup(keyBaseURL)
	return url
}

// IsProduction reports whether application.mode is anything other than "dev".
func (s *Store) IsProduction() bool {
	return s.String(keyMode, devMode) != devMode
}

// Properties returns a copy of the raw merged mapping. For diagnostics only.
func (s *Store) Properties() map[string]string {
	return maps.Clone(s.values)
}
