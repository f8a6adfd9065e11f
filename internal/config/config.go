package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/errors"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/routepath"
)

const (
	// ConfigFileName is the JSON configuration file.
	ConfigFileName = "medapi.json"

	// YAMLConfigFileName is the YAML alternative, used when no JSON file exists.
	YAMLConfigFileName = "medapi.yaml"

	// EnvFileName is loaded into the process environment when present.
	EnvFileName = ".env"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultRoutesDir is the default routes root.
	DefaultRoutesDir = "app/routes"

	// DefaultPrefix is the default API prefix.
	DefaultPrefix = "/api"

	// EnvProduction hides internal error messages from clients.
	EnvProduction = "production"
)

// Config is the route host configuration.
type Config struct {
	// Env is the deployment environment ("development", "production", ...).
	Env string `json:"env,omitempty" yaml:"env,omitempty" env:"MEDAPI_ENV"`

	// Server contains listener and host router settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Routes contains route discovery settings.
	Routes RoutesConfig `json:"routes,omitempty" yaml:"routes,omitempty"`

	// Body contains body parser settings.
	Body BodyConfig `json:"body,omitempty" yaml:"body,omitempty"`

	// Multipart contains multipart parser ceilings.
	Multipart MultipartConfig `json:"multipart,omitempty" yaml:"multipart,omitempty"`

	// Uploads configures where booking attachments are stored.
	Uploads UploadsConfig `json:"uploads,omitempty" yaml:"uploads,omitempty"`

	// Webhooks holds webhook verification secrets.
	Webhooks WebhooksConfig `json:"webhooks,omitempty" yaml:"webhooks,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" env:"MEDAPI_ADDR"`

	// Host selects the host router: "chi" or "gin".
	Host string `json:"host,omitempty" yaml:"host,omitempty" env:"MEDAPI_HOST_ROUTER"`

	// ReadTimeout is the http.Server read timeout (e.g. "15s").
	ReadTimeout string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty" env:"MEDAPI_READ_TIMEOUT"`

	// WriteTimeout is the http.Server write timeout.
	WriteTimeout string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty" env:"MEDAPI_WRITE_TIMEOUT"`

	// IdleTimeout is the http.Server idle timeout.
	IdleTimeout string `json:"idleTimeout,omitempty" yaml:"idleTimeout,omitempty" env:"MEDAPI_IDLE_TIMEOUT"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty" env:"MEDAPI_SHUTDOWN_TIMEOUT"`

	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers are
	// honoured.
	TrustedProxies []string `json:"trustedProxies,omitempty" yaml:"trustedProxies,omitempty" env:"MEDAPI_TRUSTED_PROXIES"`
}

// RoutesConfig contains route discovery settings.
type RoutesConfig struct {
	// Dir is the routes root.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" env:"MEDAPI_ROUTES_DIR"`

	// Prefix is prepended to every mount path.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty" env:"MEDAPI_ROUTES_PREFIX"`

	// RawBodyPaths are path.Match patterns whose bodies are kept as bytes
	// (webhook signature checks).
	RawBodyPaths []string `json:"rawBodyPaths,omitempty" yaml:"rawBodyPaths,omitempty" env:"MEDAPI_RAW_BODY_PATHS"`
}

// BodyConfig contains body parser settings.
type BodyConfig struct {
	// MaxBytes caps non-multipart bodies.
	MaxBytes int64 `json:"maxBytes,omitempty" yaml:"maxBytes,omitempty" env:"MEDAPI_BODY_MAX_BYTES"`
}

// MultipartConfig contains multipart ceilings.
type MultipartConfig struct {
	MaxFileBytes    int64 `json:"maxFileBytes,omitempty" yaml:"maxFileBytes,omitempty" env:"MEDAPI_MULTIPART_MAX_FILE_BYTES"`
	MaxRequestBytes int64 `json:"maxRequestBytes,omitempty" yaml:"maxRequestBytes,omitempty" env:"MEDAPI_MULTIPART_MAX_REQUEST_BYTES"`
	MaxParts        int   `json:"maxParts,omitempty" yaml:"maxParts,omitempty" env:"MEDAPI_MULTIPART_MAX_PARTS"`
	MaxFieldBytes   int64 `json:"maxFieldBytes,omitempty" yaml:"maxFieldBytes,omitempty" env:"MEDAPI_MULTIPART_MAX_FIELD_BYTES"`
}

// UploadsConfig selects the attachment store.
type UploadsConfig struct {
	// Store is "memory", "disk" or "s3".
	Store string `json:"store,omitempty" yaml:"store,omitempty" env:"MEDAPI_UPLOADS_STORE"`

	// Dir is the DiskStore directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" env:"MEDAPI_UPLOADS_DIR"`

	// Bucket is the S3 bucket.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty" env:"MEDAPI_UPLOADS_BUCKET"`

	// Region is the S3 region.
	Region string `json:"region,omitempty" yaml:"region,omitempty" env:"MEDAPI_UPLOADS_REGION"`

	// Endpoint overrides the S3 endpoint (MinIO, LocalStack).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" env:"MEDAPI_UPLOADS_ENDPOINT"`

	// KeyPrefix is prepended to every object key.
	KeyPrefix string `json:"keyPrefix,omitempty" yaml:"keyPrefix,omitempty" env:"MEDAPI_UPLOADS_KEY_PREFIX"`

	// AllowedTypes restricts attachments to these sniffed MIME types
	// ("image/*" matches any image). Empty allows everything.
	AllowedTypes []string `json:"allowedTypes,omitempty" yaml:"allowedTypes,omitempty" env:"MEDAPI_UPLOADS_ALLOWED_TYPES"`
}

// WebhooksConfig holds webhook secrets. Prefer setting them through the
// environment or .env rather than the config file.
type WebhooksConfig struct {
	StripeSecret string `json:"stripeSecret,omitempty" yaml:"stripeSecret,omitempty" env:"MEDAPI_STRIPE_WEBHOOK_SECRET"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" env:"MEDAPI_LOG_LEVEL"`

	// Format is "text" (coloured on a TTY) or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty" env:"MEDAPI_LOG_FORMAT"`

	// Requests enables one log line per request.
	Requests bool `json:"requests,omitempty" yaml:"requests,omitempty" env:"MEDAPI_LOG_REQUESTS"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" env:"MEDAPI_METRICS_ENABLED"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty" env:"MEDAPI_METRICS_PATH"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" env:"MEDAPI_TRACING_ENABLED"`
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" env:"MEDAPI_TRACING_SERVICE_NAME"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Addr:            DefaultAddr,
			Host:            "chi",
			ReadTimeout:     "15s",
			WriteTimeout:    "30s",
			IdleTimeout:     "60s",
			ShutdownTimeout: "10s",
		},
		Routes: RoutesConfig{
			Dir:          DefaultRoutesDir,
			Prefix:       DefaultPrefix,
			RawBodyPaths: []string{"/api/webhooks/*"},
		},
		Body: BodyConfig{
			MaxBytes: 1 << 20,
		},
		Multipart: MultipartConfig{
			MaxFileBytes:    10 << 20,
			MaxRequestBytes: 32 << 20,
			MaxParts:        1000,
			MaxFieldBytes:   1 << 20,
		},
		Uploads: UploadsConfig{
			Store: "memory",
			Dir:   "var/uploads",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			ServiceName: "medapi",
		},
	}
}

// Load reads configuration for the project in dir: medapi.json, or
// medapi.yaml when there is no JSON file, then .env, then environment
// overrides. A project without a config file runs on defaults.
func Load(dir string) (*Config, error) {
	var cfg *Config
	switch {
	case fileExists(filepath.Join(dir, ConfigFileName)):
		c, err := LoadFile(filepath.Join(dir, ConfigFileName))
		if err != nil {
			return nil, err
		}
		cfg = c
	case fileExists(filepath.Join(dir, YAMLConfigFileName)):
		c, err := LoadFile(filepath.Join(dir, YAMLConfigFileName))
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		cfg = New()
		cfg.configPath = filepath.Join(dir, ConfigFileName)
	}

	if err := LoadEnvFile(filepath.Join(dir, EnvFileName)); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from a .json, .yaml or .yml file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("R020").WithFile(path).Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("R020").
			WithFile(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadEnvFile loads path into the process environment. Variables already
// set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.New("R020").WithFile(path).Wrap(err)
	}
	return nil
}

// ApplyEnv overrides fields from MEDAPI_* environment variables. List
// values are separated by semicolons.
func (c *Config) ApplyEnv() error {
	if err := envdecode.Decode(c); err != nil && !stderrors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return errors.New("R021").WithDetail("environment override").Wrap(err)
	}
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if c.Env == "" {
		c.Env = d.Env
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Routes.Dir == "" {
		c.Routes.Dir = d.Routes.Dir
	}
	if c.Body.MaxBytes == 0 {
		c.Body.MaxBytes = d.Body.MaxBytes
	}
	if c.Multipart.MaxFileBytes == 0 {
		c.Multipart.MaxFileBytes = d.Multipart.MaxFileBytes
	}
	if c.Multipart.MaxRequestBytes == 0 {
		c.Multipart.MaxRequestBytes = d.Multipart.MaxRequestBytes
	}
	if c.Multipart.MaxParts == 0 {
		c.Multipart.MaxParts = d.Multipart.MaxParts
	}
	if c.Multipart.MaxFieldBytes == 0 {
		c.Multipart.MaxFieldBytes = d.Multipart.MaxFieldBytes
	}
	if c.Uploads.Store == "" {
		c.Uploads.Store = d.Uploads.Store
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = d.Tracing.ServiceName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return errors.New("R021").WithDetail(field + ": " + fmt.Sprintf(format, args...))
	}

	switch c.Server.Host {
	case "chi", "gin":
	default:
		return invalid("server.host", "%q is not one of chi, gin", c.Server.Host)
	}

	for name, v := range map[string]string{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.idleTimeout":     c.Server.IdleTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
	} {
		if _, err := parseDuration(v); err != nil {
			return invalid(name, "%v", err)
		}
	}

	if _, err := routepath.CleanPrefix(c.Routes.Prefix); err != nil {
		return invalid("routes.prefix", "%q: %v", c.Routes.Prefix, err)
	}
	if c.Routes.Dir == "" {
		return invalid("routes.dir", "must not be empty")
	}

	if c.Body.MaxBytes < 0 {
		return invalid("body.maxBytes", "must not be negative")
	}
	if c.Multipart.MaxFileBytes < 0 || c.Multipart.MaxRequestBytes < 0 || c.Multipart.MaxParts < 0 || c.Multipart.MaxFieldBytes < 0 {
		return invalid("multipart", "limits must not be negative")
	}
	if c.Multipart.MaxFileBytes > c.Multipart.MaxRequestBytes && c.Multipart.MaxRequestBytes > 0 {
		return invalid("multipart.maxFileBytes", "exceeds multipart.maxRequestBytes")
	}

	switch c.Uploads.Store {
	case "memory", "disk":
	case "s3":
		if c.Uploads.Bucket == "" {
			return invalid("uploads.bucket", "required for the s3 store")
		}
	default:
		return invalid("uploads.store", "%q is not one of memory, disk, s3", c.Uploads.Store)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level", "%q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", "%q is not one of text, json", c.Log.Format)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path", "%q must start with /", c.Metrics.Path)
	}
	return nil
}

// IsProduction reports whether internal error details are hidden.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// RoutesPath returns the absolute path to the routes directory.
func (c *Config) RoutesPath() string {
	path := c.Routes.Dir
	if path == "" {
		path = DefaultRoutesDir
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// UploadsPath returns the absolute path to the DiskStore directory.
func (c *Config) UploadsPath() string {
	if filepath.IsAbs(c.Uploads.Dir) {
		return c.Uploads.Dir
	}
	return filepath.Join(c.Dir(), c.Uploads.Dir)
}

// ReadTimeout returns the parsed read timeout.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ReadTimeout)
	return d
}

// WriteTimeout returns the parsed write timeout.
func (c *Config) WriteTimeout() time.Duration {
	d, _ := parseDuration(c.Server.WriteTimeout)
	return d
}

// IdleTimeout returns the parsed idle timeout.
func (c *Config) IdleTimeout() time.Duration {
	d, _ := parseDuration(c.Server.IdleTimeout)
	return d
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ShutdownTimeout)
	return d
}

// parseDuration treats "" as zero (no timeout).
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("%s is negative", s)
	}
	return d, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
