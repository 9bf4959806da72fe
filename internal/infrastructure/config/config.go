package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. MURDHANNO_DATABASE_PASSWORD
const EnvPrefix = "MURDHANNO"

// Config holds all application configuration. Keys follow the mapstructure
// tags, e.g. invoice.default_paper_size or MURDHANNO_INVOICE_DEFAULT_PAPER_SIZE.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Invoice   InvoiceConfig   `mapstructure:"invoice"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Courier   CourierConfig   `mapstructure:"courier"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// IsProduction reports whether the app runs with production safeguards
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings. Driver "sqlite" treats
// DBName as a file path and is meant for local runs only.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	Issuer                 string        `mapstructure:"issuer"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
}

// AdminConfig seeds the first administrator when the users table is empty
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

type HTTPConfig struct {
	ReadTimeout            time.Duration `mapstructure:"read_timeout"`
	WriteTimeout           time.Duration `mapstructure:"write_timeout"`
	IdleTimeout            time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout        time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes         int           `mapstructure:"max_header_bytes"`
	MaxBodySize            int64         `mapstructure:"max_body_size"`
	RateLimitEnabled       bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests      int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow        time.Duration `mapstructure:"rate_limit_window"`
	LoginRateLimitRequests int           `mapstructure:"login_rate_limit_requests"`
	LoginRateLimitWindow   time.Duration `mapstructure:"login_rate_limit_window"`
	// LoginLockoutFailures failed logins from one IP within
	// LoginLockoutWindow block further attempts; 0 disables the check
	LoginLockoutFailures   int           `mapstructure:"login_lockout_failures"`
	LoginLockoutWindow     time.Duration `mapstructure:"login_lockout_window"`
	CORSAllowOrigins       []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods       []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders       []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies         []string      `mapstructure:"trusted_proxies"`
}

// InvoiceConfig controls invoice rendering
type InvoiceConfig struct {
	DefaultPaperSize string        `mapstructure:"default_paper_size"` // LABEL_4X6 or LABEL_100X70
	Title            string        `mapstructure:"title"`
	Footer           string        `mapstructure:"footer"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	JobRetention     time.Duration `mapstructure:"job_retention"`
}

// StorageConfig selects where generated PDFs are kept
type StorageConfig struct {
	Backend       string        `mapstructure:"backend"` // filesystem or s3
	BasePath      string        `mapstructure:"base_path"`
	BaseURL       string        `mapstructure:"base_url"`
	S3Endpoint    string        `mapstructure:"s3_endpoint"`
	S3Region      string        `mapstructure:"s3_region"`
	S3Bucket      string        `mapstructure:"s3_bucket"`
	S3AccessKey   string        `mapstructure:"s3_access_key"`
	S3SecretKey   string        `mapstructure:"s3_secret_key"`
	S3PathStyle   bool          `mapstructure:"s3_path_style"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

const (
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
)

// CourierConfig selects the delivery company. Provider "none" keeps the
// courier endpoints answering with a not-configured error.
type CourierConfig struct {
	Provider      string        `mapstructure:"provider"` // none or pathao
	BaseURL       string        `mapstructure:"base_url"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	Timeout       time.Duration `mapstructure:"timeout"`
	DefaultStore  int           `mapstructure:"default_store_id"`
	LocationTTL   time.Duration `mapstructure:"location_ttl"`
	DefaultWeight float64       `mapstructure:"default_item_weight"` // kg
}

const (
	CourierNone   = "none"
	CourierPathao = "pathao"
)

// SwaggerConfig controls the API documentation endpoint
type SwaggerConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	RequireAuth bool     `mapstructure:"require_auth"`
	AllowedIPs  []string `mapstructure:"allowed_ips"` // IPs or CIDRs, empty allows all
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
	ProfilingEnabled  bool          `mapstructure:"profiling_enabled"`
	PyroscopeAddress  string        `mapstructure:"pyroscope_address"`
}

// defaults lists every key. Keys must be known to viper for environment
// overrides to reach Unmarshal, so empty values are listed too.
var defaults = map[string]any{
	"app.name": "murdhanno",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "postgres",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "murdhanno",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                   "",
	"jwt.refresh_secret":           "",
	"jwt.issuer":                   "murdhanno",
	"jwt.access_token_expiration":  15 * time.Minute,
	"jwt.refresh_token_expiration": 7 * 24 * time.Hour,

	"admin.username": "",
	"admin.email":    "",
	"admin.password": "",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":              15 * time.Second,
	"http.write_timeout":             30 * time.Second,
	"http.idle_timeout":              time.Minute,
	"http.shutdown_timeout":          10 * time.Second,
	"http.max_header_bytes":          1 << 20,
	"http.max_body_size":             int64(2 << 20),
	"http.rate_limit_enabled":        false,
	"http.rate_limit_requests":       100,
	"http.rate_limit_window":         time.Minute,
	"http.login_rate_limit_requests": 5,
	"http.login_rate_limit_window":   time.Minute,
	"http.login_lockout_failures":    10,
	"http.login_lockout_window":      15 * time.Minute,
	"http.cors_allow_origins":        []string{},
	"http.cors_allow_methods":        []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
	"http.cors_allow_headers":        []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":           []string{},

	"invoice.default_paper_size": "LABEL_4X6",
	"invoice.title":              "MURDHANNO",
	"invoice.footer":             "Thank you!",
	"invoice.cache_ttl":          time.Hour,
	"invoice.job_retention":      30 * 24 * time.Hour,

	"storage.backend":        StorageFilesystem,
	"storage.base_path":      "./data/invoices",
	"storage.base_url":       "/api/v1/print/files",
	"storage.s3_endpoint":    "",
	"storage.s3_region":      "us-east-1",
	"storage.s3_bucket":      "",
	"storage.s3_access_key":  "",
	"storage.s3_secret_key":  "",
	"storage.s3_path_style":  false,
	"storage.presign_expiry": 15 * time.Minute,

	"courier.provider":            CourierNone,
	"courier.base_url":            "https://courier-api-sandbox.pathao.com",
	"courier.client_id":           "",
	"courier.client_secret":       "",
	"courier.username":            "",
	"courier.password":            "",
	"courier.timeout":             30 * time.Second,
	"courier.default_store_id":    0,
	"courier.location_ttl":        24 * time.Hour,
	"courier.default_item_weight": 0.5,

	"swagger.enabled":      true,
	"swagger.require_auth": false,
	"swagger.allowed_ips":  []string{},

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_interval":        time.Minute,
	"telemetry.logs_enabled":            false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.profiling_enabled":       false,
	"telemetry.pyroscope_address":       "http://localhost:4040",
}

func newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	return v
}

// Load reads config.toml from . or /app when present, then MURDHANNO_*
// environment variables. Environment wins over the file.
func Load() (*Config, error) {
	v := newViper(true)
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFile reads configuration from an explicit path, which must exist
func LoadFile(path string) (*Config, error) {
	v := newViper(true)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the built-in configuration without file or environment
func Default() *Config {
	cfg, err := decode(newViper(false))
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults are invalid: %v", err))
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	db := c.Database
	switch {
	case db.Driver != "postgres" && db.Driver != "sqlite":
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", db.Driver)
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			db.MaxIdleConns, db.MaxOpenConns)
	}

	if p := c.Invoice.DefaultPaperSize; p != "LABEL_4X6" && p != "LABEL_100X70" {
		return fmt.Errorf("invoice.default_paper_size must be LABEL_4X6 or LABEL_100X70, got %q", p)
	}

	switch c.Storage.Backend {
	case StorageFilesystem:
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			return errors.New("storage.s3_bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("storage.backend must be filesystem or s3, got %q", c.Storage.Backend)
	}

	switch c.Courier.Provider {
	case CourierNone:
	case CourierPathao:
		if c.Courier.ClientID == "" || c.Courier.ClientSecret == "" {
			return errors.New("courier.client_id and courier.client_secret are required for pathao")
		}
		if c.Courier.Username == "" || c.Courier.Password == "" {
			return errors.New("courier.username and courier.password are required for pathao")
		}
	default:
		return fmt.Errorf("courier.provider must be none or pathao, got %q", c.Courier.Provider)
	}
	if c.Courier.DefaultWeight <= 0 {
		return errors.New("courier.default_item_weight must be positive")
	}

	for _, entry := range c.Swagger.AllowedIPs {
		if net.ParseIP(entry) == nil {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				return fmt.Errorf("swagger.allowed_ips: %q is neither an IP nor a CIDR", entry)
			}
		}
	}

	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %g", r)
	}

	if c.App.IsProduction() {
		return c.validateProduction()
	}
	return nil
}

// validateProduction refuses settings that are only acceptable locally
func (c *Config) validateProduction() error {
	switch {
	case len(c.JWT.Secret) < 32:
		return errors.New("jwt.secret must be at least 32 characters in production")
	case c.Database.Driver != "postgres":
		return errors.New("database.driver must be postgres in production")
	case c.Database.Password == "":
		return errors.New("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return errors.New("database.sslmode cannot be 'disable' in production")
	case slices.Contains(c.HTTP.CORSAllowOrigins, "*"):
		return errors.New("http.cors_allow_origins cannot be '*' in production")
	case c.Telemetry.DBLogFullSQL:
		return errors.New("telemetry.db_log_full_sql must be false in production")
	case c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0:
		return errors.New("swagger must require auth or restrict allowed_ips in production")
	}
	return nil
}

// DSN returns the connection string with escaped credentials
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.DBName
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
