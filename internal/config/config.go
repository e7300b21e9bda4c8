package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"foodzz/internal/food"
	"foodzz/internal/pricing"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Role int

const (
	RoleServer Role = iota
	RoleClient
)

const (
	StoreLocal  = "local"
	StoreRemote = "remote"

	defaultAdminPassword = "admin123"
)

type Config struct {
	AppEnv   string
	AppPort  string
	LogLevel string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	JWTSecret         string
	AdminUsername     string
	AdminPassword     string
	AllowedOrigins    []string
	InternalSecretKey string

	AMQPURL      string
	AMQPExchange string

	OTelServiceName string
	OTelEndpoint    string
	OTelStdout      bool

	StoreMode       string
	APIURL          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KVPrefix        string
	RefreshInterval time.Duration
	RequestTimeout  time.Duration

	PolicyFile string
	Policy     pricing.Policy
	Menu       []food.Item
}

// fileConfig is the optional YAML file named by POLICY_FILE.
type fileConfig struct {
	Pricing         *pricing.Policy `yaml:"pricing"`
	RefreshInterval string          `yaml:"refresh_interval"`
	Menu            []food.Item     `yaml:"menu"`
}

// LoadConfig reads .env (if present), the environment and the optional
// policy file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: os.Getenv("LOG_LEVEL"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", defaultAdminPassword),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "foodzz.orders"),

		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "foodzz"),
		OTelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelStdout:      strings.EqualFold(os.Getenv("OTEL_STDOUT"), "true"),

		StoreMode:     strings.ToLower(getEnv("STORE_MODE", StoreLocal)),
		APIURL:        strings.TrimRight(getEnv("API_URL", "http://localhost:8080"), "/"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		KVPrefix:      os.Getenv("KV_PREFIX"),

		PolicyFile: os.Getenv("POLICY_FILE"),
		Policy:     pricing.DefaultPolicy(),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getDuration("REFRESH_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.PolicyFile != "" {
		if err := cfg.loadFile(cfg.PolicyFile); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open policy file: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	if err := yaml.NewDecoder(f).Decode(&fc); err != nil {
		return fmt.Errorf("decode policy file %s: %w", path, err)
	}

	if fc.Pricing != nil {
		c.Policy = *fc.Pricing
	}
	if fc.RefreshInterval != "" {
		d, err := time.ParseDuration(fc.RefreshInterval)
		if err != nil {
			return fmt.Errorf("refresh_interval: %w", err)
		}
		c.RefreshInterval = d
	}
	if len(fc.Menu) > 0 {
		c.Menu = fc.Menu
	}
	return nil
}

// Validate checks what the given binary needs to start.
func (c *Config) Validate(role Role) error {
	var errs []error

	if c.Policy.TaxRate.IsNegative() || c.Policy.DeliveryFee.IsNegative() || c.Policy.FreeDeliveryThreshold.IsNegative() {
		errs = append(errs, errors.New("pricing policy values must not be negative"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("REFRESH_INTERVAL must be positive"))
	}

	switch role {
	case RoleServer:
		if c.DBHost == "" || c.DBName == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required"))
		}
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required"))
		}
		if c.IsProduction() && c.AdminPassword == defaultAdminPassword {
			errs = append(errs, errors.New("ADMIN_PASSWORD must be set in production"))
		}
	case RoleClient:
		switch c.StoreMode {
		case StoreLocal:
			if c.RedisAddr == "" {
				errs = append(errs, errors.New("REDIS_ADDR is required for the local store"))
			}
		case StoreRemote:
			if c.APIURL == "" {
				errs = append(errs, errors.New("API_URL is required for the remote store"))
			}
		default:
			errs = append(errs, fmt.Errorf("STORE_MODE must be %q or %q, got %q", StoreLocal, StoreRemote, c.StoreMode))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
