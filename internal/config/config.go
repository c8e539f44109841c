package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address                string   `mapstructure:"address"`
	Port                   int      `mapstructure:"port"`
	Mode                   string   `mapstructure:"mode"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds"`
	CORSOrigins            []string `mapstructure:"cors_origins"`
}

// DatabaseConfig covers the SQLite file that holds users, and selects
// which backend stores transactions.
type DatabaseConfig struct {
	Path         string `mapstructure:"path"`
	LogMode      bool   `mapstructure:"log_mode"`
	Transactions string `mapstructure:"transactions"` // mongo / sqlite
}

type MongoConfig struct {
	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
}

const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it looks for "config.yaml" in the working directory.
// A missing file is fine: defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = read(path)
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

func read(path string) (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = "config.yaml"
	}
	v.SetConfigFile(path)

	// environment overrides, e.g. FT_SERVER_PORT=9000
	v.SetEnvPrefix("FT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// plain names used by common hosting platforms
	_ = v.BindEnv("server.port", "FT_SERVER_PORT", "PORT")
	_ = v.BindEnv("mongo.uri", "FT_MONGO_URI", "MONGODB_URI")
	_ = v.BindEnv("jwt.secret", "FT_JWT_SECRET", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.cors_origins", []string{
		"http://localhost:5173",
		"http://localhost:5174",
		"http://localhost:5176",
	})

	v.SetDefault("database.path", "data/finance.db")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("database.transactions", BackendMongo)

	v.SetDefault("mongo.database", "finance")
	v.SetDefault("mongo.timeout_seconds", 10)

	v.SetDefault("jwt.issuer", "finance-tracker")
	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("security.bcrypt_cost", 12)

	v.SetDefault("log.level", "info")
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt.secret is required")
	}
	switch c.Database.Transactions {
	case BackendMongo:
		if c.Mongo.URI == "" {
			return errors.New("config: mongo.uri is required for the mongo transaction backend")
		}
	case BackendSQLite:
	default:
		return fmt.Errorf("config: unknown transaction backend %q", c.Database.Transactions)
	}
	return nil
}
