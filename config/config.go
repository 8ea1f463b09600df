package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr            string        `yaml:"addr"`
	Password        string        `yaml:"password"`
	Database        int           `yaml:"database"`
	ProductCacheTTL time.Duration `yaml:"productCacheTTL"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwtSecret"`
	TokenTTL   time.Duration `yaml:"tokenTTL"`
	BcryptCost int           `yaml:"bcryptCost"`
}

type BraintreeConfig struct {
	Environment       string        `yaml:"environment"`
	MerchantAccountID string        `yaml:"merchantAccountId"`
	PublicKey         string        `yaml:"publicKey"`
	PrivateKey        string        `yaml:"privateKey"`
	Timeout           time.Duration `yaml:"timeout"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Braintree BraintreeConfig `yaml:"braintree"`
}

// 預設設定，檔案與環境變數未設定的欄位使用此值
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Database: DatabaseConfig{
			Driver: "mysql",
			Host:   "127.0.0.1",
			Port:   "3306",
		},
		Redis: RedisConfig{
			Addr:            "127.0.0.1:6379",
			ProductCacheTTL: 10 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL:   24 * time.Hour,
			BcryptCost: 12,
		},
		Braintree: BraintreeConfig{
			Environment: "sandbox",
			Timeout:     30 * time.Second,
		},
	}
}

// 讀取YAML設定檔(檔案不存在時使用預設值)，再以.env及環境變數覆蓋
func LoadConfig(filename string) (Config, error) {
	config := Default()

	file, err := os.Open(filename)
	switch {
	case err == nil:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return config, fmt.Errorf("decode %s: %w", filename, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return config, err
	}

	//.env只補上尚未設定的環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&config); err != nil {
		return config, err
	}
	return config, config.Validate()
}

func applyEnv(config *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.Server.Addr = ":" + port
	}
	setString("GIN_MODE", &config.Server.Mode)
	setString("DATABASE_DRIVER", &config.Database.Driver)
	setString("DATABASE_DSN", &config.Database.DSN)
	setString("REDIS_ADDR", &config.Redis.Addr)
	setString("REDIS_PASSWORD", &config.Redis.Password)
	setString("JWT_SECRET", &config.Auth.JWTSecret)
	setString("BRAINTREE_ENVIRONMENT", &config.Braintree.Environment)
	setString("BRAINTREE_MERCHANT_ACCOUNT_ID", &config.Braintree.MerchantAccountID)
	setString("BRAINTREE_PUBLIC_KEY", &config.Braintree.PublicKey)
	setString("BRAINTREE_PRIVATE_KEY", &config.Braintree.PrivateKey)

	if v, ok := os.LookupEnv("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		config.Redis.Database = db
	}
	return nil
}

// 檢查啟動伺服器必要的設定
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret (JWT_SECRET) is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwtSecret must be at least 32 bytes")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTTL must be positive")
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	switch c.Braintree.Environment {
	case "sandbox", "production":
	default:
		return fmt.Errorf("braintree.environment %q is not supported", c.Braintree.Environment)
	}
	return nil
}
