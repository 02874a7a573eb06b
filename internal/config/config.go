package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Auth      AuthConfig
	SMTP      SMTPConfig
	Storage   StorageConfig
	Payment   PaymentConfig
	MQTT      MQTTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Jobs      JobsConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
	FrontendURL string
	MaxUploadMB int64
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MongoURI string
	MongoDB  string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type AuthConfig struct {
	BcryptCost    int
	ResetTokenTTL time.Duration
	CookieName    string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type StorageConfig struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Folder        string
}

type PaymentConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	PlanID    string
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
	AuthRPS      float64 // Requests per second for login and reset endpoints
	AuthBurst    int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds
}

type JobsConfig struct {
	ResetSweepSpec string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("SERVER_MAX_UPLOAD_MB", 100)

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("MONGO_DB", "lms")

	v.SetDefault("JWT_EXPIRY", 7*24*time.Hour)

	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RESET_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("AUTH_COOKIE_NAME", "token")

	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_FOLDER", "lms")

	v.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1")

	v.SetDefault("MQTT_CLIENT_ID", "lms-backend")
	v.SetDefault("MQTT_TOPIC_PREFIX", "lms")

	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 20)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)
	v.SetDefault("RATE_LIMIT_AUTH_RPS", 1)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 5)

	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "X-Request-ID"})
	v.SetDefault("CORS_ALLOW_CREDENTIALS", true)
	v.SetDefault("CORS_MAX_AGE", 43200)

	v.SetDefault("JOBS_RESET_SWEEP_SPEC", "@every 1h")
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(".env")
	v.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(homeDir)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        v.GetString("SERVER_PORT"),
			Host:        v.GetString("SERVER_HOST"),
			Environment: v.GetString("ENVIRONMENT"),
			FrontendURL: v.GetString("FRONTEND_URL"),
			MaxUploadMB: v.GetInt64("SERVER_MAX_UPLOAD_MB"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MongoURI: v.GetString("MONGO_URI"),
			MongoDB:  v.GetString("MONGO_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Expiry: v.GetDuration("JWT_EXPIRY"),
		},
		Auth: AuthConfig{
			BcryptCost:    v.GetInt("BCRYPT_COST"),
			ResetTokenTTL: v.GetDuration("RESET_TOKEN_TTL"),
			CookieName:    v.GetString("AUTH_COOKIE_NAME"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Storage: StorageConfig{
			Endpoint:      v.GetString("S3_ENDPOINT"),
			Region:        v.GetString("S3_REGION"),
			Bucket:        v.GetString("S3_BUCKET"),
			AccessKey:     v.GetString("S3_ACCESS_KEY"),
			SecretKey:     v.GetString("S3_SECRET_KEY"),
			PublicBaseURL: v.GetString("S3_PUBLIC_URL"),
			Folder:        v.GetString("S3_FOLDER"),
		},
		Payment: PaymentConfig{
			BaseURL:   v.GetString("RAZORPAY_BASE_URL"),
			KeyID:     v.GetString("RAZORPAY_KEY_ID"),
			KeySecret: v.GetString("RAZORPAY_SECRET"),
			PlanID:    v.GetString("RAZORPAY_PLAN_ID"),
		},
		MQTT: MQTTConfig{
			Broker:      v.GetString("MQTT_BROKER"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			Username:    v.GetString("MQTT_USERNAME"),
			Password:    v.GetString("MQTT_PASSWORD"),
			TopicPrefix: v.GetString("MQTT_TOPIC_PREFIX"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: v.GetInt("RATE_LIMIT_GENERAL_BURST"),
			AuthRPS:      v.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst:    v.GetInt("RATE_LIMIT_AUTH_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   v.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   v.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
		Jobs: JobsConfig{
			ResetSweepSpec: v.GetString("JOBS_RESET_SWEEP_SPEC"),
		},
	}

	return config, nil
}

// Validate reports configuration that makes the server unable to start.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is missing, set JWT_SECRET")
	}
	if c.JWT.Expiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return errors.New("RESET_TOKEN_TTL must be positive")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return errors.New("database configuration is missing, set DB_HOST and DB_NAME")
		}
	case DriverMongo:
		if c.Database.MongoURI == "" {
			return errors.New("mongo configuration is missing, set MONGO_URI")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
