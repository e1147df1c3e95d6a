package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "supersecretjwtkey"

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"ENV" envDefault:"development"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"` // postgres, mysql or sqlite
	DatabaseURL string `env:"DATABASE_URL"`

	ReelStore     string `env:"REEL_STORE" envDefault:"sql"` // sql or mongo
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"reels"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	UserCacheTTL  time.Duration `env:"USER_CACHE_TTL" envDefault:"5m"`

	NatsURL string `env:"NATS_URL"`

	StorageDriver         string `env:"STORAGE_DRIVER" envDefault:"mock"` // mock, firebase or oss
	FirebaseStorageBucket string `env:"FIREBASE_STORAGE_BUCKET"`
	OSSEndpoint           string `env:"OSS_ENDPOINT"`
	OSSAccessKeyID        string `env:"OSS_ACCESS_KEY_ID"`
	OSSAccessKeySecret    string `env:"OSS_ACCESS_KEY_SECRET"`
	OSSBucket             string `env:"OSS_BUCKET"`

	AuthProvider            string        `env:"AUTH_PROVIDER" envDefault:"jwt"` // jwt or firebase
	FirebaseCredentialsPath string        `env:"FIREBASE_CREDENTIALS_PATH"`
	JWTSecret               string        `env:"JWT_SECRET" envDefault:"supersecretjwtkey"`
	JWTTTL                  time.Duration `env:"JWT_TTL" envDefault:"72h"`

	CaptionAPIURL     string        `env:"CAPTION_API_URL"`
	CaptionAPIKey     string        `env:"CAPTION_API_KEY"`
	CaptionAPITimeout time.Duration `env:"CAPTION_API_TIMEOUT" envDefault:"10s"`

	CORSOrigins      []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitEnabled bool     `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst   int      `env:"RATE_LIMIT_BURST" envDefault:"40"`
	MaxUploadSize    string   `env:"MAX_UPLOAD_SIZE" envDefault:"100M"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // text or json
	LogFile   string `env:"LOG_FILE"`                     // rotated file in addition to stdout

	// DotEnvLoaded reports whether Load found a .env file.
	DotEnvLoaded bool
}

// Load reads .env (when present) into the environment and parses the config.
func Load() (*Config, error) {
	loaded := true
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		loaded = false
	}
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = loaded
	return cfg, nil
}

// Parse builds the config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	oneOf := func(name, value string, allowed ...string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s must be one of %v, got %q", name, allowed, value))
		}
	}

	oneOf("DB_DRIVER", c.DBDriver, "postgres", "mysql", "sqlite")
	oneOf("REEL_STORE", c.ReelStore, "sql", "mongo")
	oneOf("STORAGE_DRIVER", c.StorageDriver, "mock", "firebase", "oss")
	oneOf("AUTH_PROVIDER", c.AuthProvider, "jwt", "firebase")
	oneOf("LOG_FORMAT", c.LogFormat, "text", "json")

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.ReelStore == "mongo" && c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required when REEL_STORE=mongo"))
	}
	if c.StorageDriver == "firebase" && c.FirebaseStorageBucket == "" {
		errs = append(errs, errors.New("FIREBASE_STORAGE_BUCKET is required when STORAGE_DRIVER=firebase"))
	}
	if c.StorageDriver == "oss" && (c.OSSEndpoint == "" || c.OSSAccessKeyID == "" || c.OSSAccessKeySecret == "" || c.OSSBucket == "") {
		errs = append(errs, errors.New("OSS_ENDPOINT, OSS_ACCESS_KEY_ID, OSS_ACCESS_KEY_SECRET and OSS_BUCKET are required when STORAGE_DRIVER=oss"))
	}
	if c.usesFirebase() && c.FirebaseCredentialsPath == "" {
		errs = append(errs, errors.New("FIREBASE_CREDENTIALS_PATH is required for firebase auth or storage"))
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

func (c *Config) usesFirebase() bool {
	return c.AuthProvider == "firebase" || c.StorageDriver == "firebase"
}

// UsesFirebase reports whether the Firebase app has to be initialized.
func (c *Config) UsesFirebase() bool {
	return c.usesFirebase()
}
