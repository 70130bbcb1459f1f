package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// minBodyLimitMB keeps the request body limit above the 50 MiB upload cap so
// oversized uploads reach the service and get a domain error.
const minBodyLimitMB = 51

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server   Server
	Database Database
	Auth     Auth
	Storage  Storage
	Admin    Admin
}

type Server struct {
	Addr        string `env:"ACCOUNT_ADDR" envDefault:":8080"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	BodyLimitMB int    `env:"BODY_LIMIT_MB" envDefault:"64"`
	Metrics     bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

type Database struct {
	URL     string `env:"DATABASE_URL"`
	Migrate bool   `env:"DB_MIGRATE" envDefault:"true"`
}

type Auth struct {
	JWTSecret  string        `env:"JWT_SECRET,required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

type Storage struct {
	Driver      string `env:"STORAGE_DRIVER" envDefault:"local"`
	UploadDir   string `env:"UPLOAD_DIR" envDefault:"uploads"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Prefix    string `env:"S3_PREFIX" envDefault:"profile-images"`
}

// Admin seeds an administrator on startup when Email is set.
type Admin struct {
	Email     string `env:"ADMIN_EMAIL"`
	Password  string `env:"ADMIN_PASSWORD"`
	FirstName string `env:"ADMIN_FIRST_NAME" envDefault:"Admin"`
	LastName  string `env:"ADMIN_LAST_NAME" envDefault:"User"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the variables directly
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Server.BodyLimitMB < minBodyLimitMB {
		errs = append(errs, fmt.Errorf("BODY_LIMIT_MB must be at least %d", minBodyLimitMB))
	}

	switch c.Storage.Driver {
	case StorageLocal:
		if c.Storage.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR must not be empty"))
		}
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}

	if c.Admin.Email != "" && c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set"))
	}

	return errors.Join(errs...)
}

// BodyLimit is the request body limit in bytes.
func (s Server) BodyLimit() int {
	return s.BodyLimitMB << 20
}
