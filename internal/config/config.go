// Package config reads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	StorageLocal = "local"
	StorageB2    = "b2"
)

type Config struct {
	Env     string
	Port    string
	Version string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	CORSOrigins  []string
	CookieSecure bool

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	ProfileStorage string
	UploadDir      string
	PublicBaseURL  string
	B2KeyID        string
	B2AppKey       string
	B2Bucket       string

	TextbeltAPIKey string
	RollbarToken   string

	LogLevel  string
	LogFormat string

	SeedAdmin SeedAdmin
}

// SeedAdmin is the account created when the admin collection is empty.
type SeedAdmin struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Load reads .env files (if any) and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load(envFiles...)
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("ENV", "DEV")
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("VERSION", "dev")
	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "campus")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("ACCESS_TOKEN_SECRET", "")
	v.SetDefault("REFRESH_TOKEN_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRY", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_EXPIRY", 10*24*time.Hour)
	v.SetDefault("PROFILE_STORAGE", StorageLocal)
	v.SetDefault("UPLOAD_DIR", "public/uploads")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("B2_KEY_ID", "")
	v.SetDefault("B2_APP_KEY", "")
	v.SetDefault("B2_BUCKET", "")
	v.SetDefault("TEXTBELT_API_KEY", "")
	v.SetDefault("ROLLBAR_TOKEN", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@localhost")
	v.SetDefault("SEED_ADMIN_PASSWORD", "")
	v.SetDefault("SEED_ADMIN_FULL_NAME", "System Admin")
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from an already populated viper.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:                strings.ToUpper(v.GetString("ENV")),
		Port:               v.GetString("API_PORT"),
		Version:            v.GetString("VERSION"),
		StoreDriver:        strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:           v.GetString("MONGO_URI"),
		MongoDatabase:      v.GetString("MONGO_DATABASE"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
		CookieSecure:       v.GetBool("COOKIE_SECURE"),
		AccessTokenSecret:  v.GetString("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: v.GetString("REFRESH_TOKEN_SECRET"),
		AccessTokenExpiry:  v.GetDuration("ACCESS_TOKEN_EXPIRY"),
		RefreshTokenExpiry: v.GetDuration("REFRESH_TOKEN_EXPIRY"),
		ProfileStorage:     strings.ToLower(v.GetString("PROFILE_STORAGE")),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		PublicBaseURL:      strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		B2KeyID:            v.GetString("B2_KEY_ID"),
		B2AppKey:           v.GetString("B2_APP_KEY"),
		B2Bucket:           v.GetString("B2_BUCKET"),
		TextbeltAPIKey:     v.GetString("TEXTBELT_API_KEY"),
		RollbarToken:       v.GetString("ROLLBAR_TOKEN"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		SeedAdmin: SeedAdmin{
			Username: v.GetString("SEED_ADMIN_USERNAME"),
			Email:    v.GetString("SEED_ADMIN_EMAIL"),
			Password: v.GetString("SEED_ADMIN_PASSWORD"),
			FullName: v.GetString("SEED_ADMIN_FULL_NAME"),
		},
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is not set"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is not set"))
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("token expiries must be positive"))
	}
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_URI and MONGO_DATABASE are required for the mongo store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, errors.New("STORE_DRIVER must be mongo or memory"))
	}
	switch c.ProfileStorage {
	case StorageB2:
		if c.B2KeyID == "" || c.B2AppKey == "" || c.B2Bucket == "" {
			errs = append(errs, errors.New("B2_KEY_ID, B2_APP_KEY and B2_BUCKET are required for b2 storage"))
		}
	case StorageLocal:
	default:
		errs = append(errs, errors.New("PROFILE_STORAGE must be local or b2"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
