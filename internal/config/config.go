// Package config loads the service configuration from command-line flags
// and environment variables, with flags providing the defaults and the
// environment taking precedence. An optional .env file is honored.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	RunAddr                   string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel                  string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName                string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN               string        `env:"DATABASE_DSN"`
	DBConnectionTimeout       time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir             string        `env:"MIGRATIONS_DIR"`
	SessionTTL                time.Duration `env:"SESSION_TTL"`
	AuthCookieName            string        `env:"AUTH_COOKIE_NAME" validate:"required"`
	AuthTokenSigningSecretKey string        `env:"AUTH_TOKEN_SIGNING_SECRET_KEY" validate:"required,base64url"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	DBFileName:          "",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	MigrationsDir:       "cmd/backoffice/migrations",
	SessionTTL:          24 * time.Hour,
	AuthCookieName:      "backoffice_session",
	// Development fallback only, override it in production.
	AuthTokenSigningSecretKey: "c2Vzc2lvbi1zaWduaW5nLWtleQ==",
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption configures the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing,
// which is useful in tests where os.Args is owned by the test binary.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func applyDefaults(target *Config, defaults Config) {
	*target = defaults
}

func mergeFromEnv(target *Config) error {
	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return err
	}

	if valuesFromEnv.RunAddr != "" {
		target.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		target.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DBFileName != "" {
		target.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.DatabaseDSN != "" {
		target.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		target.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.MigrationsDir != "" {
		target.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.SessionTTL != 0 {
		target.SessionTTL = valuesFromEnv.SessionTTL
	}

	if valuesFromEnv.AuthCookieName != "" {
		target.AuthCookieName = valuesFromEnv.AuthCookieName
	}

	if valuesFromEnv.AuthTokenSigningSecretKey != "" {
		target.AuthTokenSigningSecretKey = valuesFromEnv.AuthTokenSigningSecretKey
	}

	return nil
}

// New builds the configuration from defaults, command-line flags,
// a .env file and process environment variables, then validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with database")
		flag.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "a string with the database connection details")
		flag.StringVar(&values.MigrationsDir, "m", values.MigrationsDir, "directory with goose migrations")
		flag.DurationVar(&values.SessionTTL, "s", values.SessionTTL, "lifetime of a login session")
		flag.Parse()
	}

	if err := mergeFromEnv(values); err != nil {
		return nil, err
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
