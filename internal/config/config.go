// Package config assembles the application configuration from defaults,
// a .env file, environment variables and command line flags, in increasing
// order of priority, and validates the result.
package config

import (
	"flag"
	"log"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the readify process.
type Config struct {
	// DatabaseDSN is the MongoDB connection URI. When empty the process
	// falls back to the file or in-memory backend.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// DatabaseName is the logical database the collections live in.
	DatabaseName string `env:"DATABASE_NAME" validate:"required"`

	// DBFileName is the JSON snapshot file used by the file backend.
	DBFileName string `env:"FILE_STORAGE_PATH" validate:"omitempty,filepath"`

	LogLevel string `env:"LOG_LEVEL" validate:"loglevel"`

	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`
}

var defaultConfig = Config{
	DatabaseDSN:         "",
	DatabaseName:        "readify",
	DBFileName:          "",
	LogLevel:            "info",
	DBConnectionTimeout: 10 * time.Second,
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (values *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(values)
}

// InitOption defines a functional option for configuring the config assembly.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips command line flag parsing, which tests need
// because the flag package may only parse os.Args once.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New assembles and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "MongoDB connection URI")
		flag.StringVar(&values.DatabaseName, "n", values.DatabaseName, "database name")
		flag.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with database snapshot")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.DurationVar(&values.DBConnectionTimeout, "t", values.DBConnectionTimeout, "database connection timeout")
		flag.Parse()
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	if valuesFromEnv.DatabaseDSN != "" {
		values.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DatabaseName != "" {
		values.DatabaseName = valuesFromEnv.DatabaseName
	}

	if valuesFromEnv.DBFileName != "" {
		values.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
