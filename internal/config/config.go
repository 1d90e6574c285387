// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"server_address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// JWTSecret signs and verifies bearer tokens.
	JWTSecret string `json:"jwt_secret"`

	// AdminToken guards the system-wide maintenance endpoints. Empty
	// leaves them disabled.
	AdminToken string `json:"admin_token"`

	// LogLevel is a zap level name such as "info" or "debug".
	LogLevel string `json:"log_level"`

	// SweepEveryMinutes is the period of the status refresh and retention
	// sweep. Zero disables the in-process sweeper.
	SweepEveryMinutes int `json:"sweep_interval_minutes"`

	// RetentionDays is how long expired medicines are kept before the sweep
	// removes them.
	RetentionDays int `json:"retention_days"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// SweepInterval returns the sweep period as a duration.
func (o *Options) SweepInterval() time.Duration {
	return time.Duration(o.SweepEveryMinutes) * time.Minute
}

// RetentionWindow returns the retention window as a duration.
func (o *Options) RetentionWindow() time.Duration {
	return time.Duration(o.RetentionDays) * 24 * time.Hour
}

// TLSEnabled reports whether both certificate paths are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Address, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.JWTSecret, "j", "", "jwt signing secret")
	flag.StringVar(&options.AdminToken, "admin-token", "", "token for the maintenance endpoints, empty disables them")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.IntVar(&options.SweepEveryMinutes, "sweep-every", 60, "status and retention sweep period in minutes, 0 disables")
	flag.IntVar(&options.RetentionDays, "retention-days", 15, "days an expired medicine is kept before cleanup")
	flag.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	flag.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the optional JSON config file and
// environment variables, in that order of increasing precedence.
func Parse() (*Options, error) {
	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := loadFile(options, options.Config); err != nil {
		return nil, err
	}
	if err := applyEnv(options, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := options.validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// loadFile overlays the JSON file at path onto o. A missing file is ignored.
func loadFile(o *Options, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

// applyEnv overrides o with the environment variables that are set.
func applyEnv(o *Options, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SERVER_ADDRESS": &o.Address,
		"DATABASE_DSN":   &o.DatabaseDSN,
		"JWT_SECRET":     &o.JWTSecret,
		"ADMIN_TOKEN":    &o.AdminToken,
		"LOG_LEVEL":      &o.LogLevel,
		"TLS_CERT":       &o.TLSCert,
		"TLS_KEY":        &o.TLSKey,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SWEEP_INTERVAL_MINUTES": &o.SweepEveryMinutes,
		"RETENTION_DAYS":         &o.RetentionDays,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

func (o *Options) validate() error {
	if o.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required (-j or JWT_SECRET)")
	}
	if o.SweepEveryMinutes < 0 {
		return fmt.Errorf("sweep interval must not be negative")
	}
	if o.RetentionDays < 1 {
		return fmt.Errorf("retention window must be at least one day")
	}
	return nil
}
