// Package config loads client and server settings from defaults, an
// optional YAML file, a .env file, INVOICEKEEPER_* environment variables
// and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iudanet/invoicekeeper/internal/logger"
)

const (
	// AppName используется для каталогов XDG
	AppName = "invoicekeeper"

	// EnvPrefix is the prefix of environment overrides, e.g. INVOICEKEEPER_ENDPOINT
	EnvPrefix = "INVOICEKEEPER"

	// EnvFile is loaded from the working directory when present
	EnvFile = ".env"
)

// Ключи конфигурации
const (
	KeyEndpoint      = "endpoint"
	KeyTimeout       = "timeout"
	KeyDBPath        = "db"
	KeyLockTimeout   = "lock_timeout"
	KeyProbeInterval = "probe.interval"
	KeyProbeTimeout  = "probe.timeout"
	KeyAddress       = "address"
	KeyRateLimit     = "rate_limit.rps"
	KeyRateBurst     = "rate_limit.burst"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogFile       = "log.file"
	KeyLogMaxSize    = "log.max_size_mb"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age_days"
	KeyLogCompress   = "log.compress"
)

// ClientConfig holds the settings of the command line client
type ClientConfig struct {
	Endpoint      string
	DBPath        string
	Log           logger.Options
	Timeout       time.Duration
	LockTimeout   time.Duration
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
}

// ServerConfig holds the settings of the development backend
type ServerConfig struct {
	Address   string
	DBPath    string
	Log       logger.Options
	RateLimit float64
	RateBurst int
}

// DefaultClientDBPath returns the bolt file location under XDG_DATA_HOME
func DefaultClientDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "client.db")
}

// DefaultServerDBPath returns the sqlite file location under XDG_DATA_HOME
func DefaultServerDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "server.db")
}

// LoadClient reads the client configuration. configFile may be empty to
// look for config.yaml in the XDG config directory; flags may be nil.
func LoadClient(configFile string, flags *pflag.FlagSet) (*ClientConfig, error) {
	v := newViper()
	v.SetDefault(KeyEndpoint, "http://localhost:8080/exec")
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyDBPath, DefaultClientDBPath())
	v.SetDefault(KeyLockTimeout, time.Second)
	v.SetDefault(KeyProbeInterval, 15*time.Second)
	v.SetDefault(KeyProbeTimeout, 5*time.Second)
	setLogDefaults(v)

	if err := load(v, configFile, flags); err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		Endpoint:      strings.TrimSpace(v.GetString(KeyEndpoint)),
		Timeout:       v.GetDuration(KeyTimeout),
		DBPath:        v.GetString(KeyDBPath),
		LockTimeout:   v.GetDuration(KeyLockTimeout),
		ProbeInterval: v.GetDuration(KeyProbeInterval),
		ProbeTimeout:  v.GetDuration(KeyProbeTimeout),
		Log:           logOptions(v),
	}

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyEndpoint)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", KeyTimeout, cfg.Timeout)
	}
	if cfg.ProbeInterval <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", KeyProbeInterval, cfg.ProbeInterval)
	}
	if cfg.LockTimeout <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %s", KeyLockTimeout, cfg.LockTimeout)
	}

	return cfg, nil
}

// LoadServer reads the backend configuration
func LoadServer(configFile string, flags *pflag.FlagSet) (*ServerConfig, error) {
	v := newViper()
	v.SetDefault(KeyAddress, ":8080")
	v.SetDefault(KeyDBPath, DefaultServerDBPath())
	v.SetDefault(KeyRateLimit, 10.0)
	v.SetDefault(KeyRateBurst, 20)
	setLogDefaults(v)

	if err := load(v, configFile, flags); err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		Address:   v.GetString(KeyAddress),
		DBPath:    v.GetString(KeyDBPath),
		RateLimit: v.GetFloat64(KeyRateLimit),
		RateBurst: v.GetInt(KeyRateBurst),
		Log:       logOptions(v),
	}

	if cfg.RateLimit <= 0 || cfg.RateBurst <= 0 {
		return nil, fmt.Errorf("rate limit must be positive")
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setLogDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSize, 10)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAge, 28)
	v.SetDefault(KeyLogCompress, false)
}

func logOptions(v *viper.Viper) logger.Options {
	return logger.Options{
		Level:      v.GetString(KeyLogLevel),
		Format:     v.GetString(KeyLogFormat),
		File:       v.GetString(KeyLogFile),
		MaxSizeMB:  v.GetInt(KeyLogMaxSize),
		MaxBackups: v.GetInt(KeyLogMaxBackups),
		MaxAgeDays: v.GetInt(KeyLogMaxAge),
		Compress:   v.GetBool(KeyLogCompress),
	}
}

// load applies .env, the config file and the flags to v
func load(v *viper.Viper, configFile string, flags *pflag.FlagSet) error {
	// Переменные окружения имеют приоритет над .env
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", EnvFile, err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if flags == nil {
		return nil
	}

	// Флаги называются так же, как ключи, но с дефисами вместо точек
	for _, key := range v.AllKeys() {
		flag := flags.Lookup(strings.NewReplacer(".", "-", "_", "-").Replace(key))
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	return nil
}
