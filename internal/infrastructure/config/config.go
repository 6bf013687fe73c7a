package config

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	rterrors "github.com/valentine-ezugu/xflowapp-sub001/pkg/errors"
)

// Config represents application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Session  SessionConfig  `mapstructure:"session"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Status   StatusConfig   `mapstructure:"status"`
}

// AppConfig represents application configuration
type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// SessionConfig selects where the current session comes from
type SessionConfig struct {
	Source   string `mapstructure:"source"` // "static" or "mongodb"
	Token    string `mapstructure:"token"`
	UserID   int64  `mapstructure:"user_id"`
	DeviceID string `mapstructure:"device_id"`
}

// MongoDBConfig represents MongoDB configuration
type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

// NATSConfig represents NATS JetStream configuration
type NATSConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URL               string        `mapstructure:"url"`
	StreamName        string        `mapstructure:"stream_name"`
	SubjectPrefix     string        `mapstructure:"subject_prefix"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReconnectAttempts int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	PublishTimeout    time.Duration `mapstructure:"publish_timeout"`
}

// StatusConfig represents the status HTTP server configuration
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Session sources
const (
	SessionSourceStatic  = "static"
	SessionSourceMongoDB = "mongodb"
)

// loadEnvFile manually loads environment variables from .env file
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig() (*Config, error) {
	// Load .env file manually first
	if _, err := os.Stat(".env"); err == nil {
		if err := loadEnvFile(); err != nil {
			return nil, rterrors.NewConfigurationError("failed to read .env", err)
		}
	}

	v := viper.New()

	// Set default values first
	setDefaults(v)

	// Bind environment variables
	bindEnvVars(v)

	// Read environment variables automatically
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, rterrors.NewConfigurationError("failed to unmarshal config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration for values the realtime layer cannot run with
func (c *Config) Validate() error {
	if err := c.Realtime.Validate(); err != nil {
		return err
	}

	switch c.Session.Source {
	case SessionSourceStatic:
	case SessionSourceMongoDB:
		if c.Session.DeviceID == "" {
			return rterrors.NewConfigurationError("session.device_id is required for the mongodb session source", nil)
		}
	default:
		return rterrors.NewConfigurationError("unknown session source "+c.Session.Source, nil)
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return rterrors.NewConfigurationError("nats.url is required when nats is enabled", nil)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")

	// Realtime defaults
	for key, value := range RealtimeDefaults() {
		v.SetDefault("realtime."+key, value)
	}

	// Session defaults
	v.SetDefault("session.source", SessionSourceStatic)

	// MongoDB defaults
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "xflow")
	v.SetDefault("mongodb.connect_timeout", "10s")
	v.SetDefault("mongodb.max_pool_size", 20)

	// NATS defaults
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.stream_name", "XFLOW_REALTIME")
	v.SetDefault("nats.subject_prefix", "xflow")
	v.SetDefault("nats.connect_timeout", "10s")
	v.SetDefault("nats.reconnect_attempts", 10)
	v.SetDefault("nats.reconnect_delay", "2s")
	v.SetDefault("nats.publish_timeout", "5s")

	// Status server defaults
	v.SetDefault("status.enabled", true)
	v.SetDefault("status.addr", ":8081")
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.log_level", "LOG_LEVEL")

	// Realtime
	v.BindEnv("realtime.url", "REALTIME_WS_URL")
	v.BindEnv("realtime.base_delay", "REALTIME_BASE_DELAY")
	v.BindEnv("realtime.max_delay", "REALTIME_MAX_DELAY")
	v.BindEnv("realtime.reconnect_jitter", "REALTIME_RECONNECT_JITTER")
	v.BindEnv("realtime.handshake_timeout", "REALTIME_HANDSHAKE_TIMEOUT")
	v.BindEnv("realtime.ping_interval", "REALTIME_PING_INTERVAL")
	v.BindEnv("realtime.read_timeout", "REALTIME_READ_TIMEOUT")
	v.BindEnv("realtime.write_timeout", "REALTIME_WRITE_TIMEOUT")

	// Session
	v.BindEnv("session.source", "SESSION_SOURCE")
	v.BindEnv("session.token", "SESSION_TOKEN")
	v.BindEnv("session.user_id", "SESSION_USER_ID")
	v.BindEnv("session.device_id", "SESSION_DEVICE_ID")

	// MongoDB
	v.BindEnv("mongodb.uri", "MONGO_URI")
	v.BindEnv("mongodb.database", "MONGO_DATABASE")
	v.BindEnv("mongodb.connect_timeout", "MONGO_CONNECT_TIMEOUT")
	v.BindEnv("mongodb.max_pool_size", "MONGO_MAX_POOL_SIZE")

	// NATS
	v.BindEnv("nats.enabled", "NATS_ENABLED")
	v.BindEnv("nats.url", "NATS_URL")
	v.BindEnv("nats.stream_name", "NATS_STREAM_NAME")
	v.BindEnv("nats.subject_prefix", "NATS_SUBJECT_PREFIX")
	v.BindEnv("nats.connect_timeout", "NATS_CONNECT_TIMEOUT")
	v.BindEnv("nats.reconnect_attempts", "NATS_RECONNECT_ATTEMPTS")
	v.BindEnv("nats.reconnect_delay", "NATS_RECONNECT_DELAY")
	v.BindEnv("nats.publish_timeout", "NATS_PUBLISH_TIMEOUT")

	// Status
	v.BindEnv("status.enabled", "STATUS_ENABLED")
	v.BindEnv("status.addr", "STATUS_ADDR")
}
