package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Slack    SlackConfig
	Email    EmailConfig
	SMS      SMSConfig
	Blob     BlobConfig
	Dispatch DispatchConfig
	Sweeper  SweeperConfig
	Tracing  TracingConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
	Mode         string
	RatePerSec   float64
	RateBurst    int
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	Issuer    string
	ExpiresIn int
}

// SlackConfig holds Slack bot configuration
type SlackConfig struct {
	BotToken string
	Mock     bool
}

// EmailConfig holds SendGrid configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromName       string
	FromAddress    string
	Mock           bool
}

// SMSConfig holds SMS gateway-specific configuration
type SMSConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	FromNumber       string
	DefaultRegion    string
	Mock             bool
}

// BlobConfig holds the object storage used for broadcast media
type BlobConfig struct {
	Bucket   string
	Region   string
	Endpoint string
	URLTTL   time.Duration
}

// DispatchConfig tunes the broadcast fan-out
type DispatchConfig struct {
	Concurrency       int
	ChannelTimeout    time.Duration
	StaleSendingAfter time.Duration
	SlackRatePerSec   float64
	EmailRatePerSec   float64
	SMSRatePerSec     float64
}

// SweeperConfig holds the scheduled-dispatch sweeper configuration
type SweeperConfig struct {
	Schedule string
}

// TracingConfig holds OpenTelemetry exporter configuration
type TracingConfig struct {
	Endpoint    string
	ServiceName string
}

// Load loads configuration from environment variables and config files and
// checks what the long-running services need
func Load() (*Config, error) {
	config, err := Read()
	if err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Read loads configuration without validating it. Tools that only touch the
// store use it directly.
func Read() (*Config, error) {
	// A missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	config.Server.AllowedHosts = cleanList(config.Server.AllowedHosts)
	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"http://localhost:3000"})
	v.SetDefault("Server.Mode", "release")
	v.SetDefault("Server.RatePerSec", 20)
	v.SetDefault("Server.RateBurst", 40)
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "hostboard")
	v.SetDefault("MongoDB.Timeout", 10*time.Second)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.Issuer", "hostboard")
	v.SetDefault("JWT.ExpiresIn", 24*60*60)
	v.SetDefault("Slack.Mock", true)
	v.SetDefault("Email.FromName", "Host Board")
	v.SetDefault("Email.FromAddress", "no-reply@example.com")
	v.SetDefault("Email.Mock", true)
	v.SetDefault("SMS.DefaultRegion", "US")
	v.SetDefault("SMS.Mock", true)
	v.SetDefault("Blob.Region", "us-east-1")
	v.SetDefault("Blob.URLTTL", 7*24*time.Hour)
	v.SetDefault("Dispatch.Concurrency", 8)
	v.SetDefault("Dispatch.ChannelTimeout", 15*time.Second)
	v.SetDefault("Dispatch.StaleSendingAfter", 15*time.Minute)
	v.SetDefault("Dispatch.SlackRatePerSec", 1)
	v.SetDefault("Dispatch.EmailRatePerSec", 10)
	v.SetDefault("Dispatch.SMSRatePerSec", 5)
	v.SetDefault("Sweeper.Schedule", "@every 1m")
	v.SetDefault("Tracing.ServiceName", "hostboard-api")
	v.SetDefault("LogLevel", "info")

	// Conventional variable names accepted next to the derived SECTION_KEY ones
	aliases := map[string][]string{
		"Server.Port":         {"SERVER_PORT", "PORT"},
		"Server.AllowedHosts": {"SERVER_ALLOWEDHOSTS", "ALLOWED_ORIGINS"},
		"JWT.ExpiresIn":       {"JWT_EXPIRESIN", "JWT_EXPIRES_IN"},
		"LogLevel":            {"LOGLEVEL", "LOG_LEVEL"},
	}
	for key, envs := range aliases {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	// Keys without a default are invisible to Unmarshal unless bound to the environment
	for _, key := range []string{
		"Slack.BotToken",
		"Email.SendGridAPIKey",
		"SMS.TwilioAccountSID",
		"SMS.TwilioAuthToken",
		"SMS.FromNumber",
		"Blob.Bucket",
		"Blob.Endpoint",
		"Tracing.Endpoint",
	} {
		_ = v.BindEnv(key)
	}
}

// cleanList trims entries of a comma-separated env value and drops empty ones
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT.Secret is required")
	}
	if c.Dispatch.Concurrency < 1 {
		return fmt.Errorf("config: Dispatch.Concurrency must be at least 1")
	}
	if !c.Slack.Mock && c.Slack.BotToken == "" {
		return fmt.Errorf("config: Slack.BotToken is required unless Slack.Mock is set")
	}
	if !c.Email.Mock && c.Email.SendGridAPIKey == "" {
		return fmt.Errorf("config: Email.SendGridAPIKey is required unless Email.Mock is set")
	}
	if !c.SMS.Mock && (c.SMS.TwilioAccountSID == "" || c.SMS.TwilioAuthToken == "") {
		return fmt.Errorf("config: SMS Twilio credentials are required unless SMS.Mock is set")
	}
	return nil
}
