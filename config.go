package ntfy

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"ntfy/internal/queue"
	"ntfy/internal/stream"
)

// Config carries everything a Client needs. It can be populated directly or
// loaded from the environment with LoadConfig, which follows 12-factor
// conventions: OS environment first, then an optional .env file.
type Config struct {
	// BaseURL is the ntfy server, e.g. "https://ntfy.sh".
	BaseURL string `envconfig:"NTFY_BASE_URL" validate:"required,url"`
	// DefaultTopic is used when an operation is given no topic.
	DefaultTopic string `envconfig:"NTFY_DEFAULT_TOPIC"`

	// Token is a bearer access token. Takes precedence over User/Pass.
	Token string `envconfig:"NTFY_TOKEN"`
	// User and Pass are HTTP basic credentials.
	User string `envconfig:"NTFY_USER"`
	Pass string `envconfig:"NTFY_PASS"`

	UserAgent   string        `envconfig:"NTFY_USER_AGENT" default:"ntfy-go/1.0"`
	HTTPTimeout time.Duration `envconfig:"NTFY_HTTP_TIMEOUT" default:"30s"`

	// Retry tuning for publish and poll calls.
	MaxRetries   int           `envconfig:"NTFY_MAX_RETRIES" default:"3"`
	RetryMinWait time.Duration `envconfig:"NTFY_RETRY_MIN_WAIT" default:"500ms"`
	RetryMaxWait time.Duration `envconfig:"NTFY_RETRY_MAX_WAIT" default:"10s"`

	// Subscription defaults; per-subscription overrides go through
	// SubscriptionConfig.
	QueueCapacity        int           `envconfig:"NTFY_QUEUE_CAPACITY" default:"64"`
	InactivityTimeout    time.Duration `envconfig:"NTFY_INACTIVITY_TIMEOUT" default:"2m"`
	ReconnectMinWait     time.Duration `envconfig:"NTFY_RECONNECT_MIN_WAIT" default:"500ms"`
	ReconnectMaxWait     time.Duration `envconfig:"NTFY_RECONNECT_MAX_WAIT" default:"30s"`
	MaxReconnectAttempts int           `envconfig:"NTFY_MAX_RECONNECT_ATTEMPTS" default:"0"` // 0 = retry forever

	// Logger receives structured logs; nil means slog.Default().
	Logger *slog.Logger `ignored:"true" validate:"-"`
}

// LoadConfig populates a Config from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables always win over .env values.
func LoadConfig() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("ntfy: load config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewClientFromEnv is shorthand for LoadConfig followed by NewClient.
func NewClientFromEnv() (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewClient(cfg)
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return fmt.Errorf("ntfy: invalid config: %w", err)
	}
	return nil
}

// Credentials derives the access credentials from the config. Token wins
// over basic credentials, matching the header precedence.
func (c *Config) Credentials() Credentials {
	if c.Token != "" {
		return BearerAuth(c.Token)
	}
	if c.User != "" {
		return BasicAuth(c.User, c.Pass)
	}
	return Credentials{}
}

// SubscriptionDefaults maps the config's subscription tunables into a
// SubscriptionConfig.
func (c *Config) SubscriptionDefaults() SubscriptionConfig {
	return SubscriptionConfig{
		QueueCapacity: c.QueueCapacity,
		Backoff: stream.Backoff{
			Min:         c.ReconnectMinWait,
			Max:         c.ReconnectMaxWait,
			MaxAttempts: c.MaxReconnectAttempts,
		},
		InactivityTimeout: c.InactivityTimeout,
	}
}

// applyDefaults fills zero values with the documented defaults, so configs
// built directly in code behave like env-loaded ones.
func (c *Config) applyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = "ntfy-go/1.0"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.RetryMinWait <= 0 {
		c.RetryMinWait = 500 * time.Millisecond
	}
	if c.RetryMaxWait <= 0 {
		c.RetryMaxWait = 10 * time.Second
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = queue.DefaultCapacity
	}
	if c.InactivityTimeout <= 0 {
		c.InactivityTimeout = stream.DefaultInactivityTimeout
	}
	if c.ReconnectMinWait <= 0 {
		c.ReconnectMinWait = 500 * time.Millisecond
	}
	if c.ReconnectMaxWait <= 0 {
		c.ReconnectMaxWait = 30 * time.Second
	}
}
