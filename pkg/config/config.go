package config

import (
	"net/url"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Unbounded disables the reconnect attempt cap.
const Unbounded = -1

// Config is the notification client configuration.
// Field names in YAML follow the wire names of the JSON config.
type Config struct {
	APIURL        string `env:"NOTIFY_API_URL" yaml:"apiUrl"`
	UserID        string `env:"NOTIFY_USER_ID" yaml:"userId"`
	DepartmentIDs IDList `env:"NOTIFY_DEPARTMENT_IDS" envSeparator:"," yaml:"departmentIds"`

	AppKey    string `env:"NOTIFY_APP_KEY" yaml:"appKey"`
	AppSecret string `env:"NOTIFY_APP_SECRET" yaml:"appSecret"`

	AutoConnect   bool `env:"NOTIFY_AUTO_CONNECT" yaml:"autoConnect"`
	AutoReconnect bool `env:"NOTIFY_AUTO_RECONNECT" yaml:"autoReconnect"`

	// MaxReconnectAttempts caps consecutive retries. Unbounded (-1) never
	// stops and 0 never retries. A struct literal that omits it therefore
	// disables retries; start from Default() to get the unbounded default.
	MaxReconnectAttempts int           `env:"NOTIFY_MAX_RECONNECT_ATTEMPTS" yaml:"maxReconnectAttempts"`
	ReconnectDelay       time.Duration `env:"NOTIFY_RECONNECT_DELAY" yaml:"reconnectDelay"`
	MaxReconnectDelay    time.Duration `env:"NOTIFY_MAX_RECONNECT_DELAY" yaml:"maxReconnectDelay"`

	IdleTimeout    time.Duration `env:"NOTIFY_IDLE_TIMEOUT" yaml:"idleTimeout"`
	RequestTimeout time.Duration `env:"NOTIFY_REQUEST_TIMEOUT" yaml:"requestTimeout"`

	LogLevel  string `env:"NOTIFY_LOG_LEVEL" yaml:"logLevel"`
	LogFormat string `env:"NOTIFY_LOG_FORMAT" yaml:"logFormat"`
}

// Default returns a config with every optional field set to its default.
// APIURL and UserID are left empty.
func Default() Config {
	return Config{
		AutoConnect:          true,
		AutoReconnect:        true,
		MaxReconnectAttempts: Unbounded,
		ReconnectDelay:       time.Second,
		MaxReconnectDelay:    30 * time.Second,
		RequestTimeout:       10 * time.Second,
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

// WithDefaults returns a copy of c with zero reconnect delays and request
// timeout replaced by their defaults. Booleans and MaxReconnectAttempts are
// left as they are, since their zero values are meaningful.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = d.ReconnectDelay
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = max(d.MaxReconnectDelay, c.ReconnectDelay)
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	return c
}

// Validate checks required fields and the reconnect bounds.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return &ConfigError{Field: "apiUrl", Reason: "is required"}
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{Field: "apiUrl", Reason: "must be an absolute http or https URL"}
	}
	if strings.TrimSpace(c.UserID) == "" {
		return &ConfigError{Field: "userId", Reason: "is required"}
	}
	if c.MaxReconnectAttempts < Unbounded {
		return &ConfigError{Field: "maxReconnectAttempts", Reason: "must be -1 (unbounded) or non-negative"}
	}
	if c.ReconnectDelay <= 0 {
		return &ConfigError{Field: "reconnectDelay", Reason: "must be positive"}
	}
	if c.MaxReconnectDelay <= 0 {
		return &ConfigError{Field: "maxReconnectDelay", Reason: "must be positive"}
	}
	if c.MaxReconnectDelay < c.ReconnectDelay {
		return &ConfigError{Field: "maxReconnectDelay", Reason: "must not be lower than reconnectDelay"}
	}
	if c.IdleTimeout < 0 {
		return &ConfigError{Field: "idleTimeout", Reason: "must not be negative"}
	}
	if c.RequestTimeout < 0 {
		return &ConfigError{Field: "requestTimeout", Reason: "must not be negative"}
	}
	return nil
}

// IDList holds department ids. Every entry may itself be a comma-separated
// list; Values flattens it.
type IDList []string

// Values returns the trimmed, non-empty ids.
func (l IDList) Values() []string {
	var out []string
	for _, v := range l {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// UnmarshalYAML accepts either a scalar or a sequence.
func (l *IDList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = IDList{s}.Values()
		return nil
	default:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*l = IDList(list).Values()
		return nil
	}
}
