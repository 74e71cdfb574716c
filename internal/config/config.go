package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	gbytes "github.com/labstack/gommon/bytes"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// EnvPrefix is prepended to every environment override, e.g.
// CONTACTGW_HTTP_ADDR for http.addr.
const EnvPrefix = "CONTACTGW"

// ---- Root ----

type Config struct {
	HTTP       HTTPConfig      `mapstructure:"http"`
	MySQL      DatabaseConfig  `mapstructure:"mysql"`
	ClickHouse DatabaseConfig  `mapstructure:"clickhouse"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	Inference  InferenceConfig `mapstructure:"inference"`
	Cleaner    CleanerConfig   `mapstructure:"cleaner"`
	Upload     UploadConfig    `mapstructure:"upload"`
	Cache      CacheConfig     `mapstructure:"cache"`
	SMTP       SMTPConfig      `mapstructure:"smtp"`
	Notify     NotifyConfig    `mapstructure:"notify"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Log        LogConfig       `mapstructure:"log"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

// Enabled reports whether a DSN was configured. Stores without a DSN are
// skipped by serve, which then runs without audit rows or reports.
func (c DatabaseConfig) Enabled() bool { return c.DSN != "" }

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	GroupID        string   `mapstructure:"group_id"`
	MinBytes       int      `mapstructure:"min_bytes"`
	MaxBytes       int      `mapstructure:"max_bytes"`
	CommitInterval int      `mapstructure:"commit_interval_ms"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold" yaml:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"    yaml:"open_for_ms"`
}

const (
	KindHuggingFace = "huggingface"
	KindOpenAI      = "openai"
)

type ProviderConfig struct {
	Name      string        `mapstructure:"name"`
	Kind      string        `mapstructure:"kind"`
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	Token     string        `mapstructure:"token"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

type InferenceConfig struct {
	Timeout   time.Duration    `mapstructure:"timeout"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

type CleanerConfig struct {
	AIEnabled   bool    `mapstructure:"ai_enabled"`
	Temperature float32 `mapstructure:"temperature"`
}

type UploadConfig struct {
	MaxSize string `mapstructure:"max_size"`
}

// MaxBytes parses MaxSize ("10MiB", "512KiB"...). KB and MB are decimal units.
func (c UploadConfig) MaxBytes() (int64, error) {
	n, err := gbytes.Parse(c.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("upload.max_size %q: %w", c.MaxSize, err)
	}
	return n, nil
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

const (
	NotifyModeSMTP   = "smtp"
	NotifyModeOutbox = "outbox"
)

type NotifyConfig struct {
	Mode  string `mapstructure:"mode"`
	Topic string `mapstructure:"topic"`
}

type RateLimitConfig struct {
	RPS    int           `mapstructure:"rps"`
	Window time.Duration `mapstructure:"window"`
}

type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (CONTACTGW_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read %s: %w", path, err)
			}
		}
	}

	// env override (CONTACTGW_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
