package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Cron      CronConfig      `mapstructure:"cron"`
	Inference InferenceConfig `mapstructure:"inference"`
	Ingestion IngestionConfig `mapstructure:"ingestion"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Stats     StatsConfig     `mapstructure:"stats"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	DailyStats string `mapstructure:"daily_stats"`
}

// InferenceConfig selects and tunes the model backend behind the analyzer.
type InferenceConfig struct {
	Backend        string        `mapstructure:"backend"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	SentimentModel string        `mapstructure:"sentiment_model"`
	ZeroShotModel  string        `mapstructure:"zero_shot_model"`
	ChatModel      string        `mapstructure:"chat_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	Threshold      float64       `mapstructure:"threshold"`
	MaxLabels      int           `mapstructure:"max_labels"`
}

type IngestionConfig struct {
	DescriptionPrefixRunes int `mapstructure:"description_prefix_runes"`
}

type CacheConfig struct {
	// Driver is "none", "memory" or "redis".
	Driver   string        `mapstructure:"driver"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type NotifyConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Sentiments []string      `mapstructure:"sentiments"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type StatsConfig struct {
	LookbackDays int `mapstructure:"lookback_days"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8000")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.daily_stats", "0 */30 * * * *")

	v.SetDefault("inference.backend", "hf")
	v.SetDefault("inference.base_url", "")
	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.sentiment_model", "lxyuan/distilbert-base-multilingual-cased-sentiments-student")
	v.SetDefault("inference.zero_shot_model", "facebook/bart-large-mnli")
	v.SetDefault("inference.chat_model", "gpt-4o-mini")
	v.SetDefault("inference.timeout", "30s")
	v.SetDefault("inference.max_retries", 3)
	v.SetDefault("inference.max_concurrency", 4)
	v.SetDefault("inference.threshold", 0.5)
	v.SetDefault("inference.max_labels", 3)

	v.SetDefault("ingestion.description_prefix_runes", 50)

	v.SetDefault("cache.driver", "none")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.sentiments", []string{"Negativo"})
	v.SetDefault("notify.timeout", "5s")

	v.SetDefault("stats.lookback_days", 30)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
