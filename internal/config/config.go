// Package config はアプリケーション設定の読み込みと検証を提供します。
// 値はデフォルト、設定ファイル（YAML）、環境変数の順に上書きされます。
// 環境変数名はキーの"."を"_"に置き換えた大文字です（例: db.host → DB_HOST）。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Search    SearchConfig    `mapstructure:"search"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Retrain   RetrainConfig   `mapstructure:"retrain"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type DBConfig struct {
	Driver         string        `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	SSLMode        string        `mapstructure:"sslmode"`
	InstanceName   string        `mapstructure:"instance_connection_name"`
	SQLitePath     string        `mapstructure:"sqlite_path"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	MaxOpenConns   int           `mapstructure:"max_open_conns" validate:"min=0"`
	RunMigrations  bool          `mapstructure:"run_migrations"`
}

// RedisConfig はキャッシュ設定です。Hostが空の場合キャッシュは無効です。
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
	// Timezone はキャッシュの有効期限（翌日0時）を計算するタイムゾーンです。
	Timezone string `mapstructure:"timezone"`
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

type SearchConfig struct {
	MatchEmptyQuery bool `mapstructure:"match_empty_query"`
	MaxResults      int  `mapstructure:"max_results" validate:"min=1,max=10"`
}

type ForecastConfig struct {
	// Seed が0の場合は起動時刻から生成します。
	Seed uint64 `mapstructure:"seed"`
}

type AuthConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret" validate:"required_if=RequireForTraining true"`
	TokenTTL           time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	RequireForTraining bool          `mapstructure:"require_for_training"`
}

type RateLimitConfig struct {
	// TrainingPerMinute が0の場合、学習エンドポイントは制限しません。
	TrainingPerMinute int `mapstructure:"training_per_minute" validate:"min=0"`
	Burst             int `mapstructure:"burst" validate:"min=1"`
}

// KafkaConfig はイベント送信設定です。Brokersが空の場合送信しません。
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic" validate:"required"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	// Async がtrueの場合、送信はリクエストを待たせない
	Async bool `mapstructure:"async"`
}

type GeminiConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type RetrainConfig struct {
	PerMinute int `mapstructure:"per_minute" validate:"min=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "stock_forecast")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.instance_connection_name", "")
	v.SetDefault("db.sqlite_path", "stock_forecast.db")
	v.SetDefault("db.connect_timeout", 60*time.Second)
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.run_migrations", true)

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.timezone", "UTC")

	v.SetDefault("search.match_empty_query", true)
	v.SetDefault("search.max_results", 10)

	v.SetDefault("forecast.seed", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.require_for_training", false)

	v.SetDefault("ratelimit.training_per_minute", 10)
	v.SetDefault("ratelimit.burst", 3)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "forecast.generated")
	v.SetDefault("kafka.write_timeout", 5*time.Second)
	v.SetDefault("kafka.async", true)

	v.SetDefault("gemini.enabled", false)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", 30*time.Second)

	v.SetDefault("retrain.per_minute", 60)
}

var validate = validator.New()

// Load reads configuration from the optional YAML file at path and the environment.
// An empty path skips the file; a missing file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 既存デプロイで使われている名前も受け付ける
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)

	if err := validate.Struct(&cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// compact trims entries and drops empty ones ("" from an unset env var).
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
