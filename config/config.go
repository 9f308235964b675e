package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	ServerName  string         `mapstructure:"server_name" yaml:"server_name"`
	Version     string         `mapstructure:"version" yaml:"version"`
	Environment string         `mapstructure:"environment" yaml:"environment"`
	Port        int            `mapstructure:"port" yaml:"port"`
	Postgres    PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Redis       RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Consul      ConsulConfig   `mapstructure:"consul" yaml:"consul"`
	RocketMQ    RocketMQConfig `mapstructure:"rocketmq" yaml:"rocketmq"`
	Auth        AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Session     SessionConfig  `mapstructure:"session" yaml:"session"`
	Worker      WorkerConfig   `mapstructure:"worker" yaml:"worker"`
	Paystack    PaystackConfig `mapstructure:"paystack" yaml:"paystack"`
	Push        PushConfig     `mapstructure:"push" yaml:"push"`
}

type PostgresConfig struct {
	Address  string        `mapstructure:"address" yaml:"address"`
	Port     int           `mapstructure:"port" yaml:"port"`
	User     string        `mapstructure:"user" yaml:"user"`
	Password string        `mapstructure:"password" yaml:"password"`
	DBName   string        `mapstructure:"db_name" yaml:"db_name"`
	MaxIdle  int           `mapstructure:"max_idle" yaml:"max_idle"`
	MaxOpen  int           `mapstructure:"max_open" yaml:"max_open"`
	MaxLife  time.Duration `mapstructure:"max_life" yaml:"max_life"`
}

type RedisConfig struct {
	Address      string        `mapstructure:"address" yaml:"address"`
	Port         int           `mapstructure:"port" yaml:"port"`
	Password     string        `mapstructure:"password" yaml:"password"`
	Database     int           `mapstructure:"database" yaml:"database"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries" yaml:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size" yaml:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`
	RateLimitQPS int           `mapstructure:"rate_limit_qps" yaml:"rate_limit_qps"`
}

type ConsulConfig struct {
	Address    string `mapstructure:"address" yaml:"address"`
	Scheme     string `mapstructure:"scheme" yaml:"scheme"`
	Datacenter string `mapstructure:"datacenter" yaml:"datacenter"`
}

type RocketMQConfig struct {
	NameServers   []string `mapstructure:"name_servers" yaml:"name_servers"`
	MaxRetries    int      `mapstructure:"max_retries" yaml:"max_retries"`
	GroupName     string   `mapstructure:"group_name" yaml:"group_name"`
	ConsumerGroup string   `mapstructure:"consumer_group" yaml:"consumer_group"`
}

type AuthConfig struct {
	JwtSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	ExpireH   int    `mapstructure:"expire_h" yaml:"expire_h"`
}

// SessionConfig carries the metering thresholds. Values are whole seconds
// because billing is truncated to whole seconds anyway.
type SessionConfig struct {
	TherapistDelaySec       int   `mapstructure:"therapist_delay_sec" yaml:"therapist_delay_sec"`
	UserInactiveSec         int   `mapstructure:"user_inactive_sec" yaml:"user_inactive_sec"`
	WeeklyFreeCreditSeconds int64 `mapstructure:"weekly_free_credit_seconds" yaml:"weekly_free_credit_seconds"`
}

type WorkerConfig struct {
	Enabled    bool `mapstructure:"enabled" yaml:"enabled"`
	IntervalMS int  `mapstructure:"interval_ms" yaml:"interval_ms"`
}

type PaystackConfig struct {
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`
	SecretKey   string `mapstructure:"secret_key" yaml:"secret_key"`
	CallbackURL string `mapstructure:"callback_url" yaml:"callback_url"`
}

type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key" yaml:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key" yaml:"vapid_private_key"`
	Subscriber      string `mapstructure:"subscriber" yaml:"subscriber"`
}

func LoadConfig() (*AppConfig, error) {
	var config AppConfig

	viper.SetConfigFile("config/config.yml")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return &config, err
	}
	if err := viper.Unmarshal(&config); err != nil {
		return &config, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server_name", "we-listen")
	viper.SetDefault("port", 5000)
	viper.SetDefault("session.therapist_delay_sec", 30)
	viper.SetDefault("session.user_inactive_sec", 300)
	viper.SetDefault("session.weekly_free_credit_seconds", 9000)
	viper.SetDefault("worker.enabled", true)
	viper.SetDefault("worker.interval_ms", 5000)
	viper.SetDefault("paystack.base_url", "https://api.paystack.co")
}
