package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	pkgconfig "recycleadmin/pkg/config"
)

// QRConfig 积分二维码配置
type QRConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
	Size   int           `yaml:"size"`
}

// NotifyConfig 操作员通知配置
type NotifyConfig struct {
	Feed     string        `yaml:"feed"`
	TTL      time.Duration `yaml:"ttl"`
	Capacity int64         `yaml:"capacity"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// OutboxConfig 事件投递配置（worker 使用）
type OutboxConfig struct {
	Interval   time.Duration `yaml:"interval"`
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
}

type Config struct {
	Server pkgconfig.ServerConfig `yaml:"server"`
	DB     pkgconfig.DBConfig     `yaml:"db"`
	Redis  pkgconfig.RedisConfig  `yaml:"redis"`
	MQ     pkgconfig.MQConfig     `yaml:"mq"`
	Store  pkgconfig.StoreConfig  `yaml:"store"`
	QR     QRConfig               `yaml:"qr"`
	Notify NotifyConfig           `yaml:"notify"`
	Log    LogConfig              `yaml:"log"`
	CORS   CORSConfig             `yaml:"cors"`
	Outbox OutboxConfig           `yaml:"outbox"`
}

// Load 读取 CONFIG_DIR 下的多环境配置并应用环境变量覆盖
func Load() (*Config, error) {
	dir := pkgconfig.GetEnv("CONFIG_DIR", "config")
	raw, err := pkgconfig.LoadConfig(pkgconfig.GetConfigEnv(), dir)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := pkgconfig.Decode(raw, cfg); err != nil {
		return nil, err
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 返回各项默认值，yaml 中缺省的字段保持这些值
func Default() *Config {
	return &Config{
		Server: pkgconfig.ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		DB:    pkgconfig.DBConfig{Host: "localhost", Port: 5432, SSLMode: "disable", MaxConns: 10},
		Redis: pkgconfig.RedisConfig{Addr: "localhost:6379"},
		MQ:    pkgconfig.MQConfig{Queue: "schedule.status_changed.audit"},
		Store: pkgconfig.StoreConfig{
			Timeout: 10 * time.Second,
			Breaker: pkgconfig.BreakerConfig{FailureThreshold: 5, SuccessThreshold: 2, Timeout: 30 * time.Second},
		},
		QR:     QRConfig{TTL: 60 * time.Second, Size: 200},
		Notify: NotifyConfig{Feed: "dashboard", TTL: 5 * time.Second, Capacity: 50},
		Log:    LogConfig{Level: "info"},
		Outbox: OutboxConfig{Interval: time.Second, BatchSize: 100, MaxRetries: 5},
	}
}

// Validate 检查启动必需项
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.BaseURL) == "" {
		return fmt.Errorf("store.base_url is required")
	}
	if c.QR.Secret == "" {
		return fmt.Errorf("qr.secret is required")
	}
	if c.QR.TTL <= 0 {
		return fmt.Errorf("qr.ttl must be positive")
	}
	return nil
}

func overrideFromEnv(cfg *Config) {
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideStoreFromEnv(&cfg.Store)

	if secret := os.Getenv("QR_SECRET"); secret != "" {
		cfg.QR.Secret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}
