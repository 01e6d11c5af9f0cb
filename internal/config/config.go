// Package config загрузка конфигурации сервиса из TOML файла и переменных окружения
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

var (
	// ErrReadConfig ошибка чтения файла конфигурации
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrInvalidConfig конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid config")
)

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Redis          RedisConfig          `toml:"redis"`
	Locks          LocksConfig          `toml:"locks"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	PatientService PatientServiceConfig `toml:"patient_service"`
	TreatmentCycle TreatmentCycleConfig `toml:"treatment_cycle"`
}

// ServerConfig HTTP сервер; таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig подключение к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL строка подключения для golang-migrate
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// RedisConfig подключение к Redis (распределенные блокировки)
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// LocksConfig параметры блокировок; значения в миллисекундах
type LocksConfig struct {
	TTLMs           int `toml:"ttl_ms"`
	WaitTimeoutMs   int `toml:"wait_timeout_ms"`
	RetryIntervalMs int `toml:"retry_interval_ms"`
}

func (l LocksConfig) TTL() time.Duration { return time.Duration(l.TTLMs) * time.Millisecond }

func (l LocksConfig) WaitTimeout() time.Duration {
	return time.Duration(l.WaitTimeoutMs) * time.Millisecond
}

func (l LocksConfig) RetryInterval() time.Duration {
	return time.Duration(l.RetryIntervalMs) * time.Millisecond
}

// LogsConfig логирование
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// PatientServiceConfig реестр пациентов и счетчик циклов лечения
type PatientServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// TreatmentCycleConfig политика цикла лечения
type TreatmentCycleConfig struct {
	SessionsPerCycle int `toml:"sessions_per_cycle"`
	CycleDays        int `toml:"cycle_days"`
}

// Policy доменное представление
func (t TreatmentCycleConfig) Policy() domain.CyclePolicy {
	return domain.CyclePolicy{SessionsPerCycle: t.SessionsPerCycle, CycleDays: t.CycleDays}
}

// Load читает конфигурацию из TOML файла
// Секреты переопределяются переменными окружения (и .env файлом, если он есть):
// DB_PASSWORD, REDIS_PASSWORD, REDIS_URL
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Redis: RedisConfig{Addr: "127.0.0.1:6379"},
		Locks: LocksConfig{
			TTLMs:           10000,
			WaitTimeoutMs:   3000,
			RetryIntervalMs: 20,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "dialysis-service"},
		PatientService: PatientServiceConfig{
			Timeout: 5,
		},
		TreatmentCycle: TreatmentCycleConfig{
			SessionsPerCycle: domain.DefaultSessionsPerCycle,
			CycleDays:        domain.DefaultCycleDays,
		},
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: REDIS_URL: %v", ErrInvalidConfig, err)
		}
		c.Redis.Addr = u.Host
		if u.User != nil {
			c.Redis.Username = u.User.Username()
			if pw, ok := u.User.Password(); ok {
				c.Redis.Password = pw
			}
		}
	}
	return nil
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	switch {
	case c.Server.HTTPPort <= 0:
		return fmt.Errorf("%w: server.http_port must be positive", ErrInvalidConfig)
	case c.Database.Host == "":
		return fmt.Errorf("%w: database.host is required", ErrInvalidConfig)
	case c.Database.DBName == "":
		return fmt.Errorf("%w: database.dbname is required", ErrInvalidConfig)
	case c.Redis.Addr == "":
		return fmt.Errorf("%w: redis.addr is required", ErrInvalidConfig)
	case c.PatientService.URL == "":
		return fmt.Errorf("%w: patient_service.url is required", ErrInvalidConfig)
	case c.TreatmentCycle.SessionsPerCycle <= 0 || c.TreatmentCycle.CycleDays <= 0:
		return fmt.Errorf("%w: treatment_cycle values must be positive", ErrInvalidConfig)
	case c.Locks.TTLMs <= 0 || c.Locks.WaitTimeoutMs <= 0 || c.Locks.RetryIntervalMs <= 0:
		return fmt.Errorf("%w: locks values must be positive", ErrInvalidConfig)
	}
	return nil
}
