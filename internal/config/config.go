// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
//
// Конфиг читается из YAML-файла, путь к которому задаётся переменной CONFIG_PATH.
// Секреты можно переопределить переменными окружения.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvProd is the environment name that hides internal error details from clients.
const EnvProd = "prod"

// Config общая структура для хранения настроек
type Config struct {
	Env                     string          `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string          `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
	JWTToken                JWTToken        `yaml:"jwttoken"`
	SMTP                    SMTP            `yaml:"smtp"`
	Twilio                  Twilio          `yaml:"twilio"`
	Notifications           Notifications   `yaml:"notifications"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
	RateLimit               RateLimit       `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"60s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"120s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кеш.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

// JWTToken структура для работы с jwt-токенами
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	AccessTTL    time.Duration `yaml:"access_ttl" env-default:"1h"`
	RefreshTTL   time.Duration `yaml:"refresh_ttl" env-default:"720h"`
}

// SMTP настройки почтового транспорта.
type SMTP struct {
	Host     string        `yaml:"host" env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	Port     string        `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string        `yaml:"user" env:"SMTP_USER"`
	Password string        `yaml:"password" env:"SMTP_PASSWORD"`
	From     string        `yaml:"from" env:"SMTP_FROM"`
	FromName string        `yaml:"from_name" env-default:"eReceipt"`
	Timeout  time.Duration `yaml:"timeout" env-default:"30s"`
	Insecure bool          `yaml:"insecure"` // no STARTTLS, local relays only
}

// Configured reports whether credentials for the SMTP server are present.
func (s SMTP) Configured() bool {
	return s.User != "" && s.Password != ""
}

// Sender returns the envelope sender address.
func (s SMTP) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.User
}

// Twilio настройки SMS-провайдера.
type Twilio struct {
	AccountSID string        `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string        `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN"`
	FromNumber string        `yaml:"from_number" env:"TWILIO_PHONE_NUMBER"`
	BaseURL    string        `yaml:"base_url" env-default:"https://api.twilio.com"`
	Timeout    time.Duration `yaml:"timeout" env-default:"30s"`
}

// Configured reports whether the account credentials and sender number are present.
func (t Twilio) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != ""
}

// Notifications общие настройки отправки чеков.
type Notifications struct {
	DefaultCountryCode   string `yaml:"default_country_code" env-default:"+1"`
	BusinessFallbackName string `yaml:"business_fallback_name" env-default:"eReceipt"`
	TestEmail            string `yaml:"test_email" env:"TEST_EMAIL"`
	TestPhone            string `yaml:"test_phone" env:"TEST_PHONE_NUMBER"`
}

// RabbitMQ настройки брокера для журнала доставки. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// RateLimit параметры ограничения частоты запросов.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"20"`
	Burst int     `yaml:"burst" env-default:"40"`
}

// Load читает конфиг по указанному пути.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"HTTPServer: %s (timeout %s, idle %s)\n"+
			"Redis: %s db=%d\n"+
			"JWT: secret=%s access=%s refresh=%s\n"+
			"SMTP: %s:%s user=%s password=%s\n"+
			"Twilio: sid=%s token=%s from=%s\n"+
			"RabbitMQ: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.HTTPServer.AddressHTTP, c.HTTPServer.TimeoutHTTP, c.HTTPServer.IdleTimeout,
		c.RedisConnection.AddressRedis, c.RedisConnection.DB,
		mask(c.JWTToken.JWTSecretKey), c.JWTToken.AccessTTL, c.JWTToken.RefreshTTL,
		c.SMTP.Host, c.SMTP.Port, c.SMTP.User, mask(c.SMTP.Password),
		c.Twilio.AccountSID, mask(c.Twilio.AuthToken), c.Twilio.FromNumber,
		mask(c.RabbitMQ.URL),
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
