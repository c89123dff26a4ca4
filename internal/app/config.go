package app

import "os"

// Config описывает настройки запуска сервиса.
type Config struct {
	// HTTPAddr — адрес REST API.
	HTTPAddr string
	// OpsAddr — адрес служебного сервера: метрики и health checks.
	OpsAddr string
	// PostgresDSN включает PostgreSQL-хранилище; пустое значение
	// означает хранилище в памяти.
	PostgresDSN string
	// KafkaBrokers — список брокеров через запятую; пустое значение
	// отключает публикацию событий.
	KafkaBrokers string
	// RedisAddr включает кэш товаров поверх основного хранилища.
	RedisAddr string
}

// DefaultConfig возвращает базовые адреса сервиса.
func DefaultConfig() Config {
	return Config{
		HTTPAddr: ":8080",
		OpsAddr:  ":9090",
	}
}

// FromEnv накладывает переменные окружения поверх значений по умолчанию.
func FromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("IMS_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("IMS_OPS_ADDR"); v != "" {
		cfg.OpsAddr = v
	}
	cfg.PostgresDSN = os.Getenv("IMS_POSTGRES_DSN")
	cfg.KafkaBrokers = os.Getenv("IMS_KAFKA_BROKERS")
	cfg.RedisAddr = os.Getenv("IMS_REDIS_ADDR")
	return cfg
}
