package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	JWT     JWTConfig
	Audit   AuditConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

type MongoDBConfig struct {
	URI      string // URI подключения к MongoDB (replica set — нужны транзакции)
	Database string // Имя базы данных
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers      []string // Список брокеров Kafka (формат: host:port)
	ProductTopic string   // Топик для событий о товарах
	ReviewTopic  string   // Топик для событий об отзывах
}

type JWTConfig struct {
	Secret     string        // Секретный ключ для подписи JWT токенов
	AccessTTL  time.Duration // Время жизни access токена
	RefreshTTL time.Duration // Время жизни refresh токена
}

type AuditConfig struct {
	Enabled  bool   // Включает фоновую проверку ссылочной целостности
	Schedule string // Cron-расписание проверки
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
			Database: getEnv("MONGODB_DATABASE", "productsapp"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		Kafka: KafkaConfig{
			Brokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ProductTopic: getEnv("KAFKA_PRODUCT_TOPIC", "product_events"),
			ReviewTopic:  getEnv("KAFKA_REVIEW_TOPIC", "review_events"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			AccessTTL:  getDuration("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTTL: getDuration("JWT_REFRESH_TTL", 14*24*time.Hour),
		},
		Audit: AuditConfig{
			Enabled:  getEnv("LINK_AUDIT_ENABLED", "true") == "true",
			Schedule: getEnv("LINK_AUDIT_SCHEDULE", "@every 1h"),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
