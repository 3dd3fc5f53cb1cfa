package util

import (
	"context"
	"time"

	"productsapp/internal/app/catalog/entity"
)

// ProductCache интерфейс для работы с Redis кешем списка товаров
// Используется для dependency injection и упрощения тестирования
type ProductCache interface {
	SetProducts(ctx context.Context, products []entity.PublicProduct, ttl time.Duration) error
	GetProducts(ctx context.Context) ([]entity.PublicProduct, error)
	DeleteProducts(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
