package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account - зарегистрированный пользователь
// PasswordHash никогда не сериализуется в ответах API
type Account struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"` // уникальный индекс
	PasswordHash string             `json:"-" bson:"password"`
	Name         string             `json:"name" bson:"name"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// Product - товар каталога
// Поле Reviews денормализовано: список ID отзывов на товар.
// Единственный писатель этого поля - LinkMaintainer (service/links.go)
type Product struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`             // до 100 символов
	Description string               `json:"description" bson:"description"` // до 500 символов
	Price       float64              `json:"price" bson:"price"`             // строго больше 0
	UserID      primitive.ObjectID   `json:"user_id" bson:"user"`            // владелец, назначается при создании
	Reviews     []primitive.ObjectID `json:"reviews" bson:"reviews,omitempty"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

// Public возвращает публичную проекцию товара (без владельца)
func (p *Product) Public() *PublicProduct {
	return &PublicProduct{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Reviews:     p.Reviews,
	}
}

// PublicProduct - проекция товара для неаутентифицированных запросов
type PublicProduct struct {
	ID          primitive.ObjectID   `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Price       float64              `json:"price"`
	Reviews     []primitive.ObjectID `json:"reviews"`
}

// Review - отзыв на товар
// ProductID и UserID неизменяемы после создания
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Rating    int                `json:"rating" bson:"rating"`   // оценка от 1 до 5
	Comment   string             `json:"comment" bson:"comment"` // до 500 символов
	ProductID primitive.ObjectID `json:"product_id" bson:"product"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ProductRef - минимальная проекция товара для списка отзывов
type ProductRef struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
	Price float64            `json:"price"`
}

// ReviewWithProduct - отзыв вместе с товаром, на который он оставлен
type ReviewWithProduct struct {
	Review
	Product *PublicProduct `json:"product,omitempty"`
}

// ReviewWithProductRef - отзыв с минимальной проекцией товара
type ReviewWithProductRef struct {
	Review
	Product *ProductRef `json:"product,omitempty"`
}

// ProductEvent - событие изменения товара для Kafka
type ProductEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// ReviewEvent - событие изменения отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_DELETED
	ReviewID  string    `json:"review_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
