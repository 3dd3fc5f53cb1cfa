package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"productsapp/internal/app/catalog/entity"
	"productsapp/pkg/logger"
	"productsapp/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type accountRepository struct {
	collection *mongo.Collection
}

// NewAccountRepository создает новый репозиторий аккаунтов
// Автоматически создает уникальный индекс по email
func NewAccountRepository(db *mongo.Database) AccountRepository {
	collection := db.Collection("accounts")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique_idx").SetUnique(true),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать - не прерываем работу
		logger.Warn().Err(err).Msg("failed to create unique index on accounts.email")
	}

	return &accountRepository{collection: collection}
}

// Create создает новый аккаунт
// Возвращает ErrEmailTaken если email уже занят (уникальный индекс)
func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	account.CreatedAt = time.Now()

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "accounts")
	result, err := r.collection.InsertOne(ctx, account)
	timer.ObserveDuration()
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create account: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		account.ID = oid
	}

	return nil
}

// GetByID получает аккаунт по ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var account entity.Account
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

// GetByEmail получает аккаунт по email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "accounts")
	var account entity.Account
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	timer.ObserveDuration()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return &account, nil
}
