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

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов.
// Уникальный составной индекс (user, product) гарантирует не больше одного
// отзыва на товар от пользователя даже при конкурирующих вставках:
// из двух гонящихся транзакций закоммитится максимум одна
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uniqueIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user", Value: 1},
			{Key: "product", Value: 1},
		},
		Options: options.Index().SetName("user_product_unique_idx").SetUnique(true),
	}

	if _, err := collection.Indexes().CreateOne(ctx, uniqueIndex); err != nil {
		logger.Warn().Err(err).Msg("failed to create unique index on reviews (user, product)")
	}

	// Индекс по product для каскадного удаления и выборки отзывов товара
	productIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "product", Value: 1}},
		Options: options.Index().SetName("product_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, productIndex); err != nil {
		logger.Warn().Err(err).Msg("failed to create index on reviews.product")
	}

	return &reviewRepository{collection: collection}
}

// Create создает новый отзыв
// Возвращает ErrDuplicateReview при нарушении уникальности (user, product)
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "reviews")
	result, err := r.collection.InsertOne(ctx, review)
	timer.ObserveDuration()
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReview
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetByID получает отзыв по ID
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// GetAll получает все отзывы, отсортированные по дате создания
func (r *reviewRepository) GetAll(ctx context.Context) ([]entity.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "reviews")
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// GetByProductID получает все отзывы на товар
func (r *reviewRepository) GetByProductID(ctx context.Context, productID primitive.ObjectID) ([]entity.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"product": productID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// Update обновляет rating и comment отзыва
// Поля product и user неизменяемы и в патч не входят
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"updated_at": review.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Delete удаляет отзыв
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// DeleteByProductID удаляет все отзывы на товар одним батчем
// Используется при каскадном удалении товара
func (r *reviewRepository) DeleteByProductID(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpDelete, "reviews")
	result, err := r.collection.DeleteMany(ctx, bson.M{"product": productID})
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpDelete)
		return 0, fmt.Errorf("failed to delete reviews by product: %w", err)
	}

	return result.DeletedCount, nil
}

// ExistsByUserAndProduct проверяет, оставлял ли пользователь отзыв на товар
func (r *reviewRepository) ExistsByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	filter := bson.M{"user": userID, "product": productID}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}

	return count > 0, nil
}
