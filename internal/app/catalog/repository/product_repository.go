package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"productsapp/internal/app/catalog/entity"
	"productsapp/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{collection: db.Collection("products")}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "products")
	result, err := r.collection.InsertOne(ctx, product)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}

	return nil
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var product entity.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// GetByIDs получает товары по списку ID (для джойна со списком отзывов)
func (r *productRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// GetAll получает все товары, отсортированные по дате создания
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "products")
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// UpdateFields патчит только title/description/price.
// Поле reviews намеренно не трогается - его пишет LinkMaintainer
func (r *productRepository) UpdateFields(ctx context.Context, id string, title, description string, price float64) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	update := bson.M{
		"$set": bson.M{
			"title":       title,
			"description": description,
			"price":       price,
			"updated_at":  time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// AddReview добавляет ID отзыва в список reviews товара.
// $addToSet создает список при отсутствии и не добавляет дубликатов,
// поэтому повторный вызов с тем же reviewID безопасен
func (r *productRepository) AddReview(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	update := bson.M{"$addToSet": bson.M{"reviews": reviewID}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return fmt.Errorf("failed to attach review to product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// RemoveReview убирает ID отзыва из списка reviews товара.
/// Отсутствие товара или отсутствие записи в списке не является ошибкой:
// каскадное удаление могло уже убрать и то и другое
func (r *productRepository) RemoveReview(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"reviews": reviewID}}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, update); err != nil {
		return fmt.Errorf("failed to detach review from product: %w", err)
	}

	return nil
}

// Delete удаляет товар
func (r *productRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpDelete, "products")
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpDelete)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}
