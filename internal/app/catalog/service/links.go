package service

import (
	"context"
	"errors"
	"fmt"

	"productsapp/internal/app/catalog/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LinkMaintainer - единственный писатель поля reviews у товаров.
// Поддерживает инвариант: список reviews товара равен множеству отзывов,
// ссылающихся на этот товар. Вся логика двусторонних ссылок собрана здесь,
// а не размазана по сервисам: у поля один писатель и одна точка правды.
// Методы вызываются внутри RunAtomic вместе с мутациями коллекции reviews
type LinkMaintainer struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
}

func NewLinkMaintainer(productRepo repository.ProductRepository, reviewRepo repository.ReviewRepository) *LinkMaintainer {
	return &LinkMaintainer{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
	}
}

// RejectDuplicateReview возвращает ErrDuplicateReview, если пользователь
// уже оставлял отзыв на товар. Вызывается до вставки отзыва; гонку двух
// одновременных вставок добивает уникальный индекс (user, product)
func (lm *LinkMaintainer) RejectDuplicateReview(ctx context.Context, userID, productID primitive.ObjectID) error {
	exists, err := lm.reviewRepo.ExistsByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate review: %w", err)
	}

	if exists {
		return ErrDuplicateReview
	}

	return nil
}

// AttachReview добавляет ID отзыва в список reviews товара.
// Идемпотентен: повторный вызов с тем же reviewID не создает дубликатов.
// Товар должен существовать - иначе ErrProductNotFound
func (lm *LinkMaintainer) AttachReview(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	if err := lm.productRepo.AddReview(ctx, productID, reviewID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to attach review: %w", err)
	}

	return nil
}

// DetachReview убирает ID отзыва из списка reviews товара.
// Отсутствие товара - no-op: каскадное удаление уже сняло ссылку.
// Отсутствие записи в списке - тоже no-op, не ошибка
func (lm *LinkMaintainer) DetachReview(ctx context.Context, productID, reviewID primitive.ObjectID) error {
	if err := lm.productRepo.RemoveReview(ctx, productID, reviewID); err != nil {
		return fmt.Errorf("failed to detach review: %w", err)
	}

	return nil
}

// CascadeDeleteReviews удаляет все отзывы на товар одним батчем.
// Вызывается в одной транзакции с удалением самого товара
func (lm *LinkMaintainer) CascadeDeleteReviews(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	deleted, err := lm.reviewRepo.DeleteByProductID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to cascade delete reviews: %w", err)
	}

	return deleted, nil
}
