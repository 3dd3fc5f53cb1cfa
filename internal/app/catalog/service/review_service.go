package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"productsapp/internal/app/catalog/entity"
	"productsapp/internal/app/catalog/repository"
	"productsapp/internal/app/catalog/util"
	"productsapp/pkg/logger"
	"productsapp/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewService обрабатывает бизнес-логику отзывов.
// Все мутации, затрагивающие обе коллекции (отзыв + список reviews товара),
// выполняются внутри одной транзакции через TxManager
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	links       *LinkMaintainer
	guard       *Guard
	tx          repository.TxManager
	cache       util.ProductCache
	producer    util.MessagePublisher
	validator   *FieldValidator
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	links *LinkMaintainer,
	guard *Guard,
	tx repository.TxManager,
	cache util.ProductCache,
	producer util.MessagePublisher,
	validator *FieldValidator,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		links:       links,
		guard:       guard,
		tx:          tx,
		cache:       cache,
		producer:    producer,
		validator:   validator,
	}
}

// List возвращает все отзывы с минимальной проекцией товара
func (s *ReviewService) List(ctx context.Context) ([]entity.ReviewWithProductRef, error) {
	reviews, err := s.reviewRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	productIDs := make([]primitive.ObjectID, 0, len(reviews))
	seen := make(map[primitive.ObjectID]bool)
	for i := range reviews {
		if !seen[reviews[i].ProductID] {
			seen[reviews[i].ProductID] = true
			productIDs = append(productIDs, reviews[i].ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get products for reviews: %w", err)
	}

	refs := make(map[primitive.ObjectID]*entity.ProductRef, len(products))
	for i := range products {
		refs[products[i].ID] = &entity.ProductRef{
			ID:    products[i].ID,
			Title: products[i].Title,
			Price: products[i].Price,
		}
	}

	result := make([]entity.ReviewWithProductRef, 0, len(reviews))
	for i := range reviews {
		result = append(result, entity.ReviewWithProductRef{
			Review:  reviews[i],
			Product: refs[reviews[i].ProductID],
		})
	}

	return result, nil
}

// Get возвращает отзыв вместе с полной публичной проекцией товара
func (s *ReviewService) Get(ctx context.Context, id string) (*entity.ReviewWithProduct, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapReviewErr(err)
	}

	result := &entity.ReviewWithProduct{Review: *review}

	product, err := s.productRepo.GetByID(ctx, review.ProductID.Hex())
	if err == nil {
		result.Product = product.Public()
	} else if !errors.Is(err, repository.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to get product for review: %w", err)
	}

	return result, nil
}

// Create создает отзыв и прикрепляет его к товару одной транзакцией:
// проверка существования товара, проверка уникальности, вставка отзыва
// и обновление списка reviews товара коммитятся или откатываются вместе.
// Отзыв-сирота без ссылки из товара невозможен
func (s *ReviewService) Create(ctx context.Context, principalID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	if vErr := s.validator.Check(req); vErr != nil {
		return nil, vErr
	}

	authorID, err := s.guard.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	review := &entity.Review{
		Rating:  req.Rating,
		Comment: req.Comment,
		UserID:  authorID,
	}

	err = s.tx.RunAtomic(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.GetByID(txCtx, req.ProductID)
		if err != nil {
			return err
		}
		review.ProductID = product.ID

		if err := s.links.RejectDuplicateReview(txCtx, authorID, product.ID); err != nil {
			return err
		}

		if err := s.reviewRepo.Create(txCtx, review); err != nil {
			return err
		}

		return s.links.AttachReview(txCtx, product.ID, review.ID)
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound), errors.Is(err, repository.ErrInvalidID):
			return nil, ErrProductNotFound
		case errors.Is(err, ErrDuplicateReview), errors.Is(err, repository.ErrDuplicateReview):
			// Проигравший гонку дубликат получает Conflict от уникального индекса
			metrics.ReviewConflicts.Inc()
			return nil, ErrDuplicateReview
		default:
			return nil, fmt.Errorf("failed to create review: %w", err)
		}
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))
	s.invalidateCache(ctx)
	s.publishReviewEvent(ctx, "REVIEW_CREATED", review)

	return review, nil
}

// Update обновляет rating и comment отзыва с проверкой авторства.
// Товар и автор отзыва неизменяемы: переданные в запросе значения игнорируются
func (s *ReviewService) Update(ctx context.Context, principalID string, id string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapReviewErr(err)
	}

	if err := s.guard.Authorize(ctx, principalID, review.UserID); err != nil {
		return nil, err
	}

	if vErr := s.validator.Check(req); vErr != nil {
		return nil, vErr
	}

	review.Rating = req.Rating
	review.Comment = req.Comment

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	return review, nil
}

// Delete удаляет отзыв и снимает ссылку на него из товара одной транзакцией.
// Отсутствие товара не ошибка: каскадное удаление уже привело ссылки
// в консистентное состояние, остаётся удалить сам отзыв
func (s *ReviewService) Delete(ctx context.Context, principalID string, id string) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return s.mapReviewErr(err)
	}

	if err := s.guard.Authorize(ctx, principalID, review.UserID); err != nil {
		return err
	}

	err = s.tx.RunAtomic(ctx, func(txCtx context.Context) error {
		if err := s.links.DetachReview(txCtx, review.ProductID, review.ID); err != nil {
			return err
		}

		return s.reviewRepo.Delete(txCtx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	metrics.ReviewsDeleted.WithLabelValues("author").Inc()
	s.invalidateCache(ctx)
	s.publishReviewEvent(ctx, "REVIEW_DELETED", review)

	return nil
}

func (s *ReviewService) mapReviewErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrReviewNotFound):
		return ErrReviewNotFound
	case errors.Is(err, repository.ErrInvalidID):
		return ErrInvalidID
	default:
		return fmt.Errorf("failed to get review: %w", err)
	}
}

func (s *ReviewService) invalidateCache(ctx context.Context) {
	// Список reviews входит в кешируемую проекцию товара
	if err := s.cache.DeleteProducts(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate products cache")
	}
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Ошибки продюсера не прерывают запрос - мутация уже закоммичена
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType: eventType,
		ReviewID:  review.ID.Hex(),
		ProductID: review.ProductID.Hex(),
		UserID:    review.UserID.Hex(),
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal review event")
		return
	}

	if err := s.producer.PublishMessage(ctx, event.ReviewID, data); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish review event")
	}
}
