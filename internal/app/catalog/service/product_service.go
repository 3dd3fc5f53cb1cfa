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
)

const productsCacheTTL = time.Hour

// ProductService обрабатывает бизнес-логику товаров.
// Координирует Guard, LinkMaintainer, репозитории, Redis кеш и Kafka
type ProductService struct {
	productRepo repository.ProductRepository
	links       *LinkMaintainer
	guard       *Guard
	tx          repository.TxManager
	cache       util.ProductCache
	producer    util.MessagePublisher
	validator   *FieldValidator
}

func NewProductService(
	productRepo repository.ProductRepository,
	links *LinkMaintainer,
	guard *Guard,
	tx repository.TxManager,
	cache util.ProductCache,
	producer util.MessagePublisher,
	validator *FieldValidator,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		links:       links,
		guard:       guard,
		tx:          tx,
		cache:       cache,
		producer:    producer,
		validator:   validator,
	}
}

// List возвращает публичные проекции всех товаров с кешированием в Redis
func (s *ProductService) List(ctx context.Context) ([]entity.PublicProduct, error) {
	cached, err := s.cache.GetProducts(ctx)
	if err == nil && cached != nil {
		return cached, nil
	}

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	public := make([]entity.PublicProduct, 0, len(products))
	for i := range products {
		public = append(public, *products[i].Public())
	}

	if err := s.cache.SetProducts(ctx, public, productsCacheTTL); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to cache products")
	}

	return public, nil
}

// Get возвращает товар целиком (включая владельца)
func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapProductErr(err)
	}

	return product, nil
}

// GetPublic возвращает публичную проекцию товара без проверки владения
func (s *ProductService) GetPublic(ctx context.Context, id string) (*entity.PublicProduct, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapProductErr(err)
	}

	return product.Public(), nil
}

// Create создает новый товар с владельцем = принципал
// Список отзывов нового товара пуст
func (s *ProductService) Create(ctx context.Context, principalID string, req *entity.CreateProductRequest) (*entity.Product, error) {
	if vErr := s.validator.Check(req); vErr != nil {
		return nil, vErr
	}

	ownerID, err := s.guard.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		UserID:      ownerID,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductsCreated.Inc()
	s.invalidateCache(ctx)
	s.publishProductEvent(ctx, "PRODUCT_CREATED", product)

	return product, nil
}

// Update обновляет title/description/price товара.
// Поле reviews не входит в патч и возвращается нетронутым
func (s *ProductService) Update(ctx context.Context, principalID string, id string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapProductErr(err)
	}

	if err := s.guard.Authorize(ctx, principalID, product.UserID); err != nil {
		return nil, err
	}

	if vErr := s.validator.Check(req); vErr != nil {
		return nil, vErr
	}

	if err := s.productRepo.UpdateFields(ctx, id, req.Title, req.Description, req.Price); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	product.Title = req.Title
	product.Description = req.Description
	product.Price = req.Price

	s.invalidateCache(ctx)
	s.publishProductEvent(ctx, "PRODUCT_UPDATED", product)

	return product, nil
}

// Delete удаляет товар вместе со всеми отзывами на него.
// Каскадное удаление отзывов и удаление товара - одна транзакция:
// конкурентный читатель не увидит товар без отзывов или отзывы без товара
func (s *ProductService) Delete(ctx context.Context, principalID string, id string) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return s.mapProductErr(err)
	}

	if err := s.guard.Authorize(ctx, principalID, product.UserID); err != nil {
		return err
	}

	var cascaded int64
	err = s.tx.RunAtomic(ctx, func(txCtx context.Context) error {
		deleted, err := s.links.CascadeDeleteReviews(txCtx, product.ID)
		if err != nil {
			return err
		}
		cascaded = deleted

		return s.productRepo.Delete(txCtx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			// Конкурентное удаление выиграло гонку
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	metrics.ProductsDeleted.Inc()
	metrics.ReviewsDeleted.WithLabelValues("cascade").Add(float64(cascaded))
	s.invalidateCache(ctx)
	s.publishProductEvent(ctx, "PRODUCT_DELETED", product)

	return nil
}

func (s *ProductService) mapProductErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, repository.ErrInvalidID):
		return ErrInvalidID
	default:
		return fmt.Errorf("failed to get product: %w", err)
	}
}

func (s *ProductService) invalidateCache(ctx context.Context) {
	if err := s.cache.DeleteProducts(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate products cache")
	}
}

// publishProductEvent отправляет событие о товаре в Kafka
// Ошибки продюсера не прерывают запрос - мутация уже закоммичена
func (s *ProductService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventType: eventType,
		ProductID: product.ID.Hex(),
		Title:     product.Title,
		Price:     product.Price,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal product event")
		return
	}

	if err := s.producer.PublishMessage(ctx, event.ProductID, data); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish product event")
	}
}
