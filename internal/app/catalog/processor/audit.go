package processor

import (
	"context"
	"fmt"

	"productsapp/internal/app/catalog/repository"
	"productsapp/pkg/logger"
	"productsapp/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditReport - результат одного прохода аудита ссылочной целостности
type AuditReport struct {
	ProductsScanned int
	ReviewsScanned  int
	// OrphanReviews - отзывы, чей товар больше не существует
	OrphanReviews []primitive.ObjectID
	// DanglingRefs - ссылки из products.reviews на несуществующие отзывы
	DanglingRefs []primitive.ObjectID
}

func (r *AuditReport) Clean() bool {
	return len(r.OrphanReviews) == 0 && len(r.DanglingRefs) == 0
}

// LinkAuditor проверяет согласованность двусторонних ссылок
// между товарами и отзывами. Только читает: найденные нарушения
// логируются и попадают в метрики, но не исправляются автоматически
type LinkAuditor struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
}

func NewLinkAuditor(productRepo repository.ProductRepository, reviewRepo repository.ReviewRepository) *LinkAuditor {
	return &LinkAuditor{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
	}
}

// Run выполняет полный проход аудита по обеим коллекциям
func (a *LinkAuditor) Run(ctx context.Context) (*AuditReport, error) {
	products, err := a.productRepo.GetAll(ctx)
	if err != nil {
		metrics.LinkAuditRuns.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("audit: failed to load products: %w", err)
	}

	reviews, err := a.reviewRepo.GetAll(ctx)
	if err != nil {
		metrics.LinkAuditRuns.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("audit: failed to load reviews: %w", err)
	}

	productIDs := make(map[primitive.ObjectID]bool, len(products))
	for i := range products {
		productIDs[products[i].ID] = true
	}

	reviewIDs := make(map[primitive.ObjectID]bool, len(reviews))
	for i := range reviews {
		reviewIDs[reviews[i].ID] = true
	}

	report := &AuditReport{
		ProductsScanned: len(products),
		ReviewsScanned:  len(reviews),
	}

	for i := range reviews {
		if !productIDs[reviews[i].ProductID] {
			report.OrphanReviews = append(report.OrphanReviews, reviews[i].ID)
			logger.Warn().
				Str("review_id", reviews[i].ID.Hex()).
				Str("product_id", reviews[i].ProductID.Hex()).
				Msg("audit: orphan review references missing product")
		}
	}

	for i := range products {
		for _, reviewID := range products[i].Reviews {
			if !reviewIDs[reviewID] {
				report.DanglingRefs = append(report.DanglingRefs, reviewID)
				logger.Warn().
					Str("product_id", products[i].ID.Hex()).
					Str("review_id", reviewID.Hex()).
					Msg("audit: product references missing review")
			}
		}
	}

	metrics.LinkAuditRuns.WithLabelValues("success").Inc()
	metrics.LinkAuditViolations.WithLabelValues("orphan_review").Add(float64(len(report.OrphanReviews)))
	metrics.LinkAuditViolations.WithLabelValues("dangling_ref").Add(float64(len(report.DanglingRefs)))

	if report.Clean() {
		logger.Info().
			Int("products", report.ProductsScanned).
			Int("reviews", report.ReviewsScanned).
			Msg("audit: links consistent")
	} else {
		logger.Error().
			Int("orphan_reviews", len(report.OrphanReviews)).
			Int("dangling_refs", len(report.DanglingRefs)).
			Msg("audit: link violations found")
	}

	return report, nil
}
