package handler

import (
	"context"
	"net/http"

	"productsapp/internal/app/catalog/entity"

	"github.com/gin-gonic/gin"
)

type ReviewServiceInterface interface {
	List(ctx context.Context) ([]entity.ReviewWithProductRef, error)
	Get(ctx context.Context, id string) (*entity.ReviewWithProduct, error)
	Create(ctx context.Context, principalID string, req *entity.CreateReviewRequest) (*entity.Review, error)
	Update(ctx context.Context, principalID string, id string, req *entity.UpdateReviewRequest) (*entity.Review, error)
	Delete(ctx context.Context, principalID string, id string) error
}

// ReviewHandler обрабатывает HTTP запросы к отзывам
type ReviewHandler struct {
	reviewService ReviewServiceInterface
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GetAllReviews возвращает все отзывы с краткой информацией о товаре
func (h *ReviewHandler) GetAllReviews(c *gin.Context) {
	reviews, err := h.reviewService.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews: reviews,
		Total:   len(reviews),
	})
}

// GetReview возвращает отзыв по ID вместе с товаром
func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.reviewService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// CreateReview создает отзыв на товар от имени текущего пользователя.
// Повторный отзыв того же пользователя на тот же товар отклоняется
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// UpdateReview обновляет оценку и комментарий отзыва. Разрешено только автору
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview удаляет отзыв. Разрешено только автору
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Review deleted successfully"})
}
