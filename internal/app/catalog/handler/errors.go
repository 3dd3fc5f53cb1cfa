package handler

import (
	"errors"
	"net/http"

	"productsapp/internal/app/catalog/entity"
	"productsapp/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
)

// writeServiceError транслирует ошибки сервисного слоя в HTTP-статусы.
// Unauthorized намеренно не сводится к NotFound: чужой ресурс виден,
// но недоступен для изменения
func writeServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, entity.ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: vErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid ID format"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "Access denied"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Invalid email or password"})
	case errors.Is(err, service.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Invalid or expired refresh token"})
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Account not found"})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Product not found"})
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Review not found"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "Email already registered"})
	case errors.Is(err, service.ErrDuplicateReview):
		c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "Review for this product already exists"})
	default:
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Internal server error"})
	}
}
