package handler

import (
	"context"
	"net/http"

	"productsapp/internal/app/catalog/entity"

	"github.com/gin-gonic/gin"
)

type ProductServiceInterface interface {
	List(ctx context.Context) ([]entity.PublicProduct, error)
	GetPublic(ctx context.Context, id string) (*entity.PublicProduct, error)
	Create(ctx context.Context, principalID string, req *entity.CreateProductRequest) (*entity.Product, error)
	Update(ctx context.Context, principalID string, id string, req *entity.UpdateProductRequest) (*entity.Product, error)
	Delete(ctx context.Context, principalID string, id string) error
}

// ProductHandler обрабатывает HTTP запросы к товарам.
// Чтение публично, мутации требуют аутентификации и владения товаром
type ProductHandler struct {
	productService ProductServiceInterface
}

func NewProductHandler(productService ProductServiceInterface) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetAllProducts возвращает список всех товаров без данных о владельцах
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	products, err := h.productService.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// GetProduct возвращает товар по ID
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct создает новый товар с текущим пользователем как владельцем
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	product, err := h.productService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct обновляет товар. Разрешено только владельцу
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	product, err := h.productService.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct удаляет товар вместе со всеми его отзывами.
// Разрешено только владельцу
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.productService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Product deleted successfully"})
}
