package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"productsapp/internal/app/catalog/entity"
	"productsapp/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context) ([]entity.ReviewWithProductRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewWithProductRef), args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, id string) (*entity.ReviewWithProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewWithProduct), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, principalID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, principalID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, principalID string, id string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, principalID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, principalID string, id string) error {
	args := m.Called(ctx, principalID, id)
	return args.Error(0)
}

func setupReviewRouter(svc ReviewServiceInterface, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewReviewHandler(svc)

	authed := func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}

	router.GET("/reviews", h.GetAllReviews)
	router.GET("/reviews/:id", h.GetReview)
	router.POST("/reviews", authed, h.CreateReview)
	router.PATCH("/reviews/:id", authed, h.UpdateReview)
	router.DELETE("/reviews/:id", authed, h.DeleteReview)

	return router
}

func TestGetAllReviews_Success(t *testing.T) {
	mockService := new(MockReviewService)
	productID := primitive.NewObjectID()
	reviews := []entity.ReviewWithProductRef{
		{
			Review:  entity.Review{ID: primitive.NewObjectID(), Rating: 5, ProductID: productID},
			Product: &entity.ProductRef{ID: productID, Title: "Tablet", Price: 199.99},
		},
	}
	mockService.On("List", mock.Anything).Return(reviews, nil)

	router := setupReviewRouter(mockService, "")
	req, _ := http.NewRequest(http.MethodGet, "/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.ReviewListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Tablet", resp.Reviews[0].Product.Title)
}

func TestCreateReview_Created(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	productID := primitive.NewObjectID()
	review := &entity.Review{ID: primitive.NewObjectID(), Rating: 5, Comment: "Great", ProductID: productID}

	mockService := new(MockReviewService)
	mockService.On("Create", mock.Anything, userID, mock.AnythingOfType("*entity.CreateReviewRequest")).Return(review, nil)

	router := setupReviewRouter(mockService, userID)
	body, _ := json.Marshal(entity.CreateReviewRequest{Rating: 5, Comment: "Great", ProductID: productID.Hex()})
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReview_Duplicate(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	mockService := new(MockReviewService)
	mockService.On("Create", mock.Anything, userID, mock.Anything).Return(nil, service.ErrDuplicateReview)

	router := setupReviewRouter(mockService, userID)
	body, _ := json.Marshal(entity.CreateReviewRequest{Rating: 5, Comment: "Again", ProductID: primitive.NewObjectID().Hex()})
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateReview_ProductGone(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	mockService := new(MockReviewService)
	mockService.On("Create", mock.Anything, userID, mock.Anything).Return(nil, service.ErrProductNotFound)

	router := setupReviewRouter(mockService, userID)
	body, _ := json.Marshal(entity.CreateReviewRequest{Rating: 4, Comment: "x", ProductID: primitive.NewObjectID().Hex()})
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReview_Unauthenticated(t *testing.T) {
	mockService := new(MockReviewService)

	router := setupReviewRouter(mockService, "")
	body, _ := json.Marshal(entity.CreateReviewRequest{Rating: 5, Comment: "x", ProductID: primitive.NewObjectID().Hex()})
	req, _ := http.NewRequest(http.MethodPost, "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Create")
}

func TestUpdateReview_Forbidden(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	mockService := new(MockReviewService)
	mockService.On("Update", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil, service.ErrUnauthorized)

	router := setupReviewRouter(mockService, userID)
	body, _ := json.Marshal(entity.UpdateReviewRequest{Rating: 1, Comment: "sabotage"})
	req, _ := http.NewRequest(http.MethodPatch, "/reviews/"+primitive.NewObjectID().Hex(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteReview_NotFound(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	mockService := new(MockReviewService)
	mockService.On("Delete", mock.Anything, userID, mock.Anything).Return(service.ErrReviewNotFound)

	router := setupReviewRouter(mockService, userID)
	req, _ := http.NewRequest(http.MethodDelete, "/reviews/"+primitive.NewObjectID().Hex(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
