package service

import (
	"context"
	"errors"
	"testing"

	"productsapp/internal/app/catalog/repository"
	"productsapp/internal/app/catalog/repository/mocks"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRejectDuplicateReview_NoDuplicate(t *testing.T) {
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	links := NewLinkMaintainer(productRepo, reviewRepo)

	ctx := context.Background()
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	reviewRepo.On("ExistsByUserAndProduct", ctx, userID, productID).Return(false, nil)

	err := links.RejectDuplicateReview(ctx, userID, productID)

	assert.NoError(t, err)
}

func TestRejectDuplicateReview_Duplicate(t *testing.T) {
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	links := NewLinkMaintainer(productRepo, reviewRepo)

	ctx := context.Background()
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	reviewRepo.On("ExistsByUserAndProduct", ctx, userID, productID).Return(true, nil)

	err := links.RejectDuplicateReview(ctx, userID, productID)

	assert.ErrorIs(t, err, ErrDuplicateReview)
}

func TestAttachReview_Success(t *testing.T) {
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	links := NewLinkMaintainer(productRepo, reviewRepo)

	ctx := context.Background()
	productID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()

	productRepo.On("AddReview", ctx, productID, reviewID).Return(nil)

	err := links.AttachReview(ctx, productID, reviewID)

	assert.NoError(t, err)
}

func TestAttachReview_ProductGone(t *testing.T) {
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	links := NewLinkMaintainer(productRepo, reviewRepo)

	ctx := context.Background()
	productID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()

	productRepo.On("AddReview", ctx, productID, reviewID).Return(repository.ErrProductNotFound)

	err := links.AttachReview(ctx, productID, reviewID)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDetachReview_Success(t *testing.T) {
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	links := NewLinkMaintainer(productRepo, reviewRepo)

	ctx := context.Background()
	productID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()

	productRepo.On("RemoveReview", ctx, productID, reviewID).Return(nil)

	err := links.DetachReview(ctx, productID, reviewID)

	assert.NoError(t, err)
}

func TestDetachReview_StorageError(t *testing.T) {
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	links := NewLinkMaintainer(productRepo, reviewRepo)

	ctx := context.Background()
	productID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()

	productRepo.On("RemoveReview", ctx, productID, reviewID).Return(errors.New("connection lost"))

	err := links.DetachReview(ctx, productID, reviewID)

	assert.Error(t, err)
}

func TestCascadeDeleteReviews_Success(t *testing.T) {
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	links := NewLinkMaintainer(productRepo, reviewRepo)

	ctx := context.Background()
	productID := primitive.NewObjectID()

	reviewRepo.On("DeleteByProductID", ctx, productID).Return(int64(3), nil)

	deleted, err := links.CascadeDeleteReviews(ctx, productID)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestCascadeDeleteReviews_NoReviews(t *testing.T) {
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	links := NewLinkMaintainer(productRepo, reviewRepo)

	ctx := context.Background()
	productID := primitive.NewObjectID()

	reviewRepo.On("DeleteByProductID", ctx, productID).Return(int64(0), nil)

	deleted, err := links.CascadeDeleteReviews(ctx, productID)

	assert.NoError(t, err)
	assert.Zero(t, deleted)
}
