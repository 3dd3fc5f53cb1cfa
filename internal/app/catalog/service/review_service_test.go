package service

import (
	"context"
	"errors"
	"testing"

	"productsapp/internal/app/catalog/entity"
	"productsapp/internal/app/catalog/repository"
	"productsapp/internal/app/catalog/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reviewServiceMocks struct {
	reviewRepo  *mocks.MockReviewRepository
	productRepo *mocks.MockProductRepository
	accountRepo *mocks.MockAccountRepository
	tx          *mocks.MockTxManager
	cache       *mocks.MockProductCache
	producer    *mocks.MockMessagePublisher
}

func newTestReviewService() (*ReviewService, *reviewServiceMocks) {
	m := &reviewServiceMocks{
		reviewRepo:  new(mocks.MockReviewRepository),
		productRepo: new(mocks.MockProductRepository),
		accountRepo: new(mocks.MockAccountRepository),
		tx:          &mocks.MockTxManager{},
		cache:       new(mocks.MockProductCache),
		producer:    &mocks.MockMessagePublisher{Messages: make([][]byte, 0)},
	}

	service := NewReviewService(
		m.reviewRepo,
		m.productRepo,
		NewLinkMaintainer(m.productRepo, m.reviewRepo),
		NewGuard(m.accountRepo),
		m.tx,
		m.cache,
		m.producer,
		NewFieldValidator(),
	)

	return service, m
}

func TestReviewCreate_Success(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	authorID := primitive.NewObjectID()
	author := &entity.Account{ID: authorID, Email: "author@example.com"}
	product := &entity.Product{ID: primitive.NewObjectID(), Title: "Phone", UserID: primitive.NewObjectID()}
	req := &entity.CreateReviewRequest{Rating: 5, Comment: "Excellent", ProductID: product.ID.Hex()}

	m.accountRepo.On("GetByID", ctx, authorID.Hex()).Return(author, nil)
	m.productRepo.On("GetByID", ctx, product.ID.Hex()).Return(product, nil)
	m.reviewRepo.On("ExistsByUserAndProduct", ctx, authorID, product.ID).Return(false, nil)
	m.reviewRepo.On("Create", ctx, mock.AnythingOfType("*entity.Review")).Return(nil).Run(func(args mock.Arguments) {
		review := args.Get(1).(*entity.Review)
		review.ID = primitive.NewObjectID()
	})
	m.productRepo.On("AddReview", ctx, product.ID, mock.AnythingOfType("primitive.ObjectID")).Return(nil)
	m.cache.On("DeleteProducts", ctx).Return(nil)
	m.producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	review, err := service.Create(ctx, authorID.Hex(), req)

	assert.NoError(t, err)
	assert.Equal(t, authorID, review.UserID)
	assert.Equal(t, product.ID, review.ProductID)
	// Отзыв вставлен и прикреплен к товару
	m.productRepo.AssertCalled(t, "AddReview", ctx, product.ID, review.ID)
	assert.Len(t, m.producer.Messages, 1)
}

func TestReviewCreate_ProductNotFound(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	authorID := primitive.NewObjectID()
	author := &entity.Account{ID: authorID}
	missingID := primitive.NewObjectID().Hex()
	req := &entity.CreateReviewRequest{Rating: 4, Comment: "ok", ProductID: missingID}

	m.accountRepo.On("GetByID", ctx, authorID.Hex()).Return(author, nil)
	m.productRepo.On("GetByID", ctx, missingID).Return(nil, repository.ErrProductNotFound)

	review, err := service.Create(ctx, authorID.Hex(), req)

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, review)
	m.reviewRepo.AssertNotCalled(t, "Create")
}

func TestReviewCreate_Duplicate(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	authorID := primitive.NewObjectID()
	author := &entity.Account{ID: authorID}
	product := &entity.Product{ID: primitive.NewObjectID(), Title: "Phone"}
	req := &entity.CreateReviewRequest{Rating: 5, Comment: "again", ProductID: product.ID.Hex()}

	m.accountRepo.On("GetByID", ctx, authorID.Hex()).Return(author, nil)
	m.productRepo.On("GetByID", ctx, product.ID.Hex()).Return(product, nil)
	m.reviewRepo.On("ExistsByUserAndProduct", ctx, authorID, product.ID).Return(true, nil)

	review, err := service.Create(ctx, authorID.Hex(), req)

	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.Nil(t, review)
	m.reviewRepo.AssertNotCalled(t, "Create")
}

func TestReviewCreate_DuplicateRaceLoser(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	authorID := primitive.NewObjectID()
	author := &entity.Account{ID: authorID}
	product := &entity.Product{ID: primitive.NewObjectID(), Title: "Phone"}
	req := &entity.CreateReviewRequest{Rating: 5, Comment: "race", ProductID: product.ID.Hex()}

	m.accountRepo.On("GetByID", ctx, authorID.Hex()).Return(author, nil)
	m.productRepo.On("GetByID", ctx, product.ID.Hex()).Return(product, nil)
	m.reviewRepo.On("ExistsByUserAndProduct", ctx, authorID, product.ID).Return(false, nil)
	// Конкурентная вставка успела раньше: уникальный индекс отбивает вторую
	m.reviewRepo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicateReview)

	review, err := service.Create(ctx, authorID.Hex(), req)

	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.Nil(t, review)
	m.productRepo.AssertNotCalled(t, "AddReview")
}

func TestReviewCreate_UnknownPrincipal(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	ghostID := primitive.NewObjectID()
	req := &entity.CreateReviewRequest{Rating: 5, Comment: "x", ProductID: primitive.NewObjectID().Hex()}

	m.accountRepo.On("GetByID", ctx, ghostID.Hex()).Return(nil, repository.ErrAccountNotFound)

	review, err := service.Create(ctx, ghostID.Hex(), req)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, review)
}

func TestReviewCreate_ValidationFailed(t *testing.T) {
	service, m := newTestReviewService()

	req := &entity.CreateReviewRequest{Rating: 6, Comment: "x", ProductID: "short"}

	review, err := service.Create(context.Background(), primitive.NewObjectID().Hex(), req)

	assert.Nil(t, review)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "rating")
	assert.Contains(t, vErr.Fields, "productid")
	m.accountRepo.AssertNotCalled(t, "GetByID")
}

func TestReviewUpdate_Success(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	authorID := primitive.NewObjectID()
	author := &entity.Account{ID: authorID}
	review := &entity.Review{ID: primitive.NewObjectID(), Rating: 2, Comment: "meh", UserID: authorID, ProductID: primitive.NewObjectID()}
	req := &entity.UpdateReviewRequest{Rating: 4, Comment: "better than I thought"}

	m.reviewRepo.On("GetByID", ctx, review.ID.Hex()).Return(review, nil)
	m.accountRepo.On("GetByID", ctx, authorID.Hex()).Return(author, nil)
	m.reviewRepo.On("Update", ctx, mock.AnythingOfType("*entity.Review")).Return(nil)

	updated, err := service.Update(ctx, authorID.Hex(), review.ID.Hex(), req)

	assert.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, "better than I thought", updated.Comment)
	// Автор и товар неизменяемы
	assert.Equal(t, authorID, updated.UserID)
	assert.Equal(t, review.ProductID, updated.ProductID)
}

func TestReviewUpdate_NotAuthor(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	authorID := primitive.NewObjectID()
	strangerID := primitive.NewObjectID()
	stranger := &entity.Account{ID: strangerID}
	review := &entity.Review{ID: primitive.NewObjectID(), Rating: 2, UserID: authorID}
	req := &entity.UpdateReviewRequest{Rating: 1, Comment: "sabotage"}

	m.reviewRepo.On("GetByID", ctx, review.ID.Hex()).Return(review, nil)
	m.accountRepo.On("GetByID", ctx, strangerID.Hex()).Return(stranger, nil)

	updated, err := service.Update(ctx, strangerID.Hex(), review.ID.Hex(), req)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, updated)
	m.reviewRepo.AssertNotCalled(t, "Update")
}

func TestReviewDelete_DetachesFromProduct(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	authorID := primitive.NewObjectID()
	author := &entity.Account{ID: authorID}
	review := &entity.Review{ID: primitive.NewObjectID(), UserID: authorID, ProductID: primitive.NewObjectID()}

	m.reviewRepo.On("GetByID", ctx, review.ID.Hex()).Return(review, nil)
	m.accountRepo.On("GetByID", ctx, authorID.Hex()).Return(author, nil)
	m.productRepo.On("RemoveReview", ctx, review.ProductID, review.ID).Return(nil)
	m.reviewRepo.On("Delete", ctx, review.ID.Hex()).Return(nil)
	m.cache.On("DeleteProducts", ctx).Return(nil)
	m.producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	err := service.Delete(ctx, authorID.Hex(), review.ID.Hex())

	assert.NoError(t, err)
	m.productRepo.AssertCalled(t, "RemoveReview", ctx, review.ProductID, review.ID)
	m.reviewRepo.AssertCalled(t, "Delete", ctx, review.ID.Hex())
}

func TestReviewDelete_NotAuthor(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	authorID := primitive.NewObjectID()
	strangerID := primitive.NewObjectID()
	stranger := &entity.Account{ID: strangerID}
	review := &entity.Review{ID: primitive.NewObjectID(), UserID: authorID, ProductID: primitive.NewObjectID()}

	m.reviewRepo.On("GetByID", ctx, review.ID.Hex()).Return(review, nil)
	m.accountRepo.On("GetByID", ctx, strangerID.Hex()).Return(stranger, nil)

	err := service.Delete(ctx, strangerID.Hex(), review.ID.Hex())

	assert.ErrorIs(t, err, ErrUnauthorized)
	m.reviewRepo.AssertNotCalled(t, "Delete")
}

func TestReviewDelete_TransactionAborted(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	authorID := primitive.NewObjectID()
	author := &entity.Account{ID: authorID}
	review := &entity.Review{ID: primitive.NewObjectID(), UserID: authorID, ProductID: primitive.NewObjectID()}

	m.reviewRepo.On("GetByID", ctx, review.ID.Hex()).Return(review, nil)
	m.accountRepo.On("GetByID", ctx, authorID.Hex()).Return(author, nil)
	m.tx.Err = errors.New("transaction aborted")

	err := service.Delete(ctx, authorID.Hex(), review.ID.Hex())

	assert.Error(t, err)
	m.productRepo.AssertNotCalled(t, "RemoveReview")
	m.reviewRepo.AssertNotCalled(t, "Delete")
}

func TestReviewList_JoinsProductRefs(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	product := entity.Product{ID: primitive.NewObjectID(), Title: "Tablet", Price: 199.99}
	reviews := []entity.Review{
		{ID: primitive.NewObjectID(), Rating: 5, ProductID: product.ID},
		{ID: primitive.NewObjectID(), Rating: 3, ProductID: product.ID},
	}

	m.reviewRepo.On("GetAll", ctx).Return(reviews, nil)
	m.productRepo.On("GetByIDs", ctx, []primitive.ObjectID{product.ID}).Return([]entity.Product{product}, nil)

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "Tablet", result[0].Product.Title)
	assert.Equal(t, 199.99, result[0].Product.Price)
}

func TestReviewList_OrphanGetsNilProduct(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	missingProductID := primitive.NewObjectID()
	reviews := []entity.Review{{ID: primitive.NewObjectID(), Rating: 1, ProductID: missingProductID}}

	m.reviewRepo.On("GetAll", ctx).Return(reviews, nil)
	m.productRepo.On("GetByIDs", ctx, []primitive.ObjectID{missingProductID}).Return([]entity.Product{}, nil)

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Nil(t, result[0].Product)
}

func TestReviewGet_WithProduct(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	product := &entity.Product{ID: primitive.NewObjectID(), Title: "Camera", Price: 450}
	review := &entity.Review{ID: primitive.NewObjectID(), Rating: 5, ProductID: product.ID}

	m.reviewRepo.On("GetByID", ctx, review.ID.Hex()).Return(review, nil)
	m.productRepo.On("GetByID", ctx, product.ID.Hex()).Return(product, nil)

	result, err := service.Get(ctx, review.ID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, "Camera", result.Product.Title)
}

func TestReviewGet_NotFound(t *testing.T) {
	service, m := newTestReviewService()

	ctx := context.Background()
	id := primitive.NewObjectID().Hex()
	m.reviewRepo.On("GetByID", ctx, id).Return(nil, repository.ErrReviewNotFound)

	result, err := service.Get(ctx, id)

	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.Nil(t, result)
}
