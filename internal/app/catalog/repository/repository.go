package repository

import (
	"context"
	"time"

	"productsapp/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountRepository определяет методы для работы с аккаунтами в MongoDB
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
}

// ProductRepository определяет методы для работы с товарами в MongoDB.
// AddReview/RemoveReview патчат только поле reviews и вызываются
// исключительно из LinkMaintainer
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	UpdateFields(ctx context.Context, id string, title, description string, price float64) error
	AddReview(ctx context.Context, productID, reviewID primitive.ObjectID) error
	RemoveReview(ctx context.Context, productID, reviewID primitive.ObjectID) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetAll(ctx context.Context) ([]entity.Review, error)
	GetByProductID(ctx context.Context, productID primitive.ObjectID) ([]entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
	DeleteByProductID(ctx context.Context, productID primitive.ObjectID) (int64, error)
	ExistsByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
}

// TokenRepository определяет методы для хранения refresh токенов
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (string, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
}

// TxManager выполняет группу операций репозиториев как одну атомарную
// единицу против хранилища. fn получает контекст сессии: все вызовы
// репозиториев с этим контекстом попадают в транзакцию. При ошибке fn
// транзакция откатывается без видимых эффектов
type TxManager interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}
