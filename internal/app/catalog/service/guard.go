package service

import (
	"context"
	"errors"
	"fmt"

	"productsapp/internal/app/catalog/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Guard решает, может ли принципал изменять или удалять ресурс.
// Принципал перепроверяется по коллекции accounts, а не берётся на веру
// из токена: валидный токен на уже удалённый аккаунт не сохраняет права
type Guard struct {
	accountRepo repository.AccountRepository
}

func NewGuard(accountRepo repository.AccountRepository) *Guard {
	return &Guard{accountRepo: accountRepo}
}

// Resolve проверяет, что принципал существует, и возвращает его ObjectID.
// Пустой или нерезолвящийся принципал - ErrUnauthorized, не внутренняя ошибка
func (g *Guard) Resolve(ctx context.Context, principalID string) (primitive.ObjectID, error) {
	if principalID == "" {
		return primitive.NilObjectID, ErrUnauthorized
	}

	account, err := g.accountRepo.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return primitive.NilObjectID, ErrUnauthorized
		}
		return primitive.NilObjectID, fmt.Errorf("failed to resolve principal: %w", err)
	}

	return account.ID, nil
}

// Authorize разрешает мутацию только владельцу ресурса.
// Вызывается после загрузки ресурса, перед любым изменением
func (g *Guard) Authorize(ctx context.Context, principalID string, ownerID primitive.ObjectID) error {
	resolved, err := g.Resolve(ctx, principalID)
	if err != nil {
		return err
	}

	if resolved != ownerID {
		return ErrUnauthorized
	}

	return nil
}
