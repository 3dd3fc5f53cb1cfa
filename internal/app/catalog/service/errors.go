package service

import (
	"errors"
	"fmt"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrAccountNotFound     = errors.New("account not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrReviewNotFound      = errors.New("review not found")
	ErrUnauthorized        = errors.New("access denied")
	ErrDuplicateReview     = errors.New("review for this product already exists")
	ErrEmailTaken          = errors.New("user with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrInvalidID           = errors.New("invalid id")
)

// ValidationError - ошибка валидации входных данных с картой поле->нарушение.
// Возвращается до любого обращения к хранилищу
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Fields))
}
