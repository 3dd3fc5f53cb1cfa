package repository

import "errors"

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrAccountNotFound = errors.New("account not found")
	ErrProductNotFound = errors.New("product not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrDuplicateReview = errors.New("review for this product already exists")
	ErrInvalidID       = errors.New("invalid object id")
	ErrTokenNotFound   = errors.New("refresh token not found")
)
