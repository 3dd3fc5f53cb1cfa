package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"productsapp/internal/app/catalog/entity"
	"productsapp/internal/app/catalog/repository"
	"productsapp/internal/app/catalog/util"
	"productsapp/pkg/metrics"
)

// AuthService обрабатывает регистрацию, вход и ротацию токенов.
// Access токен - JWT, refresh токен - непрозрачное значение в Redis
type AuthService struct {
	accountRepo repository.AccountRepository
	tokenRepo   repository.TokenRepository
	jwtManager  *util.JWTManager
	validator   *FieldValidator
}

func NewAuthService(
	accountRepo repository.AccountRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *util.JWTManager,
	validator *FieldValidator,
) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		jwtManager:  jwtManager,
		validator:   validator,
	}
}

// SignUp регистрирует нового пользователя
func (s *AuthService) SignUp(ctx context.Context, req *entity.SignUpRequest) (*entity.AuthResponse, error) {
	if vErr := s.validator.Check(req); vErr != nil {
		return nil, vErr
	}

	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &entity.Account{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
	}

	// Уникальность email обеспечивает индекс - отдельная проверка
	// существования проиграла бы гонку двух одновременных регистраций
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	metrics.AuthRegistrations.Inc()

	return s.generateAuthResponse(ctx, account)
}

// SignIn выполняет вход пользователя
func (s *AuthService) SignIn(ctx context.Context, req *entity.SignInRequest) (*entity.AuthResponse, error) {
	if vErr := s.validator.Check(req); vErr != nil {
		return nil, vErr
	}

	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !util.CheckPassword(req.Password, account.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()

	return s.generateAuthResponse(ctx, account)
}

// Refresh обменивает refresh токен на новую пару токенов.
// Использованный refresh токен отзывается (ротация)
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	userID, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if err := s.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to delete refresh token: %w", err)
	}

	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Аккаунт удалён после выдачи токена - токен больше не действует
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return s.generateTokenPair(ctx, account)
}

// Logout отзывает все refresh токены пользователя
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.tokenRepo.DeleteUserRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}

	return nil
}

// CurrentAccount возвращает аккаунт текущего пользователя
func (s *AuthService) CurrentAccount(ctx context.Context, userID string) (*entity.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

func (s *AuthService) generateAuthResponse(ctx context.Context, account *entity.Account) (*entity.AuthResponse, error) {
	pair, err := s.generateTokenPair(ctx, account)
	if err != nil {
		return nil, err
	}

	return &entity.AuthResponse{
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
		User:         account,
	}, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, account *entity.Account) (*entity.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(account.ID.Hex(), account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.jwtManager.GetRefreshTokenDuration())
	if err := s.tokenRepo.SaveRefreshToken(ctx, account.ID.Hex(), refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	metrics.AuthTokensIssued.WithLabelValues("access").Inc()
	metrics.AuthTokensIssued.WithLabelValues("refresh").Inc()

	return &entity.TokenPair{
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}
