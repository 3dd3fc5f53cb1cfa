package handler

import (
	"context"
	"net/http"

	"productsapp/internal/app/catalog/entity"

	"github.com/gin-gonic/gin"
)

type AuthServiceInterface interface {
	SignUp(ctx context.Context, req *entity.SignUpRequest) (*entity.AuthResponse, error)
	SignIn(ctx context.Context, req *entity.SignInRequest) (*entity.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	CurrentAccount(ctx context.Context, userID string) (*entity.Account, error)
}

// AuthHandler обрабатывает HTTP запросы регистрации и аутентификации
type AuthHandler struct {
	authService AuthServiceInterface
}

func NewAuthHandler(authService AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp регистрирует нового пользователя и сразу выдает пару токенов
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req entity.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// SignIn аутентифицирует пользователя по email и паролю
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req entity.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.authService.SignIn(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh обменивает refresh токен на новую пару токенов.
// Использованный refresh токен отзывается (ротация)
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req entity.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout отзывает все refresh токены пользователя
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Logged out successfully"})
}

// GetMe возвращает данные текущего аутентифицированного пользователя
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return
	}

	account, err := h.authService.CurrentAccount(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
