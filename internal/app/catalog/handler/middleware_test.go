package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"productsapp/internal/app/catalog/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupMiddlewareRouter(jwtManager *util.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	m := NewAuthMiddleware(jwtManager)
	router.GET("/protected", m.Authenticate(), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	return router
}

func TestAuthenticate_ValidToken(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", time.Hour, time.Hour)
	token, err := jwtManager.GenerateAccessToken("user-123", "user@example.com")
	assert.NoError(t, err)

	router := setupMiddlewareRouter(jwtManager)
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", time.Hour, time.Hour)

	router := setupMiddlewareRouter(jwtManager)
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_BadFormat(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", time.Hour, time.Hour)

	router := setupMiddlewareRouter(jwtManager)
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	otherManager := util.NewJWTManager("other-secret", time.Hour, time.Hour)
	token, err := otherManager.GenerateAccessToken("user-123", "user@example.com")
	assert.NoError(t, err)

	jwtManager := util.NewJWTManager("test-secret", time.Hour, time.Hour)
	router := setupMiddlewareRouter(jwtManager)
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", -time.Minute, time.Hour)
	token, err := jwtManager.GenerateAccessToken("user-123", "user@example.com")
	assert.NoError(t, err)

	router := setupMiddlewareRouter(jwtManager)
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
