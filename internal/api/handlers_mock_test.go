package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/media"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

const mockToken = "mock-token"

type mockEnv struct {
	router    *gin.Engine
	auth      *mocks.MockAuthService
	favorites *mocks.MockRecipeSet
	shopping  *mocks.MockShoppingListService
}

// setupMockEnv swaps auth, favorites and the shopping list for mocks. The
// token mockToken authenticates as user 3.
func setupMockEnv(t *testing.T) *mockEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.NewSQLiteDB(t)

	env := &mockEnv{
		auth:      new(mocks.MockAuthService),
		favorites: new(mocks.MockRecipeSet),
		shopping:  new(mocks.MockShoppingListService),
	}
	env.auth.On("ValidateToken", mockToken).Return(&types.TokenClaims{UserID: 3, Username: "mock"}, nil).Maybe()
	env.auth.On("ValidateToken", mock.Anything).Return(nil, service.ErrUnauthorized).Maybe()

	services := NewServices(db, service.NewAuthService(db, "unused-secret", 0), media.NewStore(testhelpers.NewMemoryStore()), nil)
	services.Auth = env.auth
	services.Favorites = env.favorites
	services.Shopping = env.shopping

	env.router = gin.New()
	env.router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	RegisterRoutes(env.router, db, services)

	t.Cleanup(func() {
		env.favorites.AssertExpectations(t)
		env.shopping.AssertExpectations(t)
	})
	return env
}

func (e *mockEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mockToken)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	env := setupMockEnv(t)
	env.shopping.On("Build", mock.Anything, uint(3)).Return(nil, errors.New("connection reset"))

	w := env.do(http.MethodGet, "/api/recipes/download_shopping_cart", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"internal_error"`)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestEmptyShoppingListDownload(t *testing.T) {
	env := setupMockEnv(t)
	env.shopping.On("Build", mock.Anything, uint(3)).Return(&service.ShoppingList{}, nil)

	w := env.do(http.MethodGet, "/api/recipes/download_shopping_cart", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
}

func TestAddToSetStatus(t *testing.T) {
	env := setupMockEnv(t)
	recipe := &models.Recipe{ID: 9, Name: "Soup", CookingTime: 30}
	env.favorites.On("Add", mock.Anything, uint(3), uint(9)).Return(recipe, true, nil).Once()
	env.favorites.On("Add", mock.Anything, uint(3), uint(9)).Return(recipe, false, nil).Once()

	w := env.do(http.MethodPost, "/api/recipes/9/favorite", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":9,"name":"Soup","image":"","cooking_time":30}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/recipes/9/favorite", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRemoveFromSetNotFound(t *testing.T) {
	env := setupMockEnv(t)
	env.favorites.On("Remove", mock.Anything, uint(3), uint(9)).
		Return(&service.NotFoundError{Entity: "favorite", ID: 9})

	w := env.do(http.MethodDelete, "/api/recipes/9/favorite", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"not_found"`)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := setupMockEnv(t)
	env.auth.On("Login", mock.Anything, "cook@example.com", "wrong").
		Return("", nil, service.ErrInvalidCredentials)

	w := env.do(http.MethodPost, "/api/auth/login", `{"email":"cook@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"invalid_credentials"`)
	env.auth.AssertExpectations(t)
}

func TestRejectedToken(t *testing.T) {
	env := setupMockEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recipes/favorites", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	env.favorites.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
