package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

// MockRecipeSet is a mock of the favorites or shopping cart set
type MockRecipeSet struct {
	mock.Mock
}

var _ service.IRecipeSet = (*MockRecipeSet)(nil)

// Add mocks the Add method
func (m *MockRecipeSet) Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, bool, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Recipe), args.Bool(1), args.Error(2)
}

// Remove mocks the Remove method
func (m *MockRecipeSet) Remove(ctx context.Context, userID, recipeID uint) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

// List mocks the List method
func (m *MockRecipeSet) List(ctx context.Context, userID uint) ([]models.Recipe, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

// MockShoppingListService is a mock of the cart aggregator
type MockShoppingListService struct {
	mock.Mock
}

var _ service.IShoppingListService = (*MockShoppingListService)(nil)

func (m *MockShoppingListService) Build(ctx context.Context, userID uint) (*service.ShoppingList, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShoppingList), args.Error(1)
}
