package types

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	RequestID string   `json:"request_id"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Field     string   `json:"field,omitempty"`
	Values    []string `json:"values,omitempty"`
}

// Page wraps one page of a listing.
type Page[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

type User struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"auth_token"`
	User  User   `json:"user"`
}

type Tag struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

type Ingredient struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredient is an ingredient line with its catalog data resolved.
type RecipeIngredient struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type Recipe struct {
	ID               uint               `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           User               `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// ShortRecipe is used in favorite, cart and subscription listings.
type ShortRecipe struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Subscription is a followed author with a preview of their recipes.
type Subscription struct {
	User
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}
