package types

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Password  string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IngredientAmount is one ingredient line of a recipe submission
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeWriteRequest represents the body of a recipe create or partial update.
// Absent fields stay nil. Image is a data URI or a bare base64 payload.
type RecipeWriteRequest struct {
	Name        *string            `json:"name" binding:"omitempty,max=256"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
	Image       *string            `json:"image"`
	Tags        []uint             `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// AvatarRequest represents the body of an avatar upload
type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}
