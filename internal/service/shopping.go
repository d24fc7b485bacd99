package service

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"gorm.io/gorm"
)

// ShoppingLine is the total amount of one (name, unit) pair across a cart.
type ShoppingLine struct {
	Name   string
	Unit   string
	Amount int64
}

func (l ShoppingLine) String() string {
	return fmt.Sprintf("%s (%s) — %d", l.Name, l.Unit, l.Amount)
}

// ShoppingList is an aggregated cart, ordered by ingredient name then unit.
// It is a snapshot: iterating it any number of times yields the same lines.
type ShoppingList struct {
	lines []ShoppingLine
}

// Lines yields every line in order.
func (l *ShoppingList) Lines() iter.Seq[ShoppingLine] {
	return func(yield func(ShoppingLine) bool) {
		for _, line := range l.lines {
			if !yield(line) {
				return
			}
		}
	}
}

// Len returns the number of lines.
func (l *ShoppingList) Len() int {
	return len(l.lines)
}

// WriteTo writes one line per entry separated by newlines, without a trailing newline.
func (l *ShoppingList) WriteTo(w io.Writer) (int64, error) {
	var total int64
	first := true
	for line := range l.Lines() {
		s := line.String()
		if !first {
			s = "\n" + s
		}
		first = false
		n, err := io.WriteString(w, s)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (l *ShoppingList) String() string {
	var b strings.Builder
	_, _ = l.WriteTo(&b)
	return b.String()
}

// ShoppingListService sums the ingredient lines of every recipe in a user's cart.
type ShoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build groups the cart's lines by ingredient name and unit. Ingredients with
// different ids but the same name and unit share a line. It only reads.
func (s *ShoppingListService) Build(ctx context.Context, userID uint) (*ShoppingList, error) {
	var lines []ShoppingLine
	err := s.db.WithContext(ctx).
		Table("shopping_cart_items AS c").
		Select("i.name AS name, i.measurement_unit AS unit, SUM(ri.amount) AS amount").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = c.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("c.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name ASC, i.measurement_unit ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return &ShoppingList{lines: lines}, nil
}
