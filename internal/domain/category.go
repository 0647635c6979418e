// Package domain defines the catalog entities shared by the store and the lifecycle pipelines.
package domain

import "time"

// Category groups products. It belongs to exactly one tenant token.
type Category struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Picture     *string   `json:"picture"` // Stored asset path, nil until one is attached
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCategoryRequest holds the fields required to create a category.
type CreateCategoryRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// CategoryUpdate is a partial update. Nil fields are left untouched.
type CategoryUpdate struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=5000"`
}

// Empty reports whether the update carries no fields.
func (u CategoryUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil
}
