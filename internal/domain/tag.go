package domain

import "time"

// Tag labels products. Titles are not unique within a tenant.
type Tag struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTagRequest holds the fields required to create a tag.
type CreateTagRequest struct {
	Title string `json:"title" validate:"required,notblank,max=100"`
}

// TagUpdate is a partial update. Nil fields are left untouched.
type TagUpdate struct {
	Title *string `json:"title,omitempty" validate:"omitnil,notblank,max=100"`
}
