package domain

import "time"

// Product is a catalog item. CategoryID may point at a category that no longer
// exists when categories are deleted under the orphan policy.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Pictures    []string  `json:"pictures"` // Ordered asset paths
	CategoryID  string    `json:"category_id"`
	Tags        []Tag     `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TagIDs returns the ids of the attached tags in association order.
func (p *Product) TagIDs() []string {
	ids := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		ids[i] = t.ID
	}
	return ids
}

// CreateProductRequest holds the fields required to create a product.
// TagIDs not owned by the tenant are dropped silently.
type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,notblank,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Price       float64  `json:"price" validate:"finite,gte=0"`
	CategoryID  string   `json:"category_id" validate:"required,notblank"`
	TagIDs      []string `json:"tag_ids"`
}

// ProductUpdate is a partial update. Nil fields are left untouched.
// A non-nil TagIDs replaces the whole tag set, so a pointer to an empty slice clears it.
type ProductUpdate struct {
	Title       *string   `json:"title,omitempty" validate:"omitnil,notblank,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitnil,max=5000"`
	Price       *float64  `json:"price,omitempty" validate:"omitnil,finite,gte=0"`
	CategoryID  *string   `json:"category_id,omitempty" validate:"omitnil,notblank"`
	TagIDs      *[]string `json:"tag_ids,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u ProductUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Price == nil && u.CategoryID == nil && u.TagIDs == nil
}
