package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeletePolicy_Valid(t *testing.T) {
	assert.True(t, PolicyOrphan.Valid())
	assert.True(t, PolicyRestrict.Valid())
	assert.True(t, PolicyCascade.Valid())
	assert.False(t, DeletePolicy("").Valid())
	assert.False(t, DeletePolicy("Orphan").Valid())
}

func TestProductUpdate_Empty(t *testing.T) {
	assert.True(t, ProductUpdate{}.Empty())

	cleared := []string{}
	assert.False(t, ProductUpdate{TagIDs: &cleared}.Empty(), "explicit empty tag list is a change")

	price := 0.0
	assert.False(t, ProductUpdate{Price: &price}.Empty())
}

func TestCategoryUpdate_Empty(t *testing.T) {
	assert.True(t, CategoryUpdate{}.Empty())

	title := "Fruit"
	assert.False(t, CategoryUpdate{Title: &title}.Empty())
}

func TestProduct_TagIDs(t *testing.T) {
	p := Product{Tags: []Tag{{ID: "tag-1"}, {ID: "tag-2"}}}
	assert.Equal(t, []string{"tag-1", "tag-2"}, p.TagIDs())
	assert.Empty(t, (&Product{}).TagIDs())
}
