package domain

// DeletePolicy decides what happens to products when the category or tag they
// reference is deleted.
type DeletePolicy string

const (
	// PolicyOrphan deletes only the row. Products keep a dangling category id;
	// tag associations are dropped with the tag.
	PolicyOrphan DeletePolicy = "orphan"

	// PolicyRestrict refuses the delete while products still reference the row.
	PolicyRestrict DeletePolicy = "restrict"

	// PolicyCascade deletes a category's products with it. For tags it behaves
	// like PolicyOrphan since the association has no further dependents.
	PolicyCascade DeletePolicy = "cascade"
)

// Valid reports whether p is a known policy.
func (p DeletePolicy) Valid() bool {
	switch p {
	case PolicyOrphan, PolicyRestrict, PolicyCascade:
		return true
	default:
		return false
	}
}
