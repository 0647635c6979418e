package store

const (
	// DefaultLimit is used when a page does not set a limit.
	DefaultLimit = 100

	// MaxLimit caps the page size.
	MaxLimit = 1000
)

// Page is an offset/limit window over an insertion-ordered listing.
// Pages are restartable but not stable across concurrent writes.
type Page struct {
	Offset int
	Limit  int
}

// DefaultPage returns the first page with the default limit.
func DefaultPage() Page {
	return Page{Offset: 0, Limit: DefaultLimit}
}

// Normalize returns p with defaults applied and bounds enforced.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
