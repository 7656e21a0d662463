package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// NewParams normalizes page and limit into their accepted ranges.
func NewParams(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	return Params{Page: page, Limit: NormalizeLimit(limit)}
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Offset is (page-1) * limit.
func (p Params) Offset() int {
	n := NewParams(p.Page, p.Limit)
	return (n.Page - 1) * n.Limit
}

// Meta is the pagination block attached to every multi-row response.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	Limit       int   `json:"limit"`
}

// NewMeta computes the page count as ceil(total / limit).
func NewMeta(p Params, total int64) Meta {
	n := NewParams(p.Page, p.Limit)
	if total < 0 {
		total = 0
	}
	limit := int64(n.Limit)
	return Meta{
		CurrentPage: n.Page,
		TotalPages:  int((total + limit - 1) / limit),
		TotalCount:  total,
		Limit:       n.Limit,
	}
}

// Page wraps one page of items with its metadata.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// NewPage never returns a nil item slice so clients always see a JSON array.
func NewPage[T any](items []T, p Params, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Pagination: NewMeta(p, total)}
}
