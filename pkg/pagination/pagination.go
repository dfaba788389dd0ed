package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Meta describes the pagination state returned alongside a page of results.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	PerPage     int   `json:"per_page"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// Normalize clamps the page and limit to usable values.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Offset converts the normalized page/limit into a row offset.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
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

// BuildMeta computes page metadata from the total row count.
func BuildMeta(params Params, totalItems int64) Meta {
	n := params.Normalize()
	totalPages := int((totalItems + int64(n.Limit) - 1) / int64(n.Limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return Meta{
		CurrentPage: n.Page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     n.Limit,
		HasNext:     n.Page < totalPages,
		HasPrev:     n.Page > 1,
	}
}
