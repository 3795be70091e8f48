// Package pagination provides offset/limit windowing and the result
// envelope shared by history queries.
package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 20
)

type Params struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Window normalizes the page and limit and returns the effective limit
// and offset. Pages start at 1; the limit defaults to 10 and is silently
// capped at 20.
func (p Params) Window() (limit, offset int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit = p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit, (page - 1) * limit
}

type Result[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewResult wraps a data page with the totals computed over the same
// filtered predicate. Zero matching items yields zero pages.
func NewResult[T any](data []T, p Params, totalItems int) *Result[T] {
	limit, _ := p.Window()
	page := p.Page
	if page < 1 {
		page = 1
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}

	if data == nil {
		data = []T{}
	}

	return &Result[T]{
		Data:       data,
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
