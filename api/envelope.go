package api

// Pagination accompanies list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports whether a page follows this one.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Envelope is the response shape of every endpoint.
type Envelope[T any] struct {
	Success    bool        `json:"success"`
	Data       T           `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Page is a list response.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// PageOf converts a list envelope to a Page.
func PageOf[T any](env Envelope[[]T]) Page[T] {
	p := Page[T]{Items: env.Data}
	if env.Pagination != nil {
		p.Pagination = *env.Pagination
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	return p
}
