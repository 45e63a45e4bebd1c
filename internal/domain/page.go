package domain

import "math"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// MaxPage keeps (Page-1)*Limit inside int for any limit Normalize allows.
	MaxPage = math.MaxInt / MaxPageLimit
)

// PageRequest is a 1-based page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps page to [1, MaxPage] and limit to [1, MaxPageLimit].
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int
}

func (p Page[T]) Pages() int {
	if p.Limit <= 0 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// Paginate slices an in-memory, already ordered list.
func Paginate[T any](all []T, req PageRequest) Page[T] {
	req = req.Normalize()
	total := len(all)
	start := req.Offset()
	if start < 0 || start > total {
		start = total
	}
	end := start + req.Limit
	if end > total {
		end = total
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return Page[T]{Items: items, Page: req.Page, Limit: req.Limit, Total: total}
}
