// Package pagination implements page-number pagination for list
// endpoints. A page is addressed with ?page=N (or ?page=last) and
// rendered as {count, next, previous, results}.
package pagination

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// QueryParam is the query string key holding the page number.
	QueryParam = "page"
	lastPage   = "last"
)

// ErrInvalidPage is returned for page numbers that are not integers or
// are out of range.
var ErrInvalidPage = errors.New("invalid page")

// Page is one page of a listing.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Paginator splits listings into pages of a fixed size.
type Paginator struct {
	PageSize int
}

// Window is the slice of a listing that one page covers.
type Window struct {
	Number   int
	NumPages int
	Offset   int
	Limit    int
}

func (w Window) HasNext() bool     { return w.Number < w.NumPages }
func (w Window) HasPrevious() bool { return w.Number > 1 }

// NumPages returns the page count for count items. An empty listing
// still has one (empty) page.
func (p Paginator) NumPages(count int64) int {
	if count <= 0 {
		return 1
	}
	size := int64(p.PageSize)
	return int((count + size - 1) / size)
}

// Window resolves the raw page parameter against a listing of count
// items. An empty raw value means the first page.
func (p Paginator) Window(raw string, count int64) (Window, error) {
	numPages := p.NumPages(count)

	number := 1
	switch raw = strings.TrimSpace(raw); raw {
	case "":
	case lastPage:
		number = numPages
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > numPages {
			return Window{}, ErrInvalidPage
		}
		number = n
	}

	return Window{
		Number:   number,
		NumPages: numPages,
		Offset:   (number - 1) * p.PageSize,
		Limit:    p.PageSize,
	}, nil
}

// NewPage wraps results with links to the neighbouring pages of r.
func NewPage[T any](r *http.Request, w Window, count int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: count, Results: results}
	if w.HasNext() {
		next := PageURL(r, w.Number+1)
		page.Next = &next
	}
	if w.HasPrevious() {
		prev := PageURL(r, w.Number-1)
		page.Previous = &prev
	}
	return page
}

// PageURL returns the absolute URL of page number of the listing r
// requested. Other query parameters are kept and sorted; the first
// page carries no page parameter.
func PageURL(r *http.Request, number int) string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	if r.TLS != nil {
		u.Scheme = "https"
	}

	query := r.URL.Query()
	if number <= 1 {
		query.Del(QueryParam)
	} else {
		query.Set(QueryParam, strconv.Itoa(number))
	}
	u.RawQuery = query.Encode()
	return u.String()
}
