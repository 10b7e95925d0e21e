// Package paginator splits an ordered collection into fixed-size pages.
package paginator

import (
	"strconv"
)

// DefaultPerPage is the number of todos displayed on a listing page.
const DefaultPerPage = 4

type (
	// A Paginator computes pages over a collection of Count elements.
	Paginator struct {
		Count   int
		PerPage int
	}

	// A Page is a window on the paginated collection.
	// Elements of the page are the ones in [Start, End).
	Page struct {
		Number   int
		NumPages int
		Start    int
		End      int
	}
)

// New returns a new Paginator.
// A perPage lower than 1 falls back to DefaultPerPage.
func New(count, perPage int) Paginator {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if count < 0 {
		count = 0
	}
	return Paginator{Count: count, PerPage: perPage}
}

// NumPages returns the number of pages. An empty collection still has one (empty) page.
func (p Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// Page returns the requested 1-based page.
// Out of range numbers are clamped to the first or the last page.
func (p Paginator) Page(number int) Page {
	n := p.NumPages()
	if number < 1 {
		number = 1
	}
	if number > n {
		number = n
	}

	start := (number - 1) * p.PerPage
	end := start + p.PerPage
	if end > p.Count {
		end = p.Count
	}

	return Page{
		Number:   number,
		NumPages: n,
		Start:    start,
		End:      end,
	}
}

// GetPage returns the page for a raw user input such as a query parameter.
// Anything that is not an integer is the first page.
func (p Paginator) GetPage(raw string) Page {
	number, err := strconv.Atoi(raw)
	if err != nil {
		number = 1
	}
	return p.Page(number)
}

// Len returns the number of elements on the page.
func (p Page) Len() int {
	return p.End - p.Start
}

// HasPrevious returns true if a page exists before this one.
func (p Page) HasPrevious() bool {
	return p.Number > 1
}

// HasNext returns true if a page exists after this one.
func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

// Previous returns the previous page number.
func (p Page) Previous() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// Next returns the next page number.
func (p Page) Next() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}
