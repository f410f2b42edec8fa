package service

import "strconv"

// DefaultPageSize is used when a non-positive page size is configured.
const DefaultPageSize = 10

// Page describes one page of a listing. An empty listing still has one page.
type Page struct {
	Number   int
	NumPages int
	Size     int
	Total    int64
}

// NewPage clamps number into [1, NumPages].
func NewPage(total int64, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}
	number = max(number, 1)
	number = min(number, numPages)
	return Page{Number: number, NumPages: numPages, Size: size, Total: total}
}

// ParsePageNumber reads a ?page= value. Anything but a positive integer means page 1.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasOtherPages() bool {
	return p.HasPrevious() || p.HasNext()
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

// Range lists every page number, for the paginator widget.
func (p Page) Range() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
