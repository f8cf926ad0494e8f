package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged dashboard tables.
const PageSize = 50

// ModalPageSize is a smaller page size for compact panels (top-N lists).
const ModalPageSize = 10

// ParseStart extracts the human-friendly "start" query parameter (1-based index).
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	s := query.Get(r, "start")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseSize extracts the "size" query parameter, bounded to [1, PageSize].
// Returns def if not present or invalid.
func ParseSize(r *http.Request, def int) int {
	s := query.Get(r, "size")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	if n > PageSize {
		return PageSize
	}
	return n
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start     int  `json:"start"`      // 1-based start index (0 if no results)
	End       int  `json:"end"`        // 1-based end index (0 if no results)
	PrevStart int  `json:"prev_start"` // start value for previous page link
	NextStart int  `json:"next_start"` // start value for next page link
	HasPrev   bool `json:"has_prev"`
	HasNext   bool `json:"has_next"`
	Total     int  `json:"total"`
}

// ComputeRange calculates display range values given the current start index
// and number of items shown.
func ComputeRange(start, shown int) Range {
	return computeRangeWithSize(start, shown, PageSize)
}

// ComputeRangeModal is like ComputeRange but uses ModalPageSize.
func ComputeRangeModal(start, shown int) Range {
	return computeRangeWithSize(start, shown, ModalPageSize)
}

func computeRangeWithSize(start, shown, pageSize int) Range {
	if shown == 0 {
		return Range{Start: 0, End: 0, PrevStart: 1, NextStart: 1}
	}

	prevStart := start - pageSize
	if prevStart < 1 {
		prevStart = 1
	}

	return Range{
		Start:     start,
		End:       start + shown - 1,
		PrevStart: prevStart,
		NextStart: start + shown,
		HasPrev:   start > 1,
	}
}

// Window slices rows to the page beginning at the 1-based start index.
// A size <= 0 means PageSize. The input slice is not modified.
func Window[T any](rows []T, start, size int) ([]T, Range) {
	if size <= 0 {
		size = PageSize
	}
	if start < 1 {
		start = 1
	}
	total := len(rows)
	if start > total {
		rg := computeRangeWithSize(start, 0, size)
		rg.HasPrev = total > 0
		rg.Total = total
		return []T{}, rg
	}

	end := start - 1 + size
	if end > total {
		end = total
	}
	page := make([]T, end-(start-1))
	copy(page, rows[start-1:end])

	rg := computeRangeWithSize(start, len(page), size)
	rg.HasNext = end < total
	rg.Total = total
	return page, rg
}
