package quire

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is an offset window over a listing.
type Page struct {
	Start int
	Size  int
}

// PageMeta is returned alongside a page of records.
type PageMeta struct {
	Total     int  `json:"total"`
	PageSize  int  `json:"pageSize"`
	PageStart int  `json:"pageStart"`
	HasMore   bool `json:"hasMore"`
}

// ParsePage reads raw pageStart and pageSize query values. Anything unusable falls back to
// the defaults instead of failing.
func ParsePage(rawStart, rawSize string) Page {
	start := 0
	if v, ok := parseNumber(rawStart); ok && v >= 0 {
		start = int(math.Floor(v))
	}

	size := DefaultPageSize
	if v, ok := parseNumber(rawSize); ok && v > 0 {
		size = int(math.Floor(v))
	}

	return NewPage(start, size)
}

// NewPage clamps start to >= 0 and size into [1, MaxPageSize].
func NewPage(start, size int) Page {
	return Page{
		Start: max(0, start),
		Size:  max(1, min(MaxPageSize, size)),
	}
}

// Range returns the inclusive row window [from, to].
func (p Page) Range() (from, to int) {
	return p.Start, p.Start + p.Size - 1
}

// Meta builds page metadata for a page that returned n rows out of total.
func (p Page) Meta(total, n int) PageMeta {
	return PageMeta{
		Total:     total,
		PageSize:  p.Size,
		PageStart: p.Start,
		HasMore:   p.Start+n < total,
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	// guard int conversion
	if v > math.MaxInt32 {
		v = math.MaxInt32
	}
	return v, true
}
