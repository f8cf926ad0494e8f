package paging

import (
	"net/http/httptest"
	"testing"
)

func TestComputeRange(t *testing.T) {
	tests := []struct {
		name  string
		start int
		shown int
		want  Range
	}{
		{
			name:  "no results",
			start: 1,
			shown: 0,
			want:  Range{Start: 0, End: 0, PrevStart: 1, NextStart: 1},
		},
		{
			name:  "first page full",
			start: 1,
			shown: PageSize,
			want:  Range{Start: 1, End: PageSize, PrevStart: 1, NextStart: PageSize + 1},
		},
		{
			name:  "first page partial",
			start: 1,
			shown: 10,
			want:  Range{Start: 1, End: 10, PrevStart: 1, NextStart: 11},
		},
		{
			name:  "second page",
			start: PageSize + 1,
			shown: PageSize,
			want:  Range{Start: PageSize + 1, End: PageSize * 2, PrevStart: 1, NextStart: PageSize*2 + 1, HasPrev: true},
		},
		{
			name:  "middle page",
			start: 101,
			shown: 50,
			want:  Range{Start: 101, End: 150, PrevStart: 51, NextStart: 151, HasPrev: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRange(tt.start, tt.shown)
			if got != tt.want {
				t.Errorf("ComputeRange(%d, %d) = %+v, want %+v", tt.start, tt.shown, got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name     string
		start    int
		size     int
		want     []int
		wantNext bool
		wantPrev bool
	}{
		{"first page", 1, 3, []int{1, 2, 3}, true, false},
		{"middle page", 4, 3, []int{4, 5, 6}, true, true},
		{"last partial page", 7, 3, []int{7}, false, true},
		{"past the end", 20, 3, []int{}, false, true},
		{"start below one", -4, 2, []int{1, 2}, true, false},
		{"default size", 1, 0, rows, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rg := Window(rows, tt.start, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("Window len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Window[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
			if rg.HasNext != tt.wantNext || rg.HasPrev != tt.wantPrev {
				t.Errorf("HasNext/HasPrev = %v/%v, want %v/%v", rg.HasNext, rg.HasPrev, tt.wantNext, tt.wantPrev)
			}
			if rg.Total != len(rows) {
				t.Errorf("Total = %d, want %d", rg.Total, len(rows))
			}
		})
	}
}

func TestWindow_DoesNotAlias(t *testing.T) {
	rows := []int{1, 2, 3}
	page, _ := Window(rows, 1, 2)
	page[0] = 99
	if rows[0] != 1 {
		t.Errorf("Window aliased input: rows[0] = %d", rows[0])
	}
}

func TestParseStartAndSize(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?start=11&size=500", nil)
	if got := ParseStart(r); got != 11 {
		t.Errorf("ParseStart = %d, want 11", got)
	}
	if got := ParseSize(r, 10); got != PageSize {
		t.Errorf("ParseSize = %d, want %d", got, PageSize)
	}

	r = httptest.NewRequest("GET", "/x?start=abc&size=-1", nil)
	if got := ParseStart(r); got != 1 {
		t.Errorf("ParseStart = %d, want 1", got)
	}
	if got := ParseSize(r, 10); got != 10 {
		t.Errorf("ParseSize = %d, want 10", got)
	}
}
