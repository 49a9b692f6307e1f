package bookstore

import (
	"reflect"
	"testing"
)

func TestParseCategoryIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{"empty string", "", nil},
		{"whitespace only", "   ", nil},
		{"well-formed array", "[1,2,3]", []int64{1, 2, 3}},
		{"array with spaces", "[1, 2, 3]", []int64{1, 2, 3}},
		{"empty array", "[]", nil},
		{"single id", "[42]", []int64{42}},
		{"missing brackets", "1,2,3", []int64{1, 2, 3}},
		{"stray characters", "cats: 7; 9", []int64{7, 9}},
		{"duplicates collapse in order", "[3,1,3,2,1]", []int64{3, 1, 2}},
		{"zero dropped", "[0,5]", []int64{5}},
		{"negative dropped", "[-1,5]", []int64{5}},
		{"malformed json falls back", "[1,2,", []int64{1, 2}},
		{"no digits at all", "none", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCategoryIDs(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseCategoryIDs(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatCategoryIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want string
	}{
		{"nil", nil, "[]"},
		{"empty", []int64{}, "[]"},
		{"single", []int64{7}, "[7]"},
		{"multiple", []int64{1, 2, 3}, "[1,2,3]"},
		{"dedupes and drops non-positive", []int64{2, 2, 0, -1, 5}, "[2,5]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCategoryIDs(tt.ids); got != tt.want {
				t.Errorf("FormatCategoryIDs(%v) = %q, want %q", tt.ids, got, tt.want)
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	ids := []int64{10, 20, 30}
	got := ParseCategoryIDs(FormatCategoryIDs(ids))
	if !reflect.DeepEqual(got, ids) {
		t.Errorf("round trip = %v, want %v", got, ids)
	}
}

func TestDiffIDs(t *testing.T) {
	tests := []struct {
		name string
		a, b []int64
		want []int64
	}{
		{"both empty", nil, nil, nil},
		{"a empty", nil, []int64{1}, nil},
		{"b empty", []int64{1, 2}, nil, []int64{1, 2}},
		{"disjoint", []int64{1, 2}, []int64{3}, []int64{1, 2}},
		{"overlap", []int64{1, 2, 3}, []int64{2}, []int64{1, 3}},
		{"identical", []int64{1, 2}, []int64{1, 2}, nil},
		{"order preserved", []int64{5, 3, 1}, []int64{3}, []int64{5, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffIDs(tt.a, tt.b)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DiffIDs(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
