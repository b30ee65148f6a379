package mapper

import "testing"

func TestFirstGap(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want int64
	}{
		{"empty", nil, 1},
		{"contiguous", []int64{1, 2, 3}, 4},
		{"hole", []int64{1, 3}, 2},
		{"missing one", []int64{2, 3, 4}, 1},
		{"late hole", []int64{1, 2, 3, 5, 6}, 4},
		{"duplicates", []int64{1, 1, 2, 2, 4}, 3},
		{"non positive ignored", []int64{-4, 0, 1, 2}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstGap(tt.ids); got != tt.want {
				t.Errorf("FirstGap(%v) = %d, want %d", tt.ids, got, tt.want)
			}
		})
	}
}
