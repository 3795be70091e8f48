package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		params     Params
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", params: Params{}, wantLimit: 10, wantOffset: 0},
		{name: "explicit page and limit", params: Params{Page: 3, Limit: 5}, wantLimit: 5, wantOffset: 10},
		{name: "limit capped at 20", params: Params{Page: 1, Limit: 50}, wantLimit: 20, wantOffset: 0},
		{name: "zero page treated as first", params: Params{Page: 0, Limit: 10}, wantLimit: 10, wantOffset: 0},
		{name: "negative limit falls back to default", params: Params{Page: 2, Limit: -1}, wantLimit: 10, wantOffset: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			limit, offset := tc.params.Window()
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffset, offset)
		})
	}
}

func TestNewResult(t *testing.T) {
	r := NewResult([]int{1, 2, 3}, Params{Page: 1, Limit: 10}, 45)
	assert.Equal(t, 45, r.TotalItems)
	assert.Equal(t, 5, r.TotalPages)
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 10, r.Limit)

	// exact multiple does not round up
	r = NewResult([]int{1}, Params{Page: 4, Limit: 10}, 40)
	assert.Equal(t, 4, r.TotalPages)

	// zero items yields zero pages and a non-nil data slice
	r = NewResult[int](nil, Params{}, 0)
	assert.Equal(t, 0, r.TotalPages)
	assert.NotNil(t, r.Data)
	assert.Empty(t, r.Data)

	// capped limit is what totals are computed against
	r = NewResult([]int{1}, Params{Page: 1, Limit: 50}, 41)
	assert.Equal(t, 20, r.Limit)
	assert.Equal(t, 3, r.TotalPages)
}
