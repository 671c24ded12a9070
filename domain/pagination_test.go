package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(2, 10, 35)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 4, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	empty := NewPageMeta(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)

	// Out-of-range inputs fall back to defaults.
	clamped := NewPageMeta(0, 0, 5)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, 10, clamped.Limit)
}

func TestPageBounds(t *testing.T) {
	start, end := PageBounds(1, 10, 35)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)

	start, end = PageBounds(4, 10, 35)
	assert.Equal(t, 30, start)
	assert.Equal(t, 35, end)

	// Pages past the end collapse to an empty window.
	start, end = PageBounds(9, 10, 35)
	assert.Equal(t, 35, start)
	assert.Equal(t, 35, end)
}
