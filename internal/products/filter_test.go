package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleList() []Product {
	return []Product{
		{Code: "WID-001", Description: "Small widget"},
		{Code: "WID-002", Description: "Large widget", IsDeleted: true},
		{Code: "GAD-001", Description: "Gadget"},
	}
}

func TestFilterHidesArchivedByDefault(t *testing.T) {
	got := Filter(sampleList(), "", false)
	assert.Len(t, got, 2)
	for _, p := range got {
		assert.False(t, p.IsDeleted)
	}
}

func TestFilterShowArchived(t *testing.T) {
	got := Filter(sampleList(), "", true)
	assert.Len(t, got, 3)
}

func TestFilterQueryMatchesCodeAndDescription(t *testing.T) {
	got := Filter(sampleList(), "wid", false)
	assert.Len(t, got, 1)
	assert.Equal(t, "WID-001", got[0].Code)

	got = Filter(sampleList(), "gadget", false)
	assert.Len(t, got, 1)
	assert.Equal(t, "GAD-001", got[0].Code)
}

func TestFilterQueryIsCaseInsensitive(t *testing.T) {
	got := Filter(sampleList(), "SMALL", false)
	assert.Len(t, got, 1)
	assert.Equal(t, "WID-001", got[0].Code)
}

func TestFilterMatchesQueryAsTyped(t *testing.T) {
	// Whitespace is part of the query, not stripped before matching.
	got := Filter(sampleList(), "  small  ", false)
	assert.Empty(t, got)

	got = Filter(sampleList(), "l w", false)
	assert.Len(t, got, 1)
	assert.Equal(t, "WID-001", got[0].Code)

	got = Filter(sampleList(), "   ", true)
	assert.Empty(t, got)
}

func TestFilterCombinesQueryWithArchived(t *testing.T) {
	got := Filter(sampleList(), "widget", true)
	assert.Len(t, got, 2)
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	list := sampleList()
	_ = Filter(list, "gadget", false)
	assert.Equal(t, sampleList(), list)
}
