package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venduo/marketplace-identity/internal/domain/entity"
)

func TestReputationAddAndRecalculate(t *testing.T) {
	var r entity.Reputation
	assert.Zero(t, r.AverageRating)

	r.Add(entity.Comment{ID: "a", Rating: 4})
	r.Add(entity.Comment{ID: "b", Rating: 5})
	r.Add(entity.Comment{ID: "c", Rating: 3})
	assert.InDelta(t, 4.0, r.AverageRating, 1e-9)

	r.Add(entity.Comment{ID: "d", Rating: 2})
	assert.InDelta(t, 3.5, r.AverageRating, 1e-9)

	r.Comments = nil
	r.Recalculate()
	assert.Zero(t, r.AverageRating)
}

func TestReputationFind(t *testing.T) {
	var r entity.Reputation
	r.Add(entity.Comment{ID: "a", Text: "first", Rating: 5})
	r.Add(entity.Comment{ID: "b", Text: "second", Rating: 1})

	got := r.Find("b")
	require.NotNil(t, got)
	assert.Equal(t, "second", got.Text)

	// Find returns a pointer into the set, so edits through it stick.
	got.Text = "edited"
	assert.Equal(t, "edited", r.Comments[1].Text)

	assert.Nil(t, r.Find("z"))
}
