package services

import (
	"testing"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddMergesLines(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Brush", "7.25", 1)

	require.NoError(t, f.carts.Add(alice.ID, p.ID, 2))
	// no stock check at add time
	require.NoError(t, f.carts.Add(alice.ID, p.ID, 3))

	view, err := f.carts.View(alice.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, "36.25", view.Total.StringFixed(2))

	var verr *domain.ValidationError
	assert.ErrorAs(t, f.carts.Add(alice.ID, p.ID, 0), &verr)
	assert.ErrorIs(t, f.carts.Add(alice.ID, "missing", 1), domain.ErrNotFound)
}

func TestCartOwnership(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Towel", "5.00", 10)
	require.NoError(t, f.carts.Add(alice.ID, p.ID, 1))
	view, err := f.carts.View(alice.ID)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	assert.ErrorIs(t, f.carts.UpdateQuantity(bob.ID, itemID, 4), domain.ErrForbidden)
	assert.ErrorIs(t, f.carts.Remove(bob.ID, itemID), domain.ErrForbidden)
	assert.ErrorIs(t, f.carts.UpdateQuantity(alice.ID, "missing", 4), domain.ErrNotFound)

	require.NoError(t, f.carts.UpdateQuantity(alice.ID, itemID, 4))
	view, err = f.carts.View(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)

	require.NoError(t, f.carts.Remove(alice.ID, itemID))
	view, err = f.carts.View(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestOneActiveCartPerUser(t *testing.T) {
	f := newFixture(t)
	first, err := f.store.Carts().EnsureActive(alice.ID)
	require.NoError(t, err)
	again, err := f.store.Carts().EnsureActive(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}
