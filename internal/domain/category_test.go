package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_Matches(t *testing.T) {
	food, err := NewCategory("  Food ")
	require.NoError(t, err)
	assert.Equal(t, "Food", food.Name)

	assert.True(t, food.Matches(Category{Name: "food"}))
	assert.True(t, food.Matches(Category{Name: "FOOD "}))
	assert.False(t, food.Matches(Category{Name: "Transport"}))

	_, err = NewCategory("   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIsNoFilterCategory(t *testing.T) {
	assert.True(t, IsNoFilterCategory(""))
	assert.True(t, IsNoFilterCategory("All"))
	assert.True(t, IsNoFilterCategory(" all "))
	assert.False(t, IsNoFilterCategory("Food"))
}

func TestPerson_Validate(t *testing.T) {
	p := newPerson("patri")
	assert.NoError(t, p.Validate())

	p.Username = ""
	assert.ErrorIs(t, p.Validate(), ErrValidation)
}
