package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceIDPacksAndUnpacks(t *testing.T) {
	id := NewResourceID(ResTypeChanend, 3, 7)
	assert.Equal(t, ResTypeChanend, id.Type())
	assert.EqualValues(t, 3, id.CoreID())
	assert.EqualValues(t, 7, id.Num())
}

func TestResourceIDDistinctTypesDontCollide(t *testing.T) {
	a := NewResourceID(ResTypeChanend, 0, 0)
	b := NewResourceID(ResTypeConfig, 0, 0)
	assert.NotEqual(t, a, b)
}
