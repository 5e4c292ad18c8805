package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorTag(t *testing.T) {
	assert.Equal(t, "#ffff00", colorTag(ColorOwn))
	assert.Equal(t, "#00ffff", colorTag(ColorOther))
	assert.Equal(t, "#000080", colorTag(ColorBg))
}
