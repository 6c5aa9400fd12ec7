package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSessionID(t *testing.T) {
	// When: generating two ids
	first := GenerateSessionID()
	second := GenerateSessionID()

	// Then: both parse and differ
	assert.True(t, IsSessionID(first))
	assert.True(t, IsSessionID(second))
	assert.NotEqual(t, first, second)
	assert.False(t, IsSessionID("not-an-id"))
}
