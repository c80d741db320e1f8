package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesTokens(t *testing.T) {
	l := New(2, 0.001)

	assert.True(t, l.Allow("feeds.example.com"))
	assert.True(t, l.Allow("feeds.example.com"))
	assert.False(t, l.Allow("feeds.example.com"))
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(1, 0.001)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}
