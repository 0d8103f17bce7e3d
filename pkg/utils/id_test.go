package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenShortID(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := GenShortID()
		assert.Len(t, id, 8)
		assert.NotContains(t, id, "/")
		assert.NotContains(t, id, "+")
		assert.False(t, seen[id], "join codes must not collide")
		seen[id] = true
	}
}
