package app

import (
	"testing"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/core/coretest"
	"github.com/stretchr/testify/assert"
)

func TestPair_Capacity(t *testing.T) {
	var p pair
	a, b, c := coretest.NewConn("a"), coretest.NewConn("b"), coretest.NewConn("c")

	assert.True(t, p.add(a))
	assert.True(t, p.add(b))
	assert.False(t, p.add(c), "a pair never holds a third occupant")
	assert.Equal(t, 2, p.len())
	assert.False(t, p.has(c))
}

func TestPair_RemoveKeepsOrder(t *testing.T) {
	var p pair
	a, b := coretest.NewConn("a"), coretest.NewConn("b")
	p.add(a)
	p.add(b)

	assert.True(t, p.remove(a))
	assert.Equal(t, []core.Connection{b}, p.members())
	assert.False(t, p.remove(a))

	assert.True(t, p.remove(b))
	assert.Equal(t, 0, p.len())
	assert.Empty(t, p.members())
}
