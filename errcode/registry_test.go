package errcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(New(30, 1, "demo", "error.demo.a", "a"))

	key, ok := r.Lookup(300001)
	assert.True(t, ok)
	assert.Equal(t, "demo:error.demo.a", key)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Register(New(30, 1, "demo", "error.demo.a", "a"))
	assert.NotPanics(t, func() {
		r.Register(New(30, 1, "demo", "error.demo.a", "other message"))
	})
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Conflict(t *testing.T) {
	r := NewRegistry()
	r.Register(New(30, 1, "demo", "error.demo.a", "a"))
	assert.Panics(t, func() {
		r.Register(New(30, 1, "demo", "error.demo.b", "b"))
	})
}
