package cart

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry(newFakeAPI(), time.Minute, testLogger())
	defer r.Stop()

	a := r.Get("session-a")
	assert.True(t, a == r.Get("session-a"))
	assert.True(t, a != r.Get("session-b"))
	assert.Equal(t, 2, r.Len())

	found, ok := r.Lookup("session-a")
	assert.True(t, ok)
	assert.True(t, a == found)

	r.Drop("session-a")
	_, ok = r.Lookup("session-a")
	assert.False(t, ok)
	assert.True(t, a != r.Get("session-a"))
}

func TestRegistryExpiresIdleSessions(t *testing.T) {
	r := NewRegistry(newFakeAPI(), 50*time.Millisecond, testLogger())
	defer r.Stop()

	r.Get("idle")
	assert.Equal(t, 1, r.Len())

	deadline := time.Now().Add(2 * time.Second)
	for r.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, r.Len())
	_, ok := r.Lookup("idle")
	assert.False(t, ok)
}
