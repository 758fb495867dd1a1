package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryRegisterGetRemove(t *testing.T) {
	registry := NewSessionRegistry()

	_, ok := registry.Get("alice")
	assert.False(t, ok)

	client := newFakeClient()
	registry.Register("alice", client)

	got, ok := registry.Get("alice")
	assert.True(t, ok)
	assert.Same(t, client, got.(*fakeClient))
	assert.Equal(t, 1, registry.Len())

	removed, ok := registry.Remove("alice")
	assert.True(t, ok)
	assert.Same(t, client, removed.(*fakeClient))
	assert.Equal(t, 0, registry.Len())

	_, ok = registry.Remove("alice")
	assert.False(t, ok)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewSessionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.Register("alice", newFakeClient())
		}()
		go func() {
			defer wg.Done()
			registry.Get("alice")
			registry.Len()
		}()
	}
	wg.Wait()

	_, ok := registry.Get("alice")
	assert.True(t, ok)
}
