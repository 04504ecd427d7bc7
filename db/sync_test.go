package db

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncHashTableConcurrentWriters(t *testing.T) {
	opts := NewOptions[string]()
	opts.LoadFactor = 0.75
	s := NewSyncHashTable[string, int](opts)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("w%d-%d", w, i)
				s.Put(key, i)
				if v, ok := s.Get(key); !ok || v != i {
					t.Errorf("lost %s", key)
				}
				if i%2 == 1 {
					s.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 8*250, s.Len())
	assert.Len(t, s.Keys(), 8*250)
}

func TestSyncHashTableSwap(t *testing.T) {
	s := NewSyncHashTable[string, string](nil)

	old, ok := s.Swap("k", "v1")
	assert.False(t, ok)
	assert.Equal(t, "", old)

	old, ok = s.Swap("k", "v2")
	assert.True(t, ok)
	assert.Equal(t, "v1", old)

	v, ok := s.DeleteValue("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	_, err := s.Lookup("k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
