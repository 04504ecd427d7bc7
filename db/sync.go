package db

import "sync"

// SyncHashTable guards a HashTable with one RWMutex for the whole table.
type SyncHashTable[K comparable, V any] struct {
	mu sync.RWMutex
	ht *HashTable[K, V]
}

func NewSyncHashTable[K comparable, V any](opts *Options[K]) *SyncHashTable[K, V] {
	return &SyncHashTable[K, V]{ht: NewHashTableWithOpts[K, V](opts)}
}

func (s *SyncHashTable[K, V]) Put(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ht.Put(key, value)
}

// Swap stores value and returns the previous one, if any, in one critical section.
func (s *SyncHashTable[K, V]) Swap(key K, value V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.ht.Get(key)
	s.ht.Put(key, value)
	return old, ok
}

func (s *SyncHashTable[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ht.Get(key)
}

func (s *SyncHashTable[K, V]) Lookup(key K) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ht.Lookup(key)
}

func (s *SyncHashTable[K, V]) Contains(key K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ht.Contains(key)
}

func (s *SyncHashTable[K, V]) Delete(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ht.Delete(key)
}

// DeleteValue removes key and returns the value it held.
func (s *SyncHashTable[K, V]) DeleteValue(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ht.Get(key)
	if ok {
		s.ht.Delete(key)
	}
	return v, ok
}

func (s *SyncHashTable[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ht.Len()
}

func (s *SyncHashTable[K, V]) Keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ht.Keys()
}

func (s *SyncHashTable[K, V]) GetSomeKeys(count int) []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ht.GetSomeKeys(count)
}

// Range holds the read lock while fn runs; fn must not call back into s.
func (s *SyncHashTable[K, V]) Range(fn func(key K, value V) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.ht.Range(fn)
}

func (s *SyncHashTable[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ht.Clear()
}

func (s *SyncHashTable[K, V]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ht.Stats()
}

func (s *SyncHashTable[K, V]) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ht.String()
}
