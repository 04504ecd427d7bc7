package db

type sentinel struct{}

// Set is a HashTable with empty values.
type Set[T comparable] struct {
	data *HashTable[T, sentinel]
}

// NewSet creates a new Set
func NewSet[T comparable](initSize int) *Set[T] {
	return &Set[T]{
		data: NewHashTable[T, sentinel](initSize),
	}
}

// Add inserts a key into the set and reports whether it was new.
func (s *Set[T]) Add(key T) bool {
	if s.data.Contains(key) {
		return false
	}
	s.data.Put(key, sentinel{})
	return true
}

// Contains checks if a key is in the set
func (s *Set[T]) Contains(key T) bool {
	return s.data.Contains(key)
}

// Remove deletes a key from the set
func (s *Set[T]) Remove(key T) bool {
	return s.data.Delete(key)
}

func (s *Set[T]) Len() int {
	return s.data.Len()
}

func (s *Set[T]) Members() []T {
	return s.data.Keys()
}
