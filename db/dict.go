package db

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	DefaultSize = 16
)

// Options configures a HashTable.
type Options[K any] struct {
	// Size is the initial number of buckets. Values below 1 are clamped to 1.
	Size int

	// LoadFactor is the entries/buckets ratio above which the bucket array
	// doubles. Zero keeps the table at a fixed size.
	LoadFactor float64

	// Hasher defaults to FNVHasher.
	Hasher Hasher[K]
}

func NewOptions[K any]() *Options[K] {
	return &Options[K]{
		Size:   DefaultSize,
		Hasher: FNVHasher[K](),
	}
}

type Entry[K comparable, V any] struct {
	Key   K
	Value V
	Next  *Entry[K, V]
}

// HashTable is a separately chained hash table. Every bucket is a singly
// linked list of the entries whose key hashes to it. It is not safe for
// concurrent use, see SyncHashTable.
type HashTable[K comparable, V any] struct {
	table      []*Entry[K, V]
	size       int
	count      int
	pow2       bool
	loadFactor float64
	hash       Hasher[K]
}

// NewHashTable returns a fixed size table hashing with FNVHasher.
func NewHashTable[K comparable, V any](size int) *HashTable[K, V] {
	opts := NewOptions[K]()
	opts.Size = size
	return NewHashTableWithOpts[K, V](opts)
}

func NewHashTableWithOpts[K comparable, V any](opts *Options[K]) *HashTable[K, V] {
	if opts == nil {
		opts = NewOptions[K]()
	}
	size := opts.Size
	if size < 1 {
		size = 1
	}
	hash := opts.Hasher
	if hash == nil {
		hash = FNVHasher[K]()
	}
	h := &HashTable[K, V]{
		hash:       hash,
		loadFactor: opts.LoadFactor,
	}
	h.setTable(make([]*Entry[K, V], size))
	return h
}

func (h *HashTable[K, V]) setTable(table []*Entry[K, V]) {
	h.table = table
	h.size = len(table)
	h.pow2 = h.size&(h.size-1) == 0
}

// BucketIndex returns the bucket key maps to with the current bucket count.
func (h *HashTable[K, V]) BucketIndex(key K) int {
	sum := h.hash(key)
	if h.pow2 {
		return int(sum & uint64(h.size-1))
	}
	return int(sum % uint64(h.size))
}

// Put inserts key or overwrites its value when it is already present.
func (h *HashTable[K, V]) Put(key K, value V) {
	index := h.BucketIndex(key)

	var last *Entry[K, V]
	for curr := h.table[index]; curr != nil; curr = curr.Next {
		if curr.Key == key {
			curr.Value = value
			return
		}
		last = curr
	}

	entry := &Entry[K, V]{Key: key, Value: value}
	h.count++
	if h.loadFactor > 0 && float64(h.count)/float64(h.size) > h.loadFactor {
		h.resize(h.size * 2)
		h.link(entry)
		return
	}

	if last == nil {
		h.table[index] = entry
	} else {
		last.Next = entry
	}
}

// link appends entry to the tail of its bucket.
func (h *HashTable[K, V]) link(entry *Entry[K, V]) {
	index := h.BucketIndex(entry.Key)
	if h.table[index] == nil {
		h.table[index] = entry
		return
	}
	curr := h.table[index]
	for curr.Next != nil {
		curr = curr.Next
	}
	curr.Next = entry
}

// resize moves every entry into a table of newSize buckets. Entries are
// relinked, not copied, and keep their relative chain order.
func (h *HashTable[K, V]) resize(newSize int) {
	oldTable := h.table
	h.setTable(make([]*Entry[K, V], newSize))

	for _, entry := range oldTable {
		for entry != nil {
			next := entry.Next
			entry.Next = nil
			h.link(entry)
			entry = next
		}
	}
}

// Get returns the value stored under key. The boolean is false when the key
// is absent, so a stored zero value is never mistaken for a miss.
func (h *HashTable[K, V]) Get(key K) (V, bool) {
	for curr := h.table[h.BucketIndex(key)]; curr != nil; curr = curr.Next {
		if curr.Key == key {
			return curr.Value, true
		}
	}
	var zero V
	return zero, false
}

// Lookup is Get returning ErrKeyNotFound on a miss.
func (h *HashTable[K, V]) Lookup(key K) (V, error) {
	v, ok := h.Get(key)
	if !ok {
		return v, fmt.Errorf("%v: %w", key, ErrKeyNotFound)
	}
	return v, nil
}

func (h *HashTable[K, V]) Contains(key K) bool {
	_, ok := h.Get(key)
	return ok
}

// Delete unlinks key from its chain and reports whether it was present.
func (h *HashTable[K, V]) Delete(key K) bool {
	index := h.BucketIndex(key)

	var prev *Entry[K, V]
	for curr := h.table[index]; curr != nil; prev, curr = curr, curr.Next {
		if curr.Key != key {
			continue
		}
		if prev == nil {
			h.table[index] = curr.Next
		} else {
			prev.Next = curr.Next
		}
		curr.Next = nil
		h.count--
		return true
	}
	return false
}

// Len returns the number of elements in the hash table
func (h *HashTable[K, V]) Len() int {
	return h.count
}

// Empty returns true if the hash table is empty
func (h *HashTable[K, V]) Empty() bool {
	return h.count == 0
}

// Size returns the number of buckets.
func (h *HashTable[K, V]) Size() int {
	return h.size
}

// Clear drops every entry and keeps the current bucket count.
func (h *HashTable[K, V]) Clear() {
	for i := range h.table {
		h.table[i] = nil
	}
	h.count = 0
}

// Range calls fn for every entry in bucket order, then chain order, until fn
// returns false. fn must not modify the table.
func (h *HashTable[K, V]) Range(fn func(key K, value V) bool) {
	for _, curr := range h.table {
		for ; curr != nil; curr = curr.Next {
			if !fn(curr.Key, curr.Value) {
				return
			}
		}
	}
}

func (h *HashTable[K, V]) Keys() []K {
	keys := make([]K, 0, h.count)
	h.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (h *HashTable[K, V]) Values() []V {
	values := make([]V, 0, h.count)
	h.Range(func(_ K, value V) bool {
		values = append(values, value)
		return true
	})
	return values
}

// GetSomeKeys returns up to count distinct keys, walking the buckets from a
// random starting point. If the hash table has fewer than count keys, it
// returns all of them.
func (h *HashTable[K, V]) GetSomeKeys(count int) []K {
	if h.Empty() || count <= 0 {
		return nil
	}
	if count > h.count {
		count = h.count
	}

	keys := make([]K, 0, count)
	start := rand.Intn(h.size)
	for i := 0; i < h.size && len(keys) < count; i++ {
		for curr := h.table[(start+i)%h.size]; curr != nil && len(keys) < count; curr = curr.Next {
			keys = append(keys, curr.Key)
		}
	}
	return keys
}

// Stats describes how the entries are spread over the buckets.
type Stats struct {
	Entries     int
	Buckets     int
	UsedBuckets int
	MaxChain    int
	LoadFactor  float64
}

func (h *HashTable[K, V]) Stats() Stats {
	st := Stats{
		Entries:    h.count,
		Buckets:    h.size,
		LoadFactor: float64(h.count) / float64(h.size),
	}
	for _, curr := range h.table {
		chain := 0
		for ; curr != nil; curr = curr.Next {
			chain++
		}
		if chain > 0 {
			st.UsedBuckets++
		}
		if chain > st.MaxChain {
			st.MaxChain = chain
		}
	}
	return st
}

// String prints every bucket as a bracketed list of (key, value) pairs,
// empty buckets included.
func (h *HashTable[K, V]) String() string {
	var b strings.Builder
	for _, curr := range h.table {
		b.WriteByte('[')
		for first := true; curr != nil; curr, first = curr.Next, false {
			if !first {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "(%v, %v)", curr.Key, curr.Value)
		}
		b.WriteByte(']')
	}
	return b.String()
}
