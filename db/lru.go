package db

import "sync"

/* ----------------------------------------------------------------------------
 * LRU bounded map
 *
 * The index is a HashTable from key to list node; the list keeps the keys
 * ordered from most to least recently used. Every Get and Put moves the node
 * to the head, so the tail is always the next eviction candidate.
 * --------------------------------------------------------------------------*/

type lruItem[K comparable, V any] struct {
	key   K
	value V
}

// EvictFunc is called with the lock held for every key the LRU pushes out.
type EvictFunc[K comparable, V any] func(key K, value V)

type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	index    *HashTable[K, *ListNode[lruItem[K, V]]]
	order    *List[lruItem[K, V]]
	onEvict  EvictFunc[K, V]
}

// NewLRU keeps at most capacity keys; capacity <= 0 never evicts.
func NewLRU[K comparable, V any](capacity int, opts *Options[K], onEvict EvictFunc[K, V]) *LRU[K, V] {
	return &LRU[K, V]{
		capacity: capacity,
		index:    NewHashTableWithOpts[K, *ListNode[lruItem[K, V]]](opts),
		order:    NewList[lruItem[K, V]](),
		onEvict:  onEvict,
	}
}

func (lru *LRU[K, V]) Put(key K, value V) {
	lru.Swap(key, value)
}

func (lru *LRU[K, V]) Swap(key K, value V) (V, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if node, ok := lru.index.Get(key); ok {
		old := node.Value.value
		node.Value.value = value
		lru.order.MoveToHead(node)
		return old, true
	}

	lru.index.Put(key, lru.order.AddNodeHead(lruItem[K, V]{key: key, value: value}))
	if lru.capacity > 0 {
		for lru.order.Len() > lru.capacity {
			lru.evictTail()
		}
	}
	var zero V
	return zero, false
}

func (lru *LRU[K, V]) evictTail() {
	tail := lru.order.Tail
	lru.order.RemoveNode(tail)
	lru.index.Delete(tail.Value.key)
	if lru.onEvict != nil {
		lru.onEvict(tail.Value.key, tail.Value.value)
	}
}

// Get marks key as most recently used.
func (lru *LRU[K, V]) Get(key K) (V, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.index.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	lru.order.MoveToHead(node)
	return node.Value.value, true
}

// Contains does not touch the recency order.
func (lru *LRU[K, V]) Contains(key K) bool {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.index.Contains(key)
}

func (lru *LRU[K, V]) Delete(key K) bool {
	_, ok := lru.DeleteValue(key)
	return ok
}

func (lru *LRU[K, V]) DeleteValue(key K) (V, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	node, ok := lru.index.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	lru.index.Delete(key)
	lru.order.RemoveNode(node)
	return node.Value.value, true
}

func (lru *LRU[K, V]) Len() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.order.Len()
}

// Keys returns the keys from most to least recently used.
func (lru *LRU[K, V]) Keys() []K {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	keys := make([]K, 0, lru.order.Len())
	it := lru.order.Iterator(DIRECTION_HEAD)
	for node := it.Next(); node != nil; node = it.Next() {
		keys = append(keys, node.Value.key)
	}
	return keys
}

func (lru *LRU[K, V]) GetSomeKeys(count int) []K {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.index.GetSomeKeys(count)
}

func (lru *LRU[K, V]) Clear() {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	lru.index.Clear()
	lru.order.Empty()
}

func (lru *LRU[K, V]) Stats() Stats {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.index.Stats()
}
