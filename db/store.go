package db

// Store is the keyspace contract shared by SyncHashTable and LRU. All methods
// are safe for concurrent use.
type Store[K comparable, V any] interface {
	Put(key K, value V)
	Swap(key K, value V) (V, bool)
	Get(key K) (V, bool)
	Contains(key K) bool
	Delete(key K) bool
	DeleteValue(key K) (V, bool)
	Len() int
	Keys() []K
	GetSomeKeys(count int) []K
	Clear()
	Stats() Stats
}

var (
	_ Store[string, []byte] = (*SyncHashTable[string, []byte])(nil)
	_ Store[string, []byte] = (*LRU[string, []byte])(nil)
)
