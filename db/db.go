package db

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
)

const (
	INITIAL_DB_SIZE = 16
)

// DBOptions configures a keyspace.
type DBOptions struct {
	Table   *Options[string]
	MaxKeys int // > 0 switches the keyspace to LRU eviction
}

// DB is a numbered keyspace of byte values. Single-key reads go straight to
// the store; writes are serialized so the memory estimate stays exact.
type DB struct {
	id         uint64
	mu         sync.Mutex
	dict       Store[string, []byte]
	usedMemory atomic.Int64
	evicted    atomic.Int64
}

func New(id uint64) *DB {
	opts := NewOptions[string]()
	opts.Size = INITIAL_DB_SIZE
	opts.Hasher = StringHasher
	return NewWithOpts(id, &DBOptions{Table: opts})
}

func NewWithOpts(id uint64, opts *DBOptions) *DB {
	db := &DB{id: id}
	if opts.MaxKeys > 0 {
		db.dict = NewLRU[string, []byte](opts.MaxKeys, opts.Table, db.onEvict)
	} else {
		db.dict = NewSyncHashTable[string, []byte](opts.Table)
	}
	return db
}

func (db *DB) onEvict(key string, value []byte) {
	db.usedMemory.Add(-entryMemoryUsage(key, value))
	db.evicted.Add(1)
}

func (db *DB) GetID() uint64 {
	return db.id
}

// LookupKey returns the value stored at key.
func (db *DB) LookupKey(key string) ([]byte, bool) {
	return db.dict.Get(key)
}

// SetKey stores value at key and returns the previous value if there was one.
func (db *DB) SetKey(key string, value []byte) ([]byte, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.setKey(key, value)
}

func (db *DB) setKey(key string, value []byte) ([]byte, bool) {
	old, exist := db.dict.Swap(key, value)
	if exist {
		db.usedMemory.Add(estimateMemoryUsage(value) - estimateMemoryUsage(old))
	} else {
		db.usedMemory.Add(entryMemoryUsage(key, value))
	}
	return old, exist
}

// SetFlags selects the conditional forms of SetKeyIf.
type SetFlags int

const (
	SetKeyNX SetFlags = 1 << iota // only when the key does not exist
	SetKeyXX                      // only when the key already exists
)

// SetKeyIf stores value subject to flags. It returns the previous value, if
// any, and whether the write happened.
func (db *DB) SetKeyIf(key string, value []byte, flags SetFlags) (old []byte, exist bool, written bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	old, exist = db.dict.Get(key)
	if (flags&SetKeyNX != 0 && exist) || (flags&SetKeyXX != 0 && !exist) {
		return old, exist, false
	}
	db.setKey(key, value)
	return old, exist, true
}

// Append concatenates value to the string at key, creating it when missing,
// and returns the new length.
func (db *DB) Append(key string, value []byte) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	old, _ := db.dict.Get(key)
	merged := make([]byte, 0, len(old)+len(value))
	merged = append(merged, old...)
	merged = append(merged, value...)
	db.setKey(key, merged)
	return len(merged)
}

// IncrBy adds delta to the integer stored at key, starting from 0 when the
// key is missing, and stores the result as its decimal string.
func (db *DB) IncrBy(key string, delta int64) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int64
	if old, ok := db.dict.Get(key); ok {
		v, err := strconv.ParseInt(string(old), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, ErrValueNotInteger)
		}
		n = v
	}
	if (delta > 0 && n > math.MaxInt64-delta) || (delta < 0 && n < math.MinInt64-delta) {
		return 0, ErrOverflow
	}
	n += delta
	db.setKey(key, strconv.AppendInt(nil, n, 10))
	return n, nil
}

// GenericDelete removes key and reports whether it existed.
func (db *DB) GenericDelete(key string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	old, ok := db.dict.DeleteValue(key)
	if ok {
		db.usedMemory.Add(-entryMemoryUsage(key, old))
	}
	return ok
}

func (db *DB) Exists(key string) bool {
	return db.dict.Contains(key)
}

func (db *DB) DBSize() int {
	return db.dict.Len()
}

// Keys returns every key matching the glob pattern ("*" matches all).
func (db *DB) Keys(pattern string) []string {
	all := db.dict.Keys()
	if pattern == "*" {
		return all
	}
	keys := make([]string, 0)
	for _, key := range all {
		if globMatch(pattern, key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// RandomKey returns some key of the keyspace, false when it is empty.
func (db *DB) RandomKey() (string, bool) {
	keys := db.dict.GetSomeKeys(1)
	if len(keys) == 0 {
		return "", false
	}
	return keys[0], true
}

func (db *DB) FlushDB() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.dict.Clear()
	db.usedMemory.Store(0)
}

// UsedMemory is the estimated number of bytes held by keys and values.
func (db *DB) UsedMemory() int64 {
	return db.usedMemory.Load()
}

// EvictedKeys counts keys pushed out by the LRU policy.
func (db *DB) EvictedKeys() int64 {
	return db.evicted.Load()
}

func (db *DB) Stats() Stats {
	return db.dict.Stats()
}
