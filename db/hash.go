package db

import (
	"fmt"
	"hash/fnv"
	"strings"
)

const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// Hasher maps a key to a 64-bit hash. The bucket index is derived from it
// with a modulo of the table size.
type Hasher[K any] func(key K) uint64

// printKey is the form the generic hashers work on. Float zeros are
// canonicalised so 0.0 and -0.0, which are ==, hash alike. Composite keys
// holding a negative zero (structs, arrays) are printed as is.
func printKey[K any](key K) string {
	switch v := any(key).(type) {
	case float64:
		if v == 0 {
			v = 0
		}
		return fmt.Sprint(v)
	case float32:
		if v == 0 {
			v = 0
		}
		return fmt.Sprint(v)
	case complex128:
		return fmt.Sprint(complex(canonicalZero(real(v)), canonicalZero(imag(v))))
	case complex64:
		re, im := float32(canonicalZero(float64(real(v)))), float32(canonicalZero(float64(imag(v))))
		return fmt.Sprint(complex(re, im))
	default:
		return fmt.Sprint(key)
	}
}

func canonicalZero(f float64) float64 {
	if f == 0 {
		return 0
	}
	return f
}

// FNVHasher hashes the printed form of the key with FNV-1a.
func FNVHasher[K any]() Hasher[K] {
	return func(key K) uint64 {
		hasher := fnv.New64a()
		hasher.Write([]byte(printKey(key)))
		return hasher.Sum64()
	}
}

// CharSumHasher adds up the code points of the printed key, so "a" hashes to 97.
// It collides a lot (every anagram lands in the same bucket) which makes it
// useful for exercising chains.
func CharSumHasher[K any]() Hasher[K] {
	return func(key K) uint64 {
		var sum uint64
		for _, r := range printKey(key) {
			sum += uint64(r)
		}
		return sum
	}
}

// StringHasher is FNV-1a over a string key without going through fmt.
func StringHasher(key string) uint64 {
	h := uint64(offset64)
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= prime64
	}
	return h
}

// HasherByName resolves the hasher names accepted in configuration files.
func HasherByName[K any](name string) (Hasher[K], error) {
	switch strings.ToLower(name) {
	case "", "fnv", "fnv1a":
		return FNVHasher[K](), nil
	case "charsum", "sum":
		return CharSumHasher[K](), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidHasher, name)
	}
}
