package db

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBSetLookupDelete(t *testing.T) {
	testDb := New(0)
	_, existed := testDb.SetKey("mykey", []byte("myvalue"))
	assert.False(t, existed)

	value, exist := testDb.LookupKey("mykey")
	assert.True(t, exist)
	assert.Equal(t, []byte("myvalue"), value)
	assert.Equal(t, int64(16+5+24+7), testDb.UsedMemory())

	old, existed := testDb.SetKey("mykey", []byte("v"))
	assert.True(t, existed)
	assert.Equal(t, []byte("myvalue"), old)
	assert.Equal(t, int64(16+5+24+1), testDb.UsedMemory())

	assert.True(t, testDb.GenericDelete("mykey"))
	assert.False(t, testDb.GenericDelete("mykey"))
	assert.Equal(t, int64(0), testDb.UsedMemory())
	assert.Equal(t, 0, testDb.DBSize())
}

func TestDBSetKeyIf(t *testing.T) {
	testDb := New(0)

	_, _, written := testDb.SetKeyIf("k", []byte("1"), SetKeyXX)
	assert.False(t, written)
	assert.False(t, testDb.Exists("k"))

	_, _, written = testDb.SetKeyIf("k", []byte("1"), SetKeyNX)
	assert.True(t, written)

	old, exist, written := testDb.SetKeyIf("k", []byte("2"), SetKeyNX)
	assert.False(t, written)
	assert.True(t, exist)
	assert.Equal(t, []byte("1"), old)

	_, _, written = testDb.SetKeyIf("k", []byte("3"), SetKeyXX)
	assert.True(t, written)
	value, _ := testDb.LookupKey("k")
	assert.Equal(t, []byte("3"), value)
}

func TestDBAppend(t *testing.T) {
	testDb := New(0)
	assert.Equal(t, 5, testDb.Append("k", []byte("hello")))
	assert.Equal(t, 11, testDb.Append("k", []byte(" world")))
	value, _ := testDb.LookupKey("k")
	assert.Equal(t, "hello world", string(value))
}

func TestDBKeysPattern(t *testing.T) {
	testDb := New(0)
	for _, k := range []string{"user:1", "user:2", "order:1", "user:a/b"} {
		testDb.SetKey(k, []byte("x"))
	}

	keys := testDb.Keys("user:*")
	sort.Strings(keys)
	assert.Equal(t, []string{"user:1", "user:2", "user:a/b"}, keys)

	assert.Len(t, testDb.Keys("*"), 4)
	assert.Equal(t, []string{"order:1"}, testDb.Keys("order:?"))
	assert.Empty(t, testDb.Keys("["))
}

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern, key string
		want         bool
	}{
		{"*", "", true},
		{"*", "a/b", true},
		{"a*", "a/b/c", true},
		{"a*c", "abbbc", true},
		{"a*c", "abbbd", false},
		{"**x", "yyx", true},
		{"h?llo", "hello", true},
		{"h?llo", "hllo", false},
		{"h[ae]llo", "hallo", true},
		{"h[ae]llo", "hillo", false},
		{"h[^e]llo", "hallo", true},
		{"h[^e]llo", "hello", false},
		{"h[a-b]llo", "hbllo", true},
		{"h[b-a]llo", "hallo", true},
		{"h[a-b]llo", "hcllo", false},
		{`h\*llo`, "h*llo", true},
		{`h\*llo`, "hello", false},
		{`[\]]`, "]", true},
		{"[abc", "b", true},
		{"abc", "ab", false},
		{"ab", "abc", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, globMatch(tt.pattern, tt.key), "%q ~ %q", tt.pattern, tt.key)
	}
}

func TestDBRandomKeyAndFlush(t *testing.T) {
	testDb := New(0)
	_, ok := testDb.RandomKey()
	assert.False(t, ok)

	testDb.SetKey("only", []byte("1"))
	key, ok := testDb.RandomKey()
	assert.True(t, ok)
	assert.Equal(t, "only", key)

	testDb.FlushDB()
	assert.Equal(t, 0, testDb.DBSize())
	assert.Equal(t, int64(0), testDb.UsedMemory())
}

func TestDBMaxKeysEvicts(t *testing.T) {
	testDb := NewWithOpts(1, &DBOptions{Table: NewOptions[string](), MaxKeys: 2})
	testDb.SetKey("a", []byte("1"))
	testDb.SetKey("b", []byte("2"))
	testDb.LookupKey("a")
	testDb.SetKey("c", []byte("3"))

	assert.Equal(t, 2, testDb.DBSize())
	assert.False(t, testDb.Exists("b"))
	assert.Equal(t, int64(1), testDb.EvictedKeys())
	assert.Equal(t, int64(2*(16+1+24+1)), testDb.UsedMemory())
	assert.Equal(t, uint64(1), testDb.GetID())
}

func TestDBIncrBy(t *testing.T) {
	testDb := New(0)

	n, err := testDb.IncrBy("counter", 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), n)
	n, err = testDb.IncrBy("counter", -7)
	assert.NoError(t, err)
	assert.Equal(t, int64(-2), n)
	value, _ := testDb.LookupKey("counter")
	assert.Equal(t, "-2", string(value))

	testDb.SetKey("word", []byte("abc"))
	_, err = testDb.IncrBy("word", 1)
	assert.ErrorIs(t, err, ErrValueNotInteger)

	testDb.SetKey("big", []byte("9223372036854775807"))
	_, err = testDb.IncrBy("big", 1)
	assert.ErrorIs(t, err, ErrOverflow)
	testDb.SetKey("small", []byte("-9223372036854775808"))
	_, err = testDb.IncrBy("small", -1)
	assert.ErrorIs(t, err, ErrOverflow)
}
