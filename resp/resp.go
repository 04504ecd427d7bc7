package resp

import "errors"

const CRLF string = "\r\n"

// Types equivalent to RESP version 2
const (
	TypeArray   byte = '*'
	TypeBlob    byte = '$'
	TypeSimple  byte = '+'
	TypeError   byte = '-'
	TypeInteger byte = ':'
)

// Scalar types introduced by RESP3. Aggregates (map, set, push) are not read.
// https://github.com/redis/redis-specifications/blob/master/protocol/RESP3.md
const (
	TypeNull    byte = '_'
	TypeDouble  byte = ','
	TypeBoolean byte = '#'
	TypeBignum  byte = '('
)

const (
	MaxBulkLen  = 512 * 1024 * 1024
	MaxArrayLen = 1024 * 1024

	bulkChunk   = 64 * 1024
	maxPrealloc = 1024
)

var ErrProtocol = errors.New("protocol error")

type Node interface {
}

type BlobString struct {
	Value string
}

type SimpleString struct {
	Value string
}

type Error struct {
	Message string
}

type Integer struct {
	Value int64
}

type Null struct {
}

type Double struct {
	Value float64
}

type Boolean struct {
	Value bool
}

type BigNum struct {
	Value string
}

// Array represents an array in RESP
type Array struct {
	Elements []Node
}
