package db

import "errors"

var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrInvalidHasher = errors.New("unknown hasher")

	ErrValueNotInteger = errors.New("value is not an integer")
	ErrOverflow        = errors.New("increment or decrement would overflow")
)
