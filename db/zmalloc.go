package db

import "unsafe"

// estimateMemoryUsage is a rough byte count for a key or value: the header
// plus the payload. It ignores allocator overhead and the chain entry itself.
func estimateMemoryUsage(v any) int64 {
	switch value := v.(type) {
	case int:
		return int64(unsafe.Sizeof(value))
	case int64:
		return int64(unsafe.Sizeof(value))
	case float64:
		return int64(unsafe.Sizeof(value))
	case string:
		// 16 bytes for string header on 64-bit system + actual string content
		return int64(16 + len(value))
	case []byte:
		// 24 bytes for slice header on 64-bit system + content
		return int64(24 + len(value))
	default:
		return 0
	}
}

func entryMemoryUsage(key string, value []byte) int64 {
	return estimateMemoryUsage(key) + estimateMemoryUsage(value)
}
