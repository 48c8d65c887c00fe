// Package mempool pools the scratch buffers used on the encode hot path so
// concurrent uploads do not re-allocate megabyte-sized JPEG buffers per call.
package mempool

import (
	"bytes"
	"sync"
)

// maxPooledCap keeps pathological buffers (a few huge uploads) from pinning
// memory in the pool forever.
const maxPooledCap = 8 << 20

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// GetBuffer retrieves an empty buffer from the pool.
// The caller must return it via PutBuffer when done.
func GetBuffer() *bytes.Buffer {
	buf, ok := bufferPool.Get().(*bytes.Buffer)
	if !ok {
		buf = new(bytes.Buffer)
	}
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool. Nil and oversized buffers are
// dropped.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledCap {
		return
	}
	bufferPool.Put(buf)
}
