package utils

import (
	"log/slog"
	"sync"
	"time"
)

const (
	BATCH_SIZE    = 10
	BATCH_TIMEOUT = time.Second * 5
)

// BatchBuffer collects items between flushes. It is safe for concurrent use.
type BatchBuffer[T any] struct {
	mu    sync.Mutex
	items []T
	limit int
}

// NewBatchBuffer returns a buffer that reports full at BATCH_SIZE items.
func NewBatchBuffer[T any]() *BatchBuffer[T] {
	return NewBatchBufferSize[T](BATCH_SIZE)
}

func NewBatchBufferSize[T any](limit int) *BatchBuffer[T] {
	if limit < 1 {
		limit = 1
	}
	return &BatchBuffer[T]{
		items: make([]T, 0, limit),
		limit: limit,
	}
}

// Add appends item and reports whether the buffer reached its limit.
func (b *BatchBuffer[T]) Add(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, item)
	return len(b.items) >= b.limit
}

// GetAndClear hands over the buffered items, or nil when there are none.
func (b *BatchBuffer[T]) GetAndClear() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		return nil
	}

	batch := b.items
	b.items = make([]T, 0, b.limit)
	return batch
}

func (b *BatchBuffer[T]) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *BatchBuffer[T]) HasData() bool {
	return b.Size() > 0
}

func (b *BatchBuffer[T]) LogBatchProcessing(batchType string) {
	slog.Info("[BatchBuffer] Processing batch",
		slog.String("type", batchType),
		slog.Int("batch_size", b.Size()))
}
