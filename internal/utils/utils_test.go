package utils

import (
	"sync"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchBuffer(t *testing.T) {
	buf := NewBatchBuffer[string]()
	assert.False(t, buf.HasData())
	assert.Nil(t, buf.GetAndClear())

	assert.False(t, buf.Add("a"))
	assert.False(t, buf.Add("b"))
	assert.True(t, buf.HasData())
	assert.Equal(t, 2, buf.Size())

	assert.Equal(t, []string{"a", "b"}, buf.GetAndClear())
	assert.Zero(t, buf.Size())
}

func TestBatchBufferLimit(t *testing.T) {
	buf := NewBatchBufferSize[int](3)
	assert.False(t, buf.Add(1))
	assert.False(t, buf.Add(2))
	assert.True(t, buf.Add(3))
	assert.True(t, buf.Add(4), "stays full until cleared")

	assert.Len(t, buf.GetAndClear(), 4)
	assert.False(t, buf.Add(5))
}

func TestBatchBufferConcurrentAdds(t *testing.T) {
	buf := NewBatchBuffer[int]()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			buf.Add(n)
		}(i)
	}
	wg.Wait()

	assert.Len(t, buf.GetAndClear(), 100)
}

func TestMessageTracking(t *testing.T) {
	msg := &kafka.Message{Key: []byte("req-1")}
	TrackMessage("req-1", msg)

	got, ok := GetMessageForRequest("req-1")
	require.True(t, ok)
	assert.Same(t, msg, got)

	_, ok = GetMessageForRequest("req-1")
	assert.False(t, ok, "a tracked message is handed out once")
}

func TestJSONHelpers(t *testing.T) {
	data, err := SerializeToJSON(map[string]int{"n": 1})
	require.NoError(t, err)

	var out map[string]int
	require.NoError(t, DeserializeFromJSON(data, &out))
	assert.Equal(t, 1, out["n"])

	assert.Error(t, DeserializeFromJSON([]byte("{"), &out))

	_, err = SerializeToJSON(make(chan int))
	assert.Error(t, err)
}
