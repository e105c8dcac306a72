package kafka_client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	results []error
	calls   int
}

func (r *fakeReader) ReadMessage(time.Duration) (*kafka.Message, error) {
	i := r.calls
	r.calls++
	if i < len(r.results) && r.results[i] != nil {
		return nil, r.results[i]
	}
	return &kafka.Message{Value: []byte("ok")}, nil
}

type fakeCommitter struct {
	err   error
	fails int
	calls int
}

func (c *fakeCommitter) CommitMessage(*kafka.Message) ([]kafka.TopicPartition, error) {
	c.calls++
	if c.calls <= c.fails {
		return nil, c.err
	}
	return nil, nil
}

func TestIteratorReturnsOnPollTimeout(t *testing.T) {
	timeout := kafka.NewError(kafka.ErrTimedOut, "timed out", false)
	reader := &fakeReader{results: []error{timeout, timeout}}

	it := NewKafkaMessageIterator(context.Background(), reader)
	it.retryDelay = 0

	for i := 1; i <= 2; i++ {
		msg, err := it.Next()
		require.NoError(t, err)
		assert.Nil(t, msg)
		assert.Equal(t, i, reader.calls, "one poll per timeout")
	}

	msg, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(msg.Value))
	assert.Equal(t, 3, reader.calls)
}

func TestIteratorErrors(t *testing.T) {
	t.Run("retries exhausted", func(t *testing.T) {
		boom := errors.New("boom")
		reader := &fakeReader{results: []error{boom, boom, boom, boom, boom}}
		it := NewKafkaMessageIterator(context.Background(), reader)
		it.retryDelay = 0

		_, err := it.Next()
		require.Error(t, err)
		assert.Equal(t, MAX_RETRIES, reader.calls)
	})

	t.Run("brokers down", func(t *testing.T) {
		reader := &fakeReader{results: []error{kafka.NewError(kafka.ErrAllBrokersDown, "down", false)}}
		it := NewKafkaMessageIterator(context.Background(), reader)

		_, err := it.Next()
		require.Error(t, err)
		assert.Equal(t, 1, reader.calls)
	})

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		it := NewKafkaMessageIterator(ctx, &fakeReader{})

		_, err := it.Next()
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("nil reader", func(t *testing.T) {
		_, err := NewKafkaMessageIterator(context.Background(), nil).Next()
		assert.Error(t, err)
	})
}

func TestCommitHandler(t *testing.T) {
	topic := KAFKA_TOPIC_ANALYSIS_REQUEST
	msg := &kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: 42}}

	t.Run("retries then succeeds", func(t *testing.T) {
		c := &fakeCommitter{err: errors.New("busy"), fails: 2}
		ch := NewCommitHandler(context.Background(), c)
		ch.retryDelay = 0

		require.NoError(t, ch.Commit(msg))
		assert.Equal(t, 3, c.calls)
	})

	t.Run("gives up", func(t *testing.T) {
		c := &fakeCommitter{err: errors.New("busy"), fails: MAX_RETRIES}
		ch := NewCommitHandler(context.Background(), c)
		ch.retryDelay = 0

		assert.Error(t, ch.Commit(msg))
		assert.Equal(t, MAX_RETRIES, c.calls)
	})

	t.Run("brokers down", func(t *testing.T) {
		c := &fakeCommitter{err: kafka.NewError(kafka.ErrAllBrokersDown, "down", false), fails: 1}
		ch := NewCommitHandler(context.Background(), c)

		assert.Error(t, ch.Commit(msg))
		assert.Equal(t, 1, c.calls)
	})
}

func TestConsumerRegistry(t *testing.T) {
	called := false
	RegisterConsumer("test-topic", func(context.Context, *kafka.Consumer) { called = true })
	t.Cleanup(func() { delete(consumerRegistry, "test-topic") })

	fn, err := lookupConsumer("test-topic")
	require.NoError(t, err)
	fn(context.Background(), nil)
	assert.True(t, called)

	_, err = lookupConsumer("missing-topic")
	assert.Error(t, err)
}

func TestGetKafkaConfig(t *testing.T) {
	t.Setenv("KAFKA_CONSUMER_TOPIC", KAFKA_TOPIC_ANALYSIS_RESULTS)

	cfg := GetKafkaConfig()
	assert.Equal(t, KAFKA_TOPIC_ANALYSIS_RESULTS, cfg.Topic)
	assert.Equal(t, "writeclean-consumer-group", cfg.GroupID)
	assert.NotEmpty(t, cfg.Broker)
}

func TestPublishWithoutProducer(t *testing.T) {
	assert.Error(t, PublishToKafka(KAFKA_TOPIC_ANALYSIS_RESULTS, "id", map[string]string{}))
}
