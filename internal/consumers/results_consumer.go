package consumers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/writeclean/internal/clients/kafka_client"
	"github.com/spacesedan/writeclean/internal/db"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/utils"
)

const (
	STORE_RETRIES = 3
	// MAX_RECORD_BYTES is DynamoDB's item size limit.
	MAX_RECORD_BYTES = 400 * 1024
	// MAX_BACKLOG caps the records held while the store is failing.
	MAX_BACKLOG = 5 * utils.BATCH_SIZE
)

type RecordStore func(ctx context.Context, records []models.AnalysisRecord) error

type Committer interface {
	Commit(msg *kafka.Message) error
}

// ResultsConsumer batches analysis records into DynamoDB and commits their
// offsets after a successful write. A batch the store rejects stays buffered
// and is retried on the next flush.
type ResultsConsumer struct {
	buffer     *utils.BatchBuffer[models.AnalysisRecord]
	store      RecordStore
	deadLetter Publisher
	interval   time.Duration
	failing    bool
}

type ResultsOption func(*ResultsConsumer)

// WithFlushInterval sets how often a partial batch is written.
func WithFlushInterval(d time.Duration) ResultsOption {
	return func(rc *ResultsConsumer) {
		if d > 0 {
			rc.interval = d
		}
	}
}

// WithDeadLetter sets where records that can never be stored are sent.
func WithDeadLetter(p Publisher) ResultsOption {
	return func(rc *ResultsConsumer) { rc.deadLetter = p }
}

func NewResultsConsumer(store RecordStore, opts ...ResultsOption) *ResultsConsumer {
	if store == nil {
		store = db.BatchInsertAnalysisRecords
	}
	rc := &ResultsConsumer{
		buffer:     utils.NewBatchBuffer[models.AnalysisRecord](),
		store:      store,
		deadLetter: kafka_client.PublishToKafka,
		interval:   utils.BATCH_TIMEOUT,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Start reads records until ctx is done. A partial batch is written every
// flush interval, including while the topic is idle.
func (rc *ResultsConsumer) Start(ctx context.Context, source kafka_client.MessageSource) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, source)
	committer := kafka_client.NewCommitHandler(ctx, source)

	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	slog.Info("[ResultsConsumer] Listening for messages...")

	for {
		select {
		case <-ctx.Done():
			// buffered records stay uncommitted and are redelivered
			slog.Warn("[ResultsConsumer] Stopping consumer...",
				slog.Int("buffered", rc.buffer.Size()))
			return
		case <-ticker.C:
			rc.flush(ctx, committer)
			continue
		default:
		}

		if rc.buffer.Size() >= MAX_BACKLOG {
			slog.Warn("[ResultsConsumer] Backlog full, pausing reads",
				slog.Int("buffered", rc.buffer.Size()))
			select {
			case <-ctx.Done():
			case <-ticker.C:
				rc.flush(ctx, committer)
			}
			continue
		}

		msg, err := iterator.Next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			utils.HandleConsumerError(err)
			continue
		}
		if msg == nil {
			continue
		}

		if rc.add(msg, committer) && !rc.failing {
			rc.flush(ctx, committer)
		}
	}
}

// add buffers the record carried by msg and reports whether the batch is
// full. Undecodable messages are committed and dropped; records too large
// to store go to the failed topic.
func (rc *ResultsConsumer) add(msg *kafka.Message, committer Committer) bool {
	var record models.AnalysisRecord
	if err := utils.DeserializeFromJSON(msg.Value, &record); err != nil || record.RequestID == "" {
		slog.Warn("[ResultsConsumer] Dropping malformed record",
			slog.String("key", string(msg.Key)))
		rc.commit(committer, msg, string(msg.Key))
		return false
	}

	if len(msg.Value) > MAX_RECORD_BYTES {
		rc.reject(record.RequestID, len(msg.Value))
		rc.commit(committer, msg, record.RequestID)
		return false
	}

	utils.TrackMessage(record.RequestID, msg)
	return rc.buffer.Add(record)
}

// reject publishes an AnalysisFailure for a record that cannot be stored.
func (rc *ResultsConsumer) reject(requestID string, size int) {
	failure := models.AnalysisFailure{
		RequestID: requestID,
		Error:     fmt.Sprintf("record of %d bytes exceeds the %d byte item limit", size, MAX_RECORD_BYTES),
		FailedAt:  time.Now().UTC(),
	}
	slog.Warn("[ResultsConsumer] Rejecting oversized record",
		slog.String("request_id", requestID),
		slog.Int("bytes", size))

	if err := rc.deadLetter(kafka_client.KAFKA_TOPIC_ANALYSIS_FAILED, requestID, failure); err != nil {
		slog.Error("[ResultsConsumer] Failed to publish rejected record",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
	}
}

// flush writes the buffered records. On failure they go back into the
// buffer with their offsets still uncommitted.
func (rc *ResultsConsumer) flush(ctx context.Context, committer Committer) error {
	if !rc.buffer.HasData() {
		return nil
	}
	rc.buffer.LogBatchProcessing("analysis-records")
	batch := uniqueByRequest(rc.buffer.GetAndClear())

	var insertErr error
	for i := 0; i < STORE_RETRIES; i++ {
		insertErr = rc.store(ctx, batch)
		if insertErr == nil {
			break
		}
		slog.Error("[ResultsConsumer] Failed to write records to DB",
			slog.String("error", insertErr.Error()),
			slog.Int("attempt", i+1))
	}

	rc.failing = insertErr != nil
	if insertErr != nil {
		for _, record := range batch {
			rc.buffer.Add(record)
		}
		return insertErr
	}

	for _, record := range batch {
		if msg, found := utils.GetMessageForRequest(record.RequestID); found {
			rc.commit(committer, msg, record.RequestID)
		}
	}
	return nil
}

func (rc *ResultsConsumer) commit(committer Committer, msg *kafka.Message, requestID string) {
	if err := committer.Commit(msg); err != nil {
		slog.Warn("[ResultsConsumer] Failed to commit offset",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
	}
}

// uniqueByRequest keeps the last record for each request ID, in first-seen
// order. BatchWriteItem rejects a batch that writes one key twice.
func uniqueByRequest(records []models.AnalysisRecord) []models.AnalysisRecord {
	index := make(map[string]int, len(records))
	out := make([]models.AnalysisRecord, 0, len(records))
	for _, record := range records {
		if i, ok := index[record.RequestID]; ok {
			out[i] = record
			continue
		}
		index[record.RequestID] = len(out)
		out = append(out, record)
	}
	return out
}
