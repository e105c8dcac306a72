package consumers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/writeclean/internal/analyzer"
	"github.com/spacesedan/writeclean/internal/clients/kafka_client"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/textprep"
	"github.com/spacesedan/writeclean/internal/utils"
)

const (
	PUBLISH_RETRIES         = 3
	DEFAULT_ANALYZE_TIMEOUT = 5 * time.Second
)

// Deduper remembers request ids that were already answered. It is satisfied
// by *clients.ValkeyClient.
type Deduper interface {
	IsProcessed(ctx context.Context, requestID string) bool
	MarkProcessed(ctx context.Context, requestID string) error
}

type Publisher func(topic, key string, value any) error

type AnalysisRequestHandler struct {
	engine     *analyzer.Analyzer
	dedupe     Deduper
	publish    Publisher
	timeout    time.Duration
	retryDelay time.Duration
}

type HandlerOption func(*AnalysisRequestHandler)

func WithDeduper(d Deduper) HandlerOption {
	return func(h *AnalysisRequestHandler) { h.dedupe = d }
}

func WithPublisher(p Publisher) HandlerOption {
	return func(h *AnalysisRequestHandler) { h.publish = p }
}

func WithTimeout(d time.Duration) HandlerOption {
	return func(h *AnalysisRequestHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func NewAnalysisRequestHandler(engine *analyzer.Analyzer, opts ...HandlerOption) *AnalysisRequestHandler {
	h := &AnalysisRequestHandler{
		engine:     engine,
		publish:    kafka_client.PublishToKafka,
		timeout:    DEFAULT_ANALYZE_TIMEOUT,
		retryDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start consumes analysis requests one at a time. Each offset is committed
// only after the outcome was published. Deduplication is skipped while any
// health flag is down.
func (h *AnalysisRequestHandler) Start(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
	committer := kafka_client.NewCommitHandler(ctx, consumer)

	slog.Info("[AnalysisRequestConsumer] Listening for messages...")

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[AnalysisRequestConsumer] Stopping consumer...")
			return
		default:
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

		if err := h.Handle(ctx, msg, allHealthy(health)); err != nil {
			slog.Error("[AnalysisRequestConsumer] Request left uncommitted",
				slog.String("error", err.Error()))
			continue
		}

		if err := committer.Commit(msg); err != nil {
			slog.Warn("[AnalysisRequestConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}
}

// Handle analyzes one message and publishes either an AnalysisRecord to the
// results topic or an AnalysisFailure to the failed topic. An error means
// nothing was published.
func (h *AnalysisRequestHandler) Handle(ctx context.Context, msg *kafka.Message, dedupe bool) error {
	dedupe = dedupe && h.dedupe != nil

	req, decodeErr := decodeRequest(msg)
	if dedupe && decodeErr == nil && h.dedupe.IsProcessed(ctx, req.RequestID) {
		slog.Info("[AnalysisRequestConsumer] Skipping already processed request",
			slog.String("request_id", req.RequestID))
		return nil
	}

	topic, payload := h.outcome(ctx, req, decodeErr)
	if err := h.publishWithRetry(topic, req.RequestID, payload); err != nil {
		return err
	}

	if dedupe && decodeErr == nil {
		if err := h.dedupe.MarkProcessed(ctx, req.RequestID); err != nil {
			slog.Warn("[AnalysisRequestConsumer] Failed to mark request processed",
				slog.String("request_id", req.RequestID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (h *AnalysisRequestHandler) outcome(ctx context.Context, req models.AnalysisRequest, decodeErr error) (string, any) {
	if decodeErr != nil {
		return failed(req.RequestID, decodeErr)
	}

	text, err := textprep.Prepare(req.Text, req.Format)
	if err != nil {
		return failed(req.RequestID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	result, err := h.engine.AnalyzeContext(ctx, text)
	if err != nil {
		return failed(req.RequestID, err)
	}

	slog.Info("[AnalysisRequestConsumer] Analyzed request",
		slog.String("request_id", req.RequestID),
		slog.Int("tokens", len(result.Tokens)),
		slog.String("label", result.Sentiment.Label),
		slog.Duration("took", time.Since(start)))

	return kafka_client.KAFKA_TOPIC_ANALYSIS_RESULTS, models.NewAnalysisRecord(req.RequestID, result)
}

func (h *AnalysisRequestHandler) publishWithRetry(topic, key string, payload any) error {
	var err error
	for i := 0; i < PUBLISH_RETRIES; i++ {
		if err = h.publish(topic, key, payload); err == nil {
			return nil
		}
		slog.Warn("[AnalysisRequestConsumer] Publishing failed",
			slog.String("topic", topic),
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		time.Sleep(h.retryDelay)
	}
	return fmt.Errorf("[AnalysisRequestConsumer] failed to publish to %s: %w", topic, err)
}

// decodeRequest always returns a request id: the payload's, else the message
// key, else the message position.
func decodeRequest(msg *kafka.Message) (models.AnalysisRequest, error) {
	var req models.AnalysisRequest
	err := utils.DeserializeFromJSON(msg.Value, &req)
	if err != nil {
		err = fmt.Errorf("[AnalysisRequestConsumer] malformed request: %w", err)
	}

	if req.RequestID == "" {
		req.RequestID = string(msg.Key)
	}
	if req.RequestID == "" {
		topic := ""
		if msg.TopicPartition.Topic != nil {
			topic = *msg.TopicPartition.Topic
		}
		req.RequestID = fmt.Sprintf("%s-%d-%d", topic, msg.TopicPartition.Partition, msg.TopicPartition.Offset)
	}
	return req, err
}

func failed(requestID string, err error) (string, any) {
	slog.Warn("[AnalysisRequestConsumer] Request failed",
		slog.String("request_id", requestID),
		slog.String("error", err.Error()))

	return kafka_client.KAFKA_TOPIC_ANALYSIS_FAILED, models.AnalysisFailure{
		RequestID: requestID,
		Error:     err.Error(),
		FailedAt:  time.Now().UTC(),
	}
}
