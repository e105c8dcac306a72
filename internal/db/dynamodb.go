package db

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/writeclean/internal/clients"
	"github.com/spacesedan/writeclean/internal/models"
)

const (
	ANALYSIS_TABLE_NAME = "AnalysisResults"
	RECORD_TTL          = 24 * time.Hour
	MAX_BATCH_WRITE     = 25
	UNPROCESSED_RETRIES = 3
)

// BatchWriter is the part of *dynamodb.Client the store uses.
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var (
	dbClient     BatchWriter
	retryBackoff = clients.INITIAL_BACKOFF
)

func InitDynamoDB() {
	dbClient = clients.GetDynamoDBClient()
}

// RecordToDynamoDBItem maps a record to an item keyed by request_id with
// created_at and ttl as epoch seconds.
func RecordToDynamoDBItem(record models.AnalysisRecord) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] failed to marshal record %s: %w", record.RequestID, err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	item["created_at"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(createdAt.Unix(), 10)}
	item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(createdAt.Add(RECORD_TTL).Unix(), 10)}
	return item, nil
}

func BatchInsertAnalysisRecords(ctx context.Context, records []models.AnalysisRecord) error {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	for i := 0; i < len(records); i += MAX_BATCH_WRITE {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := min(i+MAX_BATCH_WRITE, len(records))
		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, record := range records[i:end] {
			item, err := RecordToDynamoDBItem(record)
			if err != nil {
				return err
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := writeBatch(ctx, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored analysis records",
		slog.Int("count", len(records)))
	return nil
}

func writeBatch(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			ANALYSIS_TABLE_NAME: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write analysis records: %w", err)
	}

	retryCount := 0
	backoff := retryBackoff
	for len(out.UnprocessedItems) > 0 && retryCount < UNPROCESSED_RETRIES {
		time.Sleep(backoff)
		backoff = min(backoff*2, clients.MAX_BACKOFF)

		slog.Warn("[DynamoDB] Retrying unprocessed analysis records...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[ANALYSIS_TABLE_NAME])))

		out, err = dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[ANALYSIS_TABLE_NAME]); remaining > 0 {
		slog.Error("[DynamoDB] Some analysis records failed after retries",
			slog.Int("remaining", remaining))
		return fmt.Errorf("[DynamoDB] %d analysis records left unprocessed", remaining)
	}
	return nil
}
