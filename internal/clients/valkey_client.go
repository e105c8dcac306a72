package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/writeclean/internal/models"
	"github.com/valkey-io/valkey-go"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

type ValkeyClient struct {
	Client valkey.Client
	mu     sync.Mutex
}

const (
	VALKEY_ANALYSIS_PREFIX = "writeclean:analysis:"
	VALKEY_PROCESSED_KEY   = "writeclean:processed_requests"
	VALKEY_RETRIES         = 3
)

func valkeyOptions() valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress: []string{
			getEnv("VALKEY_INIT_ADDRESS", "localhost:6379"),
		},
		Password:         getEnv("VALKEY_PASSWORD", ""),
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if getEnv("VALKEY_TLS", "false") == "true" {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}
	return opts
}

func connectValkey() (valkey.Client, error) {
	client, err := valkey.NewClient(valkeyOptions())
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return client, nil
}

// InitValkey connects once per process and panics when Valkey is
// unreachable.
func InitValkey() *ValkeyClient {
	valkeyOnce.Do(func() {
		client, err := connectValkey()
		if err != nil {
			panic(err)
		}
		valkeyInstance = &ValkeyClient{Client: client}
	})
	return valkeyInstance
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey()
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

func GetValkeyClient() *ValkeyClient {
	if valkeyInstance == nil {
		panic("[ValkeyClient] Error: Valkey client is not initilialized")
	}
	return valkeyInstance
}

// AnalysisCacheKey addresses a cached result by the analyzed text.
func AnalysisCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return VALKEY_ANALYSIS_PREFIX + hex.EncodeToString(sum[:])
}

// GetAnalysis returns the cached result for text. A miss is (nil, false, nil).
func (vc *ValkeyClient) GetAnalysis(ctx context.Context, text string) (*models.AnalysisResult, bool, error) {
	res := vc.DoWithRetry(ctx, vc.Client.B().Get().Key(AnalysisCacheKey(text)).Build(), VALKEY_RETRIES)
	if err := res.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("[ValkeyClient] failed to get cached analysis: %w", err)
	}

	data, err := res.AsBytes()
	if err != nil {
		return nil, false, fmt.Errorf("[ValkeyClient] failed to read cached analysis: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("[ValkeyClient] failed to decode cached analysis: %w", err)
	}
	return &result, true, nil
}

func (vc *ValkeyClient) SetAnalysis(ctx context.Context, text string, result *models.AnalysisResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] failed to encode analysis: %w", err)
	}

	key := AnalysisCacheKey(text)
	completed := []valkey.Completed{
		vc.Client.B().Set().Key(key).Value(valkey.BinaryString(data)).Build(),
		vc.Client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build(),
	}

	for _, res := range vc.DoMultiWithRetry(ctx, completed, VALKEY_RETRIES) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[ValkeyClient] failed to cache analysis: %w", err)
		}
	}

	slog.Debug("[ValkeyClient] Cached analysis", slog.String("key", key))
	return nil
}

// MarkProcessed records a request id so redelivered Kafka messages are
// skipped for a day.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, requestID string) error {
	completed := []valkey.Completed{
		vc.Client.B().Sadd().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build(),
		vc.Client.B().Expire().Key(VALKEY_PROCESSED_KEY).Seconds(86400).Build(),
	}

	responses := vc.DoMultiWithRetry(ctx, completed, VALKEY_RETRIES)
	for _, res := range responses {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Debug("[ValkeyClient] Marked request processed",
		slog.String("request_id", requestID))
	return nil
}

func (vc *ValkeyClient) IsProcessed(ctx context.Context, requestID string) bool {
	res := vc.DoWithRetry(ctx, vc.Client.B().Sismember().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build(), VALKEY_RETRIES)

	ok, err := res.AsBool()
	if err != nil {
		return false
	}
	return ok
}

func (vc *ValkeyClient) Ping(ctx context.Context) error {
	return vc.Client.Do(ctx, vc.Client.B().Ping().Build()).Error()
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.Client.DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient()
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(time.Millisecond * 250)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if err := result.Error(); err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))
		if isConnectionError(result.Error()) {
			vc.recreateClient()
		}

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
