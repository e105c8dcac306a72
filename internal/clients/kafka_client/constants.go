package kafka_client

import "time"

const (
	KAFKA_TOPIC_ANALYSIS_REQUEST = "analysis-request" // AnalysisRequest payloads waiting for the engine
	KAFKA_TOPIC_ANALYSIS_RESULTS = "analysis-results" // AnalysisRecord payloads waiting for storage
	KAFKA_TOPIC_ANALYSIS_FAILED  = "analysis-failed"  // requests the engine rejected
)

const (
	MAX_RETRIES  = 5
	RETRY_DELAY  = 2 * time.Second
	POLL_TIMEOUT = time.Second
)
