package clients

import (
	"os"
	"time"
)

// Backoff bounds for retried AWS writes.
const (
	INITIAL_BACKOFF = 500 * time.Millisecond
	MAX_BACKOFF     = 32 * time.Second
)

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
