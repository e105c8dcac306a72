package clients

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisCacheKey(t *testing.T) {
	key := AnalysisCacheKey("Hello world")

	assert.True(t, strings.HasPrefix(key, VALKEY_ANALYSIS_PREFIX))
	assert.Len(t, strings.TrimPrefix(key, VALKEY_ANALYSIS_PREFIX), 64)
	assert.Equal(t, key, AnalysisCacheKey("Hello world"))
	assert.NotEqual(t, key, AnalysisCacheKey("Hello world "))
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("read: i/o timeout"), true},
		{errors.New("WRONGTYPE Operation against a key"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isConnectionError(tt.err), "%v", tt.err)
	}
}

func TestValkeyOptions(t *testing.T) {
	t.Setenv("VALKEY_INIT_ADDRESS", "cache:6380")
	t.Setenv("VALKEY_TLS", "true")

	opts := valkeyOptions()
	assert.Equal(t, []string{"cache:6380"}, opts.InitAddress)
	assert.NotNil(t, opts.TLSConfig)
}
