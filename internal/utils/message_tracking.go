package utils

import (
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

var messageMap sync.Map

// TrackMessage remembers the message a request arrived on so its offset can
// be committed once the request is stored.
func TrackMessage(requestID string, msg *kafka.Message) {
	messageMap.Store(requestID, msg)
}

func GetMessageForRequest(requestID string) (*kafka.Message, bool) {
	msg, ok := messageMap.LoadAndDelete(requestID)
	if !ok {
		return nil, false
	}
	return msg.(*kafka.Message), true
}
