package mykafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_WriterConfig(t *testing.T) {
	p := NewProducer([]string{"kafka-1:9092", "kafka-2:9092"})
	t.Cleanup(func() { _ = p.Close() })

	w := p.writer
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	assert.False(t, w.Async)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.True(t, w.AllowAutoTopicCreation)
	assert.NotNil(t, w.Addr)
}

func TestPublishEvent_MarshalError(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"})
	t.Cleanup(func() { _ = p.Close() })

	err := p.PublishEvent(context.Background(), TopicCartEvents, "1", map[string]any{"bad": make(chan int)})
	require.ErrorContains(t, err, "json.Marshal failed")
}
