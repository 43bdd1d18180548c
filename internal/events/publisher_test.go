package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNATSPublisherRequiresEnabledConfig(t *testing.T) {
	_, err := NewNATSPublisher(Config{Enabled: false})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")

	_, err = NewNATSPublisher(Config{Enabled: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats_url")
}

func TestNoopPublisher(t *testing.T) {
	var p NoopPublisher
	require.NoError(t, p.PublishIngestCompleted(context.Background(), IngestCompletedEvent{}))
	require.NoError(t, p.Close())
}
