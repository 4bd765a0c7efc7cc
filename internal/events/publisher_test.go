package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/partsbase/catalog-scraper/internal/models"
)

// MockRedisClient is a mock for Redis client
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	mockArgs := m.Called(ctx, args)
	cmd := redis.NewStringCmd(ctx)
	if mockArgs.Get(0) != nil {
		cmd.SetErr(mockArgs.Error(0))
	} else {
		cmd.SetVal("1234567890-0")
	}
	return cmd
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestPublishProductScraped(t *testing.T) {
	client := new(MockRedisClient)

	var captured *redis.XAddArgs
	client.On("XAdd", mock.Anything, mock.MatchedBy(func(args *redis.XAddArgs) bool {
		captured = args
		return true
	})).Return(nil)

	p := NewPublisher(client, "", nil)
	price := 12.42
	product := &models.Product{
		PartNumber: "91251A144",
		Name:       "Socket Head Screw",
		Category:   "Socket Head Screws",
		Price:      &price,
		Has2DPDF:   true,
	}

	err := p.PublishProductScraped(context.Background(), product)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "stream:catalog_products", captured.Stream)
	assert.Equal(t, string(EventTypeProductScraped), captured.Values.(map[string]interface{})["event_type"])

	var payload ProductScrapedPayload
	raw := captured.Values.(map[string]interface{})["payload"].(string)
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "91251A144", payload.PartNumber)
	assert.True(t, payload.Has2DPDF)
	assert.Equal(t, "scraper", payload.Source)
	assert.NotEmpty(t, payload.EventID)

	client.AssertExpectations(t)
}

func TestPublishProductScrapedRedisError(t *testing.T) {
	client := new(MockRedisClient)
	client.On("XAdd", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	p := NewPublisher(client, "stream:test", nil)
	err := p.PublishProductScraped(context.Background(), &models.Product{PartNumber: "60205K53"})

	assert.Error(t, err)
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher

	err := p.PublishProductScraped(context.Background(), &models.Product{PartNumber: "60205K53"})
	assert.NoError(t, err)
	assert.NoError(t, p.Close())
}
