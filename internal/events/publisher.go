package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/partsbase/catalog-scraper/internal/models"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeProductScraped is published after a product record has been
	// persisted.
	EventTypeProductScraped EventType = "PRODUCT_SCRAPED"
)

const defaultStream = "stream:catalog_products"

// ProductScrapedPayload is the wire form of a persisted product record.
type ProductScrapedPayload struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Timestamp  time.Time `json:"timestamp"`
	PartNumber string    `json:"part_number"`
	Name       string    `json:"name,omitempty"`
	Category   string    `json:"category,omitempty"`
	SearchTerm string    `json:"search_term,omitempty"`
	ProductURL string    `json:"product_url,omitempty"`
	Price      *float64  `json:"price,omitempty"`
	Has2DPDF   bool      `json:"has_2d_pdf"`
	Source     string    `json:"source"`
}

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// Publisher pushes product events onto a Redis stream so downstream
// consumers (matching, enrichment) see new parts as they land. A nil
// *Publisher is valid and publishes nothing.
type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = defaultStream
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishProductScraped emits a PRODUCT_SCRAPED event for a persisted record.
func (p *Publisher) PublishProductScraped(ctx context.Context, product *models.Product) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload := ProductScrapedPayload{
		EventID:    uuid.New().String(),
		EventType:  string(EventTypeProductScraped),
		Timestamp:  time.Now().UTC(),
		PartNumber: product.PartNumber,
		Name:       product.Name,
		Category:   product.Category,
		SearchTerm: product.SearchTerm,
		ProductURL: product.ProductURL,
		Price:      product.Price,
		Has2DPDF:   product.Has2DPDF,
		Source:     "scraper",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_type": payload.EventType,
			"event_id":   payload.EventID,
			"payload":    string(data),
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Debug("published event",
		"event_type", payload.EventType,
		"part_number", payload.PartNumber,
		"stream", p.stream)
	return nil
}

// Close releases the underlying Redis connection.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
