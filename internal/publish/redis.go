// Package publish announces approved submissions on a Redis channel so
// the directory frontend can pick them up without polling the issue store.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Yhangokk/vidnav/internal/common/database"
	"github.com/Yhangokk/vidnav/internal/common/logger"
	"github.com/Yhangokk/vidnav/internal/submission"
)

// ApprovedEvent is the wire shape sent on the channel. Payload may be nil
// when the stored record body no longer decodes; consumers must handle
// that by fetching the record directly.
type ApprovedEvent struct {
	IssueNumber int                 `json:"issueNumber"`
	Payload     *submission.Payload `json:"payload,omitempty"`
	ApprovedAt  time.Time           `json:"approvedAt"`
}

// RedisPublisher emits ApprovedEvent messages on a fixed channel.
type RedisPublisher struct {
	redis   *database.RedisClient
	channel string
	logger  logger.Logger
}

func NewRedisPublisher(redis *database.RedisClient, channel string, log logger.Logger) *RedisPublisher {
	return &RedisPublisher{
		redis:   redis,
		channel: channel,
		logger:  log,
	}
}

// PublishApproved sends one approval event. Errors propagate to the
// caller; the engine owns deciding how an approved-but-unannounced record
// is surfaced.
func (p *RedisPublisher) PublishApproved(ctx context.Context, issueNumber int, payload *submission.Payload, approvedAt time.Time) error {
	evt := ApprovedEvent{
		IssueNumber: issueNumber,
		Payload:     payload,
		ApprovedAt:  approvedAt,
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal approved event: %w", err)
	}

	if err := p.redis.Publish(ctx, p.channel, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}

	p.logger.Debug("approval event published", map[string]interface{}{
		"issueNumber": issueNumber,
		"channel":     p.channel,
	})
	return nil
}
