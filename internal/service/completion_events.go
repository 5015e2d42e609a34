package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalstar-go-api/internal/dto"
	"github.com/noah-isme/evalstar-go-api/internal/observability"
)

// CompletionPublisher broadcasts task completions to other services.
type CompletionPublisher interface {
	PublishCompleted(ctx context.Context, event dto.TaskCompletedEvent) error
}

type completionPublisher struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	nodeID      string
	logger      zerolog.Logger
}

// NewCompletionPublisher fans events out over Redis pub/sub and NATS. Either transport may be nil.
func NewCompletionPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) CompletionPublisher {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":tasks:completed"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".tasks.completed"
	}

	return &completionPublisher{
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		nodeID:      uuid.NewString(),
		logger:      logger.With().Str("component", "completion_publisher").Logger(),
	}
}

func (p *completionPublisher) PublishCompleted(ctx context.Context, event dto.TaskCompletedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.Source = p.nodeID
	event.CompletedAt = event.CompletedAt.UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil && p.redisStream != "" {
		if err := p.redis.Publish(ctx, p.redisStream, payload).Err(); err != nil {
			observability.EventsPublished().WithLabelValues("redis", "error").Inc()
			errs = append(errs, err)
		} else {
			observability.EventsPublished().WithLabelValues("redis", "ok").Inc()
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			observability.EventsPublished().WithLabelValues("nats", "error").Inc()
			errs = append(errs, err)
		} else {
			observability.EventsPublished().WithLabelValues("nats", "ok").Inc()
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	p.logger.Debug().
		Str("event_id", event.EventID).
		Uint("task_id", event.TaskID).
		Uint("student_id", event.StudentID).
		Msg("task completion published")
	return nil
}
