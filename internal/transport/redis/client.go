package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

const publishTimeout = 2 * time.Second

// Envelope is what subscribers receive on a session channel.
type Envelope struct {
	SessionID string          `json:"session_id"`
	Event     tictactoe.Event `json:"event"`
}

// Publisher fans engine events out to Redis pub/sub, one channel per session.
type Publisher struct {
	client *redis.Client
	prefix string
}

// Connect opens a client and checks it with PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, ErrAddrNotFound
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func New(client *redis.Client, prefix string) *Publisher {
	return &Publisher{
		client: client,
		prefix: prefix,
	}
}

// Channel - returns the pub/sub channel of a session.
func (that *Publisher) Channel(sessionID string) string {
	return that.prefix + ":" + sessionID
}

// Publish - sends one event to the session channel.
func (that *Publisher) Publish(ctx context.Context, sessionID string, event tictactoe.Event) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	payload, err := json.Marshal(Envelope{SessionID: sessionID, Event: event})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err = that.client.Publish(ctx, that.Channel(sessionID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscribe - listens on the session channel. The caller closes the returned PubSub.
func (that *Publisher) Subscribe(ctx context.Context, sessionID string) *redis.PubSub {
	return that.client.Subscribe(ctx, that.Channel(sessionID))
}

// Decode - parses a message received from Subscribe.
func Decode(msg *redis.Message) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &envelope, nil
}
