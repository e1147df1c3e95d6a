package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Reel lifecycle subjects
const (
	SubjectReelCreated = "reel.created"
	SubjectReelUpdated = "reel.updated"
	SubjectReelDeleted = "reel.deleted"
	SubjectReelLiked   = "reel.liked"
	SubjectReelViewed  = "reel.viewed"
)

// ReelEvent is the payload published on every reel subject
type ReelEvent struct {
	Subject   string `json:"-"`
	ReelID    uint   `json:"reel_id"`
	UserID    uint   `json:"user_id,omitempty"`
	IsPrivate bool   `json:"is_private"`
	Timestamp string `json:"timestamp"`
}

// NewReelEvent stamps an event with the current time.
func NewReelEvent(subject string, reelID, userID uint, isPrivate bool) ReelEvent {
	return ReelEvent{
		Subject:   subject,
		ReelID:    reelID,
		UserID:    userID,
		IsPrivate: isPrivate,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Publisher emits reel events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event ReelEvent) error
}

// Connect dials NATS, reconnecting forever once the first connection succeeded.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name("reels-api"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return conn, nil
}

// NatsPublisher publishes events as JSON on their subject
type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(conn *nats.Conn) *NatsPublisher {
	return &NatsPublisher{conn: conn}
}

func (p *NatsPublisher) Publish(_ context.Context, event ReelEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(event.Subject, data)
}

// NopPublisher drops every event; used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReelEvent) error { return nil }
