// Package events publishes domain events for other services to consume.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published by the API.
const (
	SubjectUserRegistered = "user.registered"
	SubjectPostCreated    = "post.created"
	SubjectPostUpdated    = "post.updated"
	SubjectPostDeleted    = "post.deleted"
	SubjectCommentCreated = "comment.created"
)

// Publisher sends an event payload on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

type UserRegistered struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

type PostChanged struct {
	PostID    int64  `json:"post_id"`
	UserID    int64  `json:"user_id"`
	Title     string `json:"title,omitempty"`
	Timestamp string `json:"timestamp"`
}

type CommentCreated struct {
	CommentID int64  `json:"comment_id"`
	PostID    int64  `json:"post_id"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// Timestamp formats t the way every payload carries it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NATSPublisher publishes JSON payloads over a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATS connects to url with a client name so the server can identify us.
func NewNATS(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("blogapi"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	return p.conn.Publish(subject, b)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close()                                     {}
