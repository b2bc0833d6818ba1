package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"blogapi/internal/events"
	"blogapi/internal/logger"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("you are not authorized to perform this action")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Messages for values already owned by another row.
const (
	emailTaken = "The email has already been taken."
	nameTaken  = "The name has already been taken."
)

// NotFoundError names the missing resource. errors.Is(err, ErrNotFound) holds for it.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(resource string) error { return &NotFoundError{Resource: resource} }

// notFoundOr translates sql.ErrNoRows into a NotFoundError and passes other errors through.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(resource)
	}
	return err
}

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e.Fields[keys[0]]
}

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when nothing was recorded so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalidField(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// publish sends an event; failures are logged and never fail the request.
func publish(ctx context.Context, pub events.Publisher, log *logrus.Entry, subject string, payload any) {
	if err := pub.Publish(ctx, subject, payload); err != nil {
		logger.FromContext(ctx, log).WithFields(logrus.Fields{
			"event":   "event_publish_failed",
			"subject": subject,
		}).WithError(err).Warn("failed to publish event")
	}
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
