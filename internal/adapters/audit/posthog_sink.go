// Package audit delivers state-transition events to an external analytics
// sink. Delivery is fire-and-forget: the approval and billing flows never
// block or fail because the sink is down.
package audit

import (
	"context"
	"log/slog"

	"github.com/posthog/posthog-go"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	portssvc "github.com/worklog-hq/timesheet_backend/internal/core/ports/services"
)

// PosthogSink records audit events through a posthog client. When no API key
// is configured the sink is a no-op, so callers never need to nil-check.
type PosthogSink struct {
	client posthog.Client
	logger *slog.Logger
}

// NewPosthogSink initializes the sink. An empty apiKey yields a disabled sink.
func NewPosthogSink(apiKey string, logger *slog.Logger) *PosthogSink {
	if apiKey == "" {
		logger.Warn("Audit sink API key is empty, audit events will be dropped")
		return &PosthogSink{logger: logger}
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: "https://eu.i.posthog.com"})
	if err != nil {
		logger.Error("Failed to initialize audit sink", slog.String("error", err.Error()))
		return &PosthogSink{logger: logger}
	}
	return &PosthogSink{client: client, logger: logger}
}

var _ portssvc.AuditSink = (*PosthogSink)(nil)

// Record enqueues one audit event. Failures are logged and dropped.
func (s *PosthogSink) Record(_ context.Context, event domain.AuditEvent) {
	if s.client == nil {
		return
	}

	props := map[string]any{
		"entity_id":   event.EntityID,
		"occurred_at": event.OccurredAt,
	}
	if event.Before != "" {
		props["before"] = event.Before
	}
	if event.After != "" {
		props["after"] = event.After
	}
	for k, v := range event.Properties {
		props[k] = v
	}

	err := s.client.Enqueue(posthog.Capture{
		DistinctId: event.ActorID,
		Event:      event.Event,
		Properties: props,
	})
	if err != nil {
		s.logger.Warn("Failed to enqueue audit event",
			slog.String("event", event.Event),
			slog.String("entity_id", event.EntityID),
			slog.String("error", err.Error()))
	}
}

// Close flushes and shuts down the underlying client.
func (s *PosthogSink) Close() {
	if s.client == nil {
		return
	}
	s.client.Close()
}
