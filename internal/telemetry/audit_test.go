package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"team-chat-service/internal/mocks"
)

func TestEmitPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.team-chat", "team-chat-service", "test")

	publisher.On("Publish", mock.Anything, "audit.team-chat", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(AuditEnvelope)
		return ok &&
			envelope.SchemaVersion == 1 &&
			envelope.EventType == "audit_log" &&
			envelope.Service == "team-chat-service" &&
			envelope.Environment == "test" &&
			envelope.RequestID == "req-1" &&
			envelope.UserID != nil && *envelope.UserID == 7 &&
			envelope.OccurredAt != "" &&
			envelope.Payload.Level == "INFO" &&
			envelope.Payload.Text == "Channel created"
	})).Return(nil).Once()

	userID := int64(7)
	emitter.Emit(context.Background(), "INFO", "Channel created", "req-1", &userID)

	publisher.AssertExpectations(t)
}

func TestEmitAnonymousEvent(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.team-chat", "team-chat-service", "test")

	publisher.On("Publish", mock.Anything, "audit.team-chat", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(AuditEnvelope)
		return ok && envelope.UserID == nil && envelope.Payload.Level == "ERROR"
	})).Return(nil).Once()

	emitter.Emit(context.Background(), "ERROR", "Login failed", "req-2", nil)

	publisher.AssertExpectations(t)
}

// A broken broker must never fail the request path.
func TestEmitSwallowsPublishFailure(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.team-chat", "team-chat-service", "test")

	publisher.On("Publish", mock.Anything, "audit.team-chat", mock.Anything).
		Return(errors.New("amqp connection closed")).Once()

	emitter.Emit(context.Background(), "INFO", "Message deleted", "req-3", nil)

	publisher.AssertExpectations(t)
}

func TestEmitNilReceiverAndPublisher(t *testing.T) {
	var nilEmitter *AuditEmitter
	nilEmitter.Emit(context.Background(), "INFO", "noop", "req-4", nil)

	emitter := NewAuditEmitter(nil, "audit.team-chat", "team-chat-service", "test")
	emitter.Emit(context.Background(), "INFO", "noop", "req-5", nil)
}
