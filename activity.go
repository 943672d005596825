package authflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FlowEventType enumerates supported flow activity categories.
type FlowEventType string

const (
	FlowEventOpened          FlowEventType = "flow.opened"
	FlowEventClosed          FlowEventType = "flow.closed"
	FlowEventSwitched        FlowEventType = "flow.switched"
	FlowEventStepAdvanced    FlowEventType = "flow.step.advanced"
	FlowEventStepBack        FlowEventType = "flow.step.back"
	FlowEventSubmitStarted   FlowEventType = "flow.submit.started"
	FlowEventSubmitSucceeded FlowEventType = "flow.submit.succeeded"
	FlowEventSubmitFailed    FlowEventType = "flow.submit.failed"
	FlowEventSubmitDiscarded FlowEventType = "flow.submit.discarded"
	FlowEventFormReset       FlowEventType = "flow.form.reset"
)

// FlowEvent captures audit-friendly information about a flow action.
type FlowEvent struct {
	EventType  FlowEventType
	Flow       Flow
	Step       Step
	AttemptID  uuid.UUID
	Metadata   map[string]any
	OccurredAt time.Time
}

// EventSink consumes flow events for auditing/telemetry purposes. Sinks run
// best-effort: errors are logged, never propagated to the user action that
// produced the event.
type EventSink interface {
	Record(ctx context.Context, event FlowEvent) error
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, event FlowEvent) error

// Record implements EventSink.
func (f EventSinkFunc) Record(ctx context.Context, event FlowEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopEventSink struct{}

func (noopEventSink) Record(context.Context, FlowEvent) error {
	return nil
}

func normalizeEventSink(s EventSink) EventSink {
	if s == nil {
		return noopEventSink{}
	}
	return s
}

// NoticeKind enumerates the success notifications a flow can produce.
type NoticeKind string

const (
	NoticeRegistered NoticeKind = "registered"
	NoticeLoggedIn   NoticeKind = "logged_in"
)

// Notice is delivered on the Coordinator's notice channel after a submission
// succeeds. Registration notices carry the created display name; login
// notices carry a greeting, the issued token, and the decoded session when
// the token was parseable.
type Notice struct {
	Kind        NoticeKind
	Flow        Flow
	AttemptID   uuid.UUID
	DisplayName string
	Greeting    string
	Token       string
	Session     *SessionObject
}
