package activitymap_test

import (
	"testing"
	"time"

	authflow "github.com/goliatone/go-authflow"
	"github.com/goliatone/go-authflow/activitymap"
	"github.com/google/uuid"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	attemptID := uuid.New()
	event := authflow.FlowEvent{
		EventType: authflow.FlowEventSubmitFailed,
		Flow:      authflow.FlowRegistration,
		Step:      authflow.StepCredentials,
		AttemptID: attemptID,
		Metadata: map[string]any{
			"text_code": authflow.TextCodeEmailTaken,
		},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	if out.ActorID != "visitor" {
		t.Fatalf("expected actor_id visitor, got %q", out.ActorID)
	}
	if out.Verb != string(authflow.FlowEventSubmitFailed) {
		t.Fatalf("expected verb %q, got %q", authflow.FlowEventSubmitFailed, out.Verb)
	}
	if out.ObjectType != "auth_flow" {
		t.Fatalf("expected object_type auth_flow, got %q", out.ObjectType)
	}
	if out.ObjectID != string(authflow.FlowRegistration) {
		t.Fatalf("expected object_id registration, got %q", out.ObjectID)
	}
	if out.Channel != "authflow" {
		t.Fatalf("expected channel authflow, got %q", out.Channel)
	}
	if !out.OccurredAt.Equal(ts) {
		t.Fatalf("expected occurred_at %v, got %v", ts, out.OccurredAt)
	}

	if out.Metadata["text_code"] != authflow.TextCodeEmailTaken {
		t.Fatalf("expected metadata text_code preserved, got %#v", out.Metadata["text_code"])
	}
	if out.Metadata[activitymap.MetadataKeyStep] != string(authflow.StepCredentials) {
		t.Fatalf("expected metadata step credentials, got %#v", out.Metadata[activitymap.MetadataKeyStep])
	}
	if out.Metadata[activitymap.MetadataKeyAttemptID] != attemptID.String() {
		t.Fatalf("expected metadata attempt_id %s, got %#v", attemptID, out.Metadata[activitymap.MetadataKeyAttemptID])
	}

	if len(event.Metadata) != 1 {
		t.Fatalf("expected source metadata to remain unchanged, got %+v", event.Metadata)
	}
}

func TestNormalizeActorFromMetadataUserID(t *testing.T) {
	t.Parallel()

	event := authflow.FlowEvent{
		EventType: authflow.FlowEventSubmitSucceeded,
		Flow:      authflow.FlowLogin,
		Metadata: map[string]any{
			activitymap.MetadataKeyUserID: "user-100",
		},
	}

	out := activitymap.Normalize(event)
	if out.ActorID != "user-100" {
		t.Fatalf("expected actor_id user-100, got %q", out.ActorID)
	}
}

func TestNormalizeOptionOverrides(t *testing.T) {
	t.Parallel()

	attemptID := uuid.New()
	event := authflow.FlowEvent{
		EventType: authflow.FlowEventSubmitSucceeded,
		Flow:      authflow.FlowRegistration,
		AttemptID: attemptID,
		Metadata: map[string]any{
			activitymap.MetadataKeyStep: "existing",
		},
	}

	out := activitymap.Normalize(
		event,
		activitymap.WithDefaultChannel("onboarding"),
		activitymap.WithDefaultObjectType("signup"),
		activitymap.WithObjectIDResolver(func(e authflow.FlowEvent) string {
			return e.AttemptID.String()
		}),
		activitymap.WithActorResolver(func(e authflow.FlowEvent) string {
			return "kiosk-7"
		}),
	)

	if out.Channel != "onboarding" {
		t.Fatalf("expected channel onboarding, got %q", out.Channel)
	}
	if out.ObjectType != "signup" {
		t.Fatalf("expected object_type signup, got %q", out.ObjectType)
	}
	if out.ObjectID != attemptID.String() {
		t.Fatalf("expected object_id %s, got %q", attemptID, out.ObjectID)
	}
	if out.ActorID != "kiosk-7" {
		t.Fatalf("expected actor_id kiosk-7, got %q", out.ActorID)
	}
	if out.Metadata[activitymap.MetadataKeyStep] != "existing" {
		t.Fatalf("expected existing step metadata preserved, got %#v", out.Metadata[activitymap.MetadataKeyStep])
	}
	if out.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be set when input is zero")
	}
}

func TestNormalizeActorFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		event  authflow.FlowEvent
		opts   []activitymap.Option
		expect string
	}{
		{
			name: "resolver wins over metadata",
			event: authflow.FlowEvent{
				Metadata: map[string]any{activitymap.MetadataKeyUserID: "user-1"},
			},
			opts: []activitymap.Option{
				activitymap.WithActorResolver(func(authflow.FlowEvent) string { return "resolved" }),
			},
			expect: "resolved",
		},
		{
			name: "metadata user id wins over fallback",
			event: authflow.FlowEvent{
				Metadata: map[string]any{activitymap.MetadataKeyUserID: "user-1"},
			},
			expect: "user-1",
		},
		{
			name:  "custom fallback when nothing resolves",
			event: authflow.FlowEvent{EventType: authflow.FlowEventOpened},
			opts: []activitymap.Option{
				activitymap.WithActorFallback("anonymous"),
			},
			expect: "anonymous",
		},
		{
			name:   "default fallback",
			event:  authflow.FlowEvent{EventType: authflow.FlowEventOpened},
			expect: "visitor",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := activitymap.Normalize(tt.event, tt.opts...)
			if out.ActorID != tt.expect {
				t.Fatalf("expected actor_id %q, got %q", tt.expect, out.ActorID)
			}
		})
	}
}
