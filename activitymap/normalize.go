package activitymap

import (
	"strings"
	"time"

	authflow "github.com/goliatone/go-authflow"
	"github.com/google/uuid"
)

const (
	// MetadataKeyStep stores the wizard step the event occurred on.
	MetadataKeyStep = "step"
	// MetadataKeyAttemptID stores the submission attempt identifier.
	MetadataKeyAttemptID = "attempt_id"
	// MetadataKeyUserID is read from event metadata to resolve the actor.
	MetadataKeyUserID = "user_id"
)

const (
	defaultChannel    = "authflow"
	defaultObjectType = "auth_flow"
	defaultActorID    = "visitor"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel          string
	objectType       string
	actorFallback    string
	objectIDResolver func(authflow.FlowEvent) string
	actorResolver    func(authflow.FlowEvent) string
}

// Normalize converts an authflow.FlowEvent into a generic normalized shape.
// Flow events happen before anyone is signed in, so the actor resolves to the
// metadata user id when a submission produced one, and to the configured
// fallback otherwise.
func Normalize(event authflow.FlowEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		resolveActor(event, options.actorResolver),
		metadataString(event.Metadata, MetadataKeyUserID),
		strings.TrimSpace(options.actorFallback),
	)

	objectID := resolveObjectID(event, options.objectIDResolver)
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: strings.TrimSpace(options.objectType),
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(options.channel),
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel sets the default channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType sets the default object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithObjectIDResolver overrides object-id extraction from FlowEvent.
func WithObjectIDResolver(resolver func(authflow.FlowEvent) string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectIDResolver = resolver
	}
}

// WithActorResolver overrides actor-id extraction from FlowEvent.
func WithActorResolver(resolver func(authflow.FlowEvent) string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorResolver = resolver
	}
}

// WithActorFallback sets the final actor-id fallback when no id can be
// resolved from the event.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
}

func resolveActor(event authflow.FlowEvent, resolver func(authflow.FlowEvent) string) string {
	if resolver != nil {
		return strings.TrimSpace(resolver(event))
	}
	return ""
}

func resolveObjectID(event authflow.FlowEvent, resolver func(authflow.FlowEvent) string) string {
	if resolver != nil {
		return strings.TrimSpace(resolver(event))
	}
	return strings.TrimSpace(string(event.Flow))
}

func normalizeMetadata(event authflow.FlowEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	if step := strings.TrimSpace(string(event.Step)); step != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyStep]; !exists {
			metadata[MetadataKeyStep] = step
		}
	}

	if event.AttemptID != uuid.Nil {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyAttemptID]; !exists {
			metadata[MetadataKeyAttemptID] = event.AttemptID.String()
		}
	}

	return metadata
}

func metadataString(metadata map[string]any, key string) string {
	if len(metadata) == 0 {
		return ""
	}
	if value, ok := metadata[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
