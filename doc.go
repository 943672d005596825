// Package authflow drives an authentication front door (a two-step
// registration wizard plus a single-step login) as a headless state machine:
// field validation, password strength scoring, step navigation, and
// single-flight submission against a remote auth service.
//
// Flows:
//   - Coordinator owns which modal is open, the wizard step, both form
//     states, and the in-flight submission. Hosts drive it with UI intents
//     (open, edit, advance, submit) and render from snapshots; every
//     exported method is safe for concurrent use.
//   - Form state recomputes a field's message on every change but only
//     reports it once the field has held a non-empty value, so pristine
//     inputs stay quiet. Refused step moves and submissions return false
//     instead of errors; they are the normal shape of a disabled button.
//
// Submission:
//   - Client posts registration and login payloads to the auth service and
//     normalizes every failure into one of three sentinels: ErrEmailTaken,
//     ErrRemoteRejected, ErrServiceUnavailable. The Coordinator maps those
//     onto a field error or a dismissible banner; responses that land after
//     their modal closed or reset are discarded.
//
// Notices and events:
//   - EventSink is a light-weight audit emitter describing opens, closes,
//     step moves, and submission outcomes. Sinks run best-effort (errors are
//     logged) so you can forward to a database or queue without blocking the
//     UI.
//   - Successful submissions publish a Notice on a buffered channel: the
//     created display name for registration, a greeting plus the issued
//     token and its decoded session for login.
package authflow
