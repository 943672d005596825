package authflow

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeEmailTaken         = "authflow_email_taken"
	TextCodeRemoteRejected     = "authflow_remote_rejected"
	TextCodeServiceUnavailable = "authflow_service_unavailable"
)

// ErrEmailTaken is returned when the service reports the email as registered.
var ErrEmailTaken = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrRemoteRejected is returned when the service answers with a non-success
// status for any reason other than a duplicate email.
var ErrRemoteRejected = goerrors.New("request rejected by auth service", goerrors.CategoryValidation).
	WithTextCode(TextCodeRemoteRejected).
	WithCode(goerrors.CodeBadRequest)

// ErrServiceUnavailable is returned when no usable response was obtained.
var ErrServiceUnavailable = goerrors.New("auth service unreachable", goerrors.CategoryOperation).
	WithTextCode(TextCodeServiceUnavailable).
	WithCode(goerrors.CodeInternal)

// ErrUnableToParseToken unable to decode the session JWT
var ErrUnableToParseToken = errors.New("unable to parse session token")

// ServiceError captures normalized auth service response details.
type ServiceError struct {
	Operation string
	Status    int
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	if e == nil {
		return "service error"
	}

	scope := "auth service"
	if e.Operation != "" {
		scope = fmt.Sprintf("auth service %s", e.Operation)
	}

	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", scope, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s failed: status %d", scope, e.Status)
	}

	return fmt.Sprintf("%s failed", scope)
}

func (e *ServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ServiceError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{}
	if e.Operation != "" {
		meta["operation"] = e.Operation
	}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if e.Message != "" {
		meta["message"] = e.Message
	}

	return meta
}

func wrapServiceError(base *goerrors.Error, operation string, err error) error {
	if base == nil {
		return err
	}

	meta := map[string]any{}
	if operation != "" {
		meta["operation"] = operation
	}

	var serr *ServiceError
	if errors.As(err, &serr) && serr != nil {
		for k, v := range serr.Metadata() {
			meta[k] = v
		}
	} else if err != nil {
		meta["error"] = err.Error()
	}

	clone := base.Clone()
	if clone == nil {
		clone = base
	}
	if err != nil {
		clone.Source = err
	}
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}

	return clone
}

var duplicateEmailMarkers = []string{
	"already registered",
	"already exists",
	"already taken",
	"already in use",
}

// IsDuplicateEmailMessage will check a service message for duplicate email wording
func IsDuplicateEmailMessage(msg string) bool {
	if msg == "" {
		return false
	}
	msg = strings.ToLower(msg)
	for _, marker := range duplicateEmailMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsEmailTakenError will check for duplicate email rejections
func IsEmailTakenError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmailTaken) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeEmailTaken
	}
	return false
}

// IsRemoteRejectedError will check for non-duplicate service rejections
func IsRemoteRejectedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRemoteRejected) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeRemoteRejected
	}
	return false
}

// IsServiceUnavailableError will check for transport level failures
func IsServiceUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeServiceUnavailable
	}
	return false
}

// RemoteMessage extracts the message the auth service attached to a rejection,
// or "" when the error carries none.
func RemoteMessage(err error) string {
	if err == nil {
		return ""
	}

	var serr *ServiceError
	if errors.As(err, &serr) && serr != nil && serr.Message != "" {
		return serr.Message
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Source != nil {
		if errors.As(richErr.Source, &serr) && serr != nil && serr.Message != "" {
			return serr.Message
		}
	}

	return ""
}
