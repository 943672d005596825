package authflow

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// Messages shown for remote failures. The banner text deliberately says
// nothing about the cause; duplicate emails get a field-level message so the
// user can fix the one input that matters.
const (
	MsgEmailTakenField = "This email is already registered"
	MsgBannerFallback  = "Something went wrong. Please check your connection and try again."
)

// RegisterMessage is the outbound registration payload.
type RegisterMessage struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Password     string          `json:"password"`
	Source       MarketingSource `json:"marketing_source"`
	CustomSource string          `json:"marketing_source_custom,omitempty"`
}

func (m RegisterMessage) Type() string { return "auth.register" }

// Validate will run validation rules
func (m RegisterMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, nameRules()...),
		validation.Field(&m.Email, emailRules()...),
		validation.Field(&m.Password, passwordRules()...),
		validation.Field(&m.Source, validation.By(validSource)),
		validation.Field(&m.CustomSource, customSourceRules(m.Source)...),
	)
}

// LoginMessage is the outbound login payload.
type LoginMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (m LoginMessage) Type() string { return "auth.login" }

// Validate will run validation rules
func (m LoginMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, emailRules()...),
		validation.Field(&m.Password, loginPasswordRules()...),
	)
}

// SubmitRegistration launches the registration call when the wizard sits on
// its final step with a valid form and nothing already in flight. Accepted
// submissions run asynchronously; the result is applied back unless the
// modal was closed or reset in the meantime. Editing fields and closing the
// modal stay available while the call runs.
func (c *Coordinator) SubmitRegistration(ctx context.Context) bool {
	c.mu.Lock()
	if c.flow != FlowRegistration || c.busy || c.steps.Current() != StepCredentials || !c.reg.Valid() {
		c.mu.Unlock()
		return false
	}

	c.busy = true
	epoch := c.regEpoch
	msg := c.reg.Form().Message()
	attemptID := uuid.New()
	event := c.eventLocked(FlowEventSubmitStarted, FlowRegistration, StepCredentials)
	event.AttemptID = attemptID
	c.mu.Unlock()

	c.record(ctx, event)
	go c.runRegister(ctx, epoch, attemptID, msg)

	return true
}

// SubmitLogin is the single-step counterpart: allowed whenever login is open,
// the form is valid, and no submission is in flight.
func (c *Coordinator) SubmitLogin(ctx context.Context) bool {
	c.mu.Lock()
	if c.flow != FlowLogin || c.busy || !c.login.Valid() {
		c.mu.Unlock()
		return false
	}

	c.busy = true
	epoch := c.loginEpoch
	msg := c.login.Form().Message()
	attemptID := uuid.New()
	event := c.eventLocked(FlowEventSubmitStarted, FlowLogin, "")
	event.AttemptID = attemptID
	c.mu.Unlock()

	c.record(ctx, event)
	go c.runLogin(ctx, epoch, attemptID, msg)

	return true
}

func (c *Coordinator) runRegister(ctx context.Context, epoch uint64, attemptID uuid.UUID, msg RegisterMessage) {
	res, err := c.svc.Register(ctx, msg)

	if err == nil && c.debug {
		fmt.Println("======= AUTHFLOW REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("================================")
	}

	c.mu.Lock()
	if c.flow != FlowRegistration || epoch != c.regEpoch {
		// the form this response belonged to is gone; busy now belongs to
		// whatever replaced it, so leave it alone
		discarded := c.eventLocked(FlowEventSubmitDiscarded, FlowRegistration, c.steps.Current())
		discarded.AttemptID = attemptID
		c.mu.Unlock()

		c.record(ctx, discarded)
		return
	}

	c.busy = false

	if err != nil {
		c.applyRegisterFailureLocked(err)
		failed := c.eventLocked(FlowEventSubmitFailed, FlowRegistration, c.steps.Current())
		failed.AttemptID = attemptID
		failed.Metadata = failureMetadata(err)
		c.mu.Unlock()

		c.record(ctx, failed)
		return
	}

	displayName := res.DisplayName()
	if displayName == "" {
		displayName = msg.Name
	}

	c.resetRegistrationLocked()
	c.flow = FlowClosed
	succeeded := c.eventLocked(FlowEventSubmitSucceeded, FlowRegistration, StepCredentials)
	succeeded.AttemptID = attemptID
	closed := c.eventLocked(FlowEventClosed, FlowRegistration, StepCredentials)
	c.mu.Unlock()

	c.record(ctx, succeeded, closed)
	c.publish(Notice{
		Kind:        NoticeRegistered,
		Flow:        FlowRegistration,
		AttemptID:   attemptID,
		DisplayName: displayName,
	})
}

func (c *Coordinator) runLogin(ctx context.Context, epoch uint64, attemptID uuid.UUID, msg LoginMessage) {
	res, err := c.svc.Login(ctx, msg)

	var session *SessionObject
	if err == nil {
		session = c.decodeSession(res.Token)

		if c.debug {
			fmt.Println("======= AUTHFLOW LOGIN =======")
			fmt.Println(print.MaybePrettyJSON(res))
			fmt.Println("==============================")
		}
	}

	c.mu.Lock()
	if c.flow != FlowLogin || epoch != c.loginEpoch {
		discarded := c.eventLocked(FlowEventSubmitDiscarded, FlowLogin, "")
		discarded.AttemptID = attemptID
		c.mu.Unlock()

		c.record(ctx, discarded)
		return
	}

	c.busy = false

	if err != nil {
		c.applyLoginFailureLocked(err)
		failed := c.eventLocked(FlowEventSubmitFailed, FlowLogin, "")
		failed.AttemptID = attemptID
		failed.Metadata = failureMetadata(err)
		c.mu.Unlock()

		c.record(ctx, failed)
		return
	}

	displayName := res.User.Name
	if displayName == "" {
		displayName = session.DisplayName()
	}
	if displayName == "" {
		displayName = msg.Email
	}

	c.resetLoginLocked()
	c.flow = FlowClosed
	succeeded := c.eventLocked(FlowEventSubmitSucceeded, FlowLogin, "")
	succeeded.AttemptID = attemptID
	if session != nil && session.GetUserID() != "" {
		succeeded.Metadata = map[string]any{"user_id": session.GetUserID()}
	}
	closed := c.eventLocked(FlowEventClosed, FlowLogin, "")
	c.mu.Unlock()

	c.record(ctx, succeeded, closed)
	c.publish(Notice{
		Kind:        NoticeLoggedIn,
		Flow:        FlowLogin,
		AttemptID:   attemptID,
		DisplayName: displayName,
		Greeting:    fmt.Sprintf("Welcome back, %s!", displayName),
		Token:       res.Token,
		Session:     session,
	})
}

// applyRegisterFailureLocked routes a failed submission: duplicate emails
// land on the email field with the rest of the form kept intact, other
// rejections surface the service message as a dismissible banner, transport
// failures get the generic banner.
func (c *Coordinator) applyRegisterFailureLocked(err error) {
	switch {
	case IsEmailTakenError(err):
		c.reg.SetRemoteEmailError(MsgEmailTakenField)
	case IsServiceUnavailableError(err):
		c.reg.SetBanner(MsgBannerFallback)
	default:
		c.reg.SetBanner(bannerMessage(err))
	}
	c.logger.Error("registration submit failed: %v", err)
}

func (c *Coordinator) applyLoginFailureLocked(err error) {
	switch {
	case IsEmailTakenError(err):
		c.login.SetRemoteEmailError(MsgEmailTakenField)
	case IsServiceUnavailableError(err):
		c.login.SetBanner(MsgBannerFallback)
	default:
		c.login.SetBanner(bannerMessage(err))
	}
	c.logger.Error("login submit failed: %v", err)
}

// decodeSession best-effort decodes the issued token. Login succeeds either
// way; an unreadable token just means no session details in the notice.
func (c *Coordinator) decodeSession(token string) *SessionObject {
	if token == "" {
		return nil
	}

	session, err := DecodeSessionClaims(token)
	if err != nil {
		c.logger.Debug("login token not decodable: %v", err)
		return nil
	}

	return session
}

func bannerMessage(err error) string {
	if msg := RemoteMessage(err); msg != "" {
		return msg
	}
	return MsgBannerFallback
}

func failureMetadata(err error) map[string]any {
	meta := map[string]any{"error": err.Error()}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode != "" {
		meta["text_code"] = richErr.TextCode
	}

	return meta
}
