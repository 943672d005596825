package authflow

import (
	"context"
	"sync"
	"time"
)

// Flow identifies which auth surface is active.
type Flow string

const (
	FlowClosed       Flow = "closed"
	FlowRegistration Flow = "registration"
	FlowLogin        Flow = "login"
)

// IsOpen reports whether a modal is on screen.
func (f Flow) IsOpen() bool {
	return f == FlowRegistration || f == FlowLogin
}

const (
	defaultCloseResetDelay = 300 * time.Millisecond
	defaultNoticeBuffer    = 8
)

// Coordinator owns the registration and login flows: which modal is open,
// the wizard step, both form states, and the single in-flight submission.
// All exported methods are safe for concurrent use.
type Coordinator struct {
	mu  sync.Mutex
	svc AuthService

	logger       Logger
	sink         EventSink
	now          func() time.Time
	debug        bool
	resetDelay   time.Duration
	noticeBuffer int
	notices      chan Notice

	flow  Flow
	steps *StepMachine
	reg   *RegistrationFormState
	login *LoginFormState

	busy bool

	// epochs discard submission results that land after their form was
	// closed or reset
	regEpoch   uint64
	loginEpoch uint64

	regResetTimer   *time.Timer
	loginResetTimer *time.Timer
}

// CoordinatorOption customizes coordinator construction.
type CoordinatorOption func(*Coordinator)

// WithLogger overrides the default stdout logger.
func WithLogger(logger Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEventSink sets the EventSink used to publish flow events.
func WithEventSink(sink EventSink) CoordinatorOption {
	return func(c *Coordinator) {
		c.sink = normalizeEventSink(sink)
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithCloseResetDelay overrides how long form values survive after the modal
// closes. Zero or negative runs the reset synchronously with the close.
func WithCloseResetDelay(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.resetDelay = d
	}
}

// WithNoticeBuffer sizes the success notice channel.
func WithNoticeBuffer(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.noticeBuffer = n
		}
	}
}

// WithDebug enables pretty-printed dumps of service responses.
func WithDebug(debug bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.debug = debug
	}
}

// NewCoordinator builds a coordinator with both flows closed.
func NewCoordinator(svc AuthService, opts ...CoordinatorOption) *Coordinator {
	if svc == nil {
		panic("go-authflow: NewCoordinator requires an AuthService")
	}

	c := &Coordinator{
		svc:          svc,
		logger:       defLogger{},
		sink:         noopEventSink{},
		now:          time.Now,
		resetDelay:   defaultCloseResetDelay,
		noticeBuffer: defaultNoticeBuffer,
		flow:         FlowClosed,
		reg:          NewRegistrationFormState(),
		login:        NewLoginFormState(),
	}
	c.steps = NewStepMachine(c.stepGuard)

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.notices = make(chan Notice, c.noticeBuffer)

	return c
}

// stepGuard gates the wizard's forward move on a complete marketing answer.
// Runs under the coordinator lock.
func (c *Coordinator) stepGuard(from, to Step) bool {
	if from == StepSource && to == StepCredentials {
		return c.reg.Form().Answer.Complete()
	}
	return true
}

// OpenRegistration opens the registration modal on its first step, closing
// login if it was up. The form always starts pristine: a reset still pending
// from an earlier close runs immediately instead of waiting out its delay.
func (c *Coordinator) OpenRegistration() bool {
	c.mu.Lock()
	if c.flow == FlowRegistration {
		c.mu.Unlock()
		return false
	}

	var events []FlowEvent
	if c.flow == FlowLogin {
		events = append(events, c.closeLoginLocked())
	}
	events = append(events, c.openRegistrationLocked())
	c.mu.Unlock()

	c.record(context.Background(), events...)
	return true
}

// OpenLogin opens the login modal, closing registration if it was up.
func (c *Coordinator) OpenLogin() bool {
	c.mu.Lock()
	if c.flow == FlowLogin {
		c.mu.Unlock()
		return false
	}

	var events []FlowEvent
	if c.flow == FlowRegistration {
		events = append(events, c.closeRegistrationLocked())
	}
	events = append(events, c.openLoginLocked())
	c.mu.Unlock()

	c.record(context.Background(), events...)
	return true
}

// Close dismisses whichever modal is open. Values and errors survive the
// closing transition; the reset runs after the configured delay. Closing
// while a submission is pending is allowed, the eventual response is
// discarded.
func (c *Coordinator) Close() bool {
	c.mu.Lock()
	if c.flow == FlowClosed {
		c.mu.Unlock()
		return false
	}

	var event FlowEvent
	if c.flow == FlowRegistration {
		event = c.closeRegistrationLocked()
	} else {
		event = c.closeLoginLocked()
	}
	c.mu.Unlock()

	c.record(context.Background(), event)
	return true
}

// SwitchToLogin closes registration and opens login in one action: no
// observer sees a closed state in between. The registration values still
// get their delayed reset, the login form starts pristine.
func (c *Coordinator) SwitchToLogin() bool {
	c.mu.Lock()
	if c.flow != FlowRegistration {
		c.mu.Unlock()
		return false
	}

	c.closeRegistrationLocked()
	c.cancelLoginResetLocked()
	c.resetLoginLocked()
	c.flow = FlowLogin
	event := c.eventLocked(FlowEventSwitched, FlowLogin, "")
	event.Metadata = map[string]any{
		"from": string(FlowRegistration),
		"to":   string(FlowLogin),
	}
	c.mu.Unlock()

	c.record(context.Background(), event)
	return true
}

// SwitchToRegistration is the reverse hand-off.
func (c *Coordinator) SwitchToRegistration() bool {
	c.mu.Lock()
	if c.flow != FlowLogin {
		c.mu.Unlock()
		return false
	}

	c.closeLoginLocked()
	c.cancelRegResetLocked()
	c.resetRegistrationLocked()
	c.flow = FlowRegistration
	event := c.eventLocked(FlowEventSwitched, FlowRegistration, c.steps.Current())
	event.Metadata = map[string]any{
		"from": string(FlowLogin),
		"to":   string(FlowRegistration),
	}
	c.mu.Unlock()

	c.record(context.Background(), event)
	return true
}

// SetRegistrationField updates one wizard input. Ignored unless the
// registration modal is open.
func (c *Coordinator) SetRegistrationField(field Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flow != FlowRegistration {
		return
	}
	c.reg.SetField(field, value)
}

// SetMarketingSource records the wizard's first-step selection.
func (c *Coordinator) SetMarketingSource(source MarketingSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flow != FlowRegistration {
		return
	}
	c.reg.SetSource(source)
}

// SetCustomSource records the free-form detail behind the "other" selection.
func (c *Coordinator) SetCustomSource(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flow != FlowRegistration {
		return
	}
	c.reg.SetField(FieldCustomSource, value)
}

// SetLoginField updates one login input. Ignored unless login is open.
func (c *Coordinator) SetLoginField(field Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flow != FlowLogin {
		return
	}
	c.login.SetField(field, value)
}

// AdvanceStep moves the wizard forward. Refused silently when the marketing
// answer is incomplete, mirroring a disabled Next button.
func (c *Coordinator) AdvanceStep() bool {
	c.mu.Lock()
	if c.flow != FlowRegistration || !c.steps.Advance() {
		c.mu.Unlock()
		return false
	}

	c.reg.DismissBanner()
	event := c.eventLocked(FlowEventStepAdvanced, FlowRegistration, c.steps.Current())
	c.mu.Unlock()

	c.record(context.Background(), event)
	return true
}

// StepBack returns the wizard to the source step. Always allowed from the
// credentials step; clears any banner.
func (c *Coordinator) StepBack() bool {
	c.mu.Lock()
	if c.flow != FlowRegistration || !c.steps.Back() {
		c.mu.Unlock()
		return false
	}

	c.reg.DismissBanner()
	event := c.eventLocked(FlowEventStepBack, FlowRegistration, c.steps.Current())
	c.mu.Unlock()

	c.record(context.Background(), event)
	return true
}

// DismissBanner clears the remote-error banner on the open modal.
func (c *Coordinator) DismissBanner() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.flow {
	case FlowRegistration:
		c.reg.DismissBanner()
	case FlowLogin:
		c.login.DismissBanner()
	}
}

// FlowSnapshot is a point-in-time copy of the coordinator's visible state.
type FlowSnapshot struct {
	Flow Flow
	Step Step
	Busy bool
}

// Snapshot returns the current flow, wizard step, and submission flag.
func (c *Coordinator) Snapshot() FlowSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FlowSnapshot{
		Flow: c.flow,
		Step: c.steps.Current(),
		Busy: c.busy,
	}
}

// RegistrationView is what a registration renderer needs: values, visible
// errors, banner, step, strength, and the two button gates.
type RegistrationView struct {
	Form          RegistrationForm
	Errors        FieldErrors
	Banner        string
	Step          Step
	Strength      int
	StrengthLabel string
	CanAdvance    bool
	CanSubmit     bool
}

// RegistrationView returns a copy of the registration surface.
func (c *Coordinator) RegistrationView() RegistrationView {
	c.mu.Lock()
	defer c.mu.Unlock()

	strength := c.reg.Strength()
	return RegistrationView{
		Form:          c.reg.Form(),
		Errors:        c.reg.VisibleErrors(),
		Banner:        c.reg.Banner(),
		Step:          c.steps.Current(),
		Strength:      strength,
		StrengthLabel: StrengthLabel(strength),
		CanAdvance:    c.flow == FlowRegistration && c.steps.CanAdvance(),
		CanSubmit:     c.flow == FlowRegistration && c.steps.Current() == StepCredentials && !c.busy && c.reg.Valid(),
	}
}

// LoginView is the single-step counterpart.
type LoginView struct {
	Form      LoginForm
	Errors    FieldErrors
	Banner    string
	CanSubmit bool
}

// LoginView returns a copy of the login surface.
func (c *Coordinator) LoginView() LoginView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return LoginView{
		Form:      c.login.Form(),
		Errors:    c.login.VisibleErrors(),
		Banner:    c.login.Banner(),
		CanSubmit: c.flow == FlowLogin && !c.busy && c.login.Valid(),
	}
}

// Notices exposes the success notification stream. The channel is buffered;
// when nobody drains it, new notices are dropped rather than blocking flows.
func (c *Coordinator) Notices() <-chan Notice {
	return c.notices
}

func (c *Coordinator) publish(notice Notice) {
	select {
	case c.notices <- notice:
	default:
		c.logger.Info("dropping %s notice: channel full", notice.Kind)
	}
}

func (c *Coordinator) record(ctx context.Context, events ...FlowEvent) {
	sink := normalizeEventSink(c.sink)
	for _, event := range events {
		if err := sink.Record(ctx, event); err != nil {
			c.logger.Error("flow event sink error: %v", err)
		}
	}
}

func (c *Coordinator) eventLocked(eventType FlowEventType, flow Flow, step Step) FlowEvent {
	return FlowEvent{
		EventType:  eventType,
		Flow:       flow,
		Step:       step,
		OccurredAt: c.now(),
	}
}

func (c *Coordinator) openRegistrationLocked() FlowEvent {
	c.cancelRegResetLocked()
	c.resetRegistrationLocked()
	c.flow = FlowRegistration
	return c.eventLocked(FlowEventOpened, FlowRegistration, c.steps.Current())
}

func (c *Coordinator) openLoginLocked() FlowEvent {
	c.cancelLoginResetLocked()
	c.resetLoginLocked()
	c.flow = FlowLogin
	return c.eventLocked(FlowEventOpened, FlowLogin, "")
}

func (c *Coordinator) closeRegistrationLocked() FlowEvent {
	step := c.steps.Current()
	c.flow = FlowClosed
	c.busy = false
	c.regEpoch++
	c.scheduleRegResetLocked()
	return c.eventLocked(FlowEventClosed, FlowRegistration, step)
}

func (c *Coordinator) closeLoginLocked() FlowEvent {
	c.flow = FlowClosed
	c.busy = false
	c.loginEpoch++
	c.scheduleLoginResetLocked()
	return c.eventLocked(FlowEventClosed, FlowLogin, "")
}

func (c *Coordinator) resetRegistrationLocked() {
	c.reg.Reset()
	c.steps.Reset()
	c.regEpoch++
}

func (c *Coordinator) resetLoginLocked() {
	c.login.Reset()
	c.loginEpoch++
}

func (c *Coordinator) scheduleRegResetLocked() {
	c.cancelRegResetLocked()
	if c.resetDelay <= 0 {
		c.resetRegistrationLocked()
		return
	}
	c.regResetTimer = time.AfterFunc(c.resetDelay, c.delayedRegReset)
}

func (c *Coordinator) scheduleLoginResetLocked() {
	c.cancelLoginResetLocked()
	if c.resetDelay <= 0 {
		c.resetLoginLocked()
		return
	}
	c.loginResetTimer = time.AfterFunc(c.resetDelay, c.delayedLoginReset)
}

func (c *Coordinator) cancelRegResetLocked() {
	if c.regResetTimer != nil {
		c.regResetTimer.Stop()
		c.regResetTimer = nil
	}
}

func (c *Coordinator) cancelLoginResetLocked() {
	if c.loginResetTimer != nil {
		c.loginResetTimer.Stop()
		c.loginResetTimer = nil
	}
}

func (c *Coordinator) delayedRegReset() {
	c.mu.Lock()
	c.regResetTimer = nil
	if c.flow == FlowRegistration {
		// reopened before the delay elapsed; the open already reset
		c.mu.Unlock()
		return
	}
	c.resetRegistrationLocked()
	event := c.eventLocked(FlowEventFormReset, FlowRegistration, c.steps.Current())
	c.mu.Unlock()

	c.record(context.Background(), event)
}

func (c *Coordinator) delayedLoginReset() {
	c.mu.Lock()
	c.loginResetTimer = nil
	if c.flow == FlowLogin {
		c.mu.Unlock()
		return
	}
	c.resetLoginLocked()
	event := c.eventLocked(FlowEventFormReset, FlowLogin, "")
	c.mu.Unlock()

	c.record(context.Background(), event)
}
