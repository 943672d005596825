package authflow

// Step identifies a pane of the registration wizard.
type Step string

const (
	StepSource      Step = "source"
	StepCredentials Step = "credentials"
)

// StepGuard decides whether a forward transition may proceed. Backward moves
// are never guarded.
type StepGuard func(from, to Step) bool

// StepMachine walks the registration wizard. A refused move is a silent no-op:
// callers get false, never an error, because a refused move is the normal
// shape of a disabled Next button rather than a fault.
type StepMachine struct {
	current     Step
	transitions map[Step]map[Step]struct{}
	guard       StepGuard
}

func NewStepMachine(guard StepGuard) *StepMachine {
	return &StepMachine{
		current: StepSource,
		transitions: map[Step]map[Step]struct{}{
			StepSource: {
				StepCredentials: {},
			},
			StepCredentials: {
				StepSource: {},
			},
		},
		guard: guard,
	}
}

func (m *StepMachine) Current() Step {
	return m.current
}

// CanAdvance reports whether the forward move would be taken right now.
func (m *StepMachine) CanAdvance() bool {
	return m.canTransition(m.current, StepCredentials) && m.guardAllows(m.current, StepCredentials)
}

// Advance moves Source -> Credentials when the graph and the guard allow it.
func (m *StepMachine) Advance() bool {
	if !m.CanAdvance() {
		return false
	}
	m.current = StepCredentials
	return true
}

// Back moves Credentials -> Source.
func (m *StepMachine) Back() bool {
	if !m.canTransition(m.current, StepSource) {
		return false
	}
	m.current = StepSource
	return true
}

// Reset returns the machine to the first step.
func (m *StepMachine) Reset() {
	m.current = StepSource
}

func (m *StepMachine) canTransition(from, to Step) bool {
	if allowed, ok := m.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (m *StepMachine) guardAllows(from, to Step) bool {
	if m.guard == nil {
		return true
	}
	return m.guard(from, to)
}
