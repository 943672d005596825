package authflow

// RegistrationFormState tracks the wizard's values, which fields the user has
// interacted with, and the per-field messages derived from them. Errors are
// recomputed on every change but only reported once a field has held a
// non-empty value, so untouched inputs stay quiet.
//
// Form state is not safe for concurrent use on its own; the Coordinator
// serializes access to it.
type RegistrationFormState struct {
	form    RegistrationForm
	errors  FieldErrors
	touched map[Field]bool
	banner  string
}

func NewRegistrationFormState() *RegistrationFormState {
	return &RegistrationFormState{
		errors:  FieldErrors{},
		touched: map[Field]bool{},
	}
}

// SetField writes a value and revalidates the field, plus any sibling whose
// rule depends on it: editing the password re-checks the confirmation.
func (s *RegistrationFormState) SetField(field Field, value string) {
	switch field {
	case FieldName:
		s.form.Name = value
	case FieldEmail:
		s.form.Email = value
	case FieldPassword:
		s.form.Password = value
	case FieldConfirmPassword:
		s.form.ConfirmPassword = value
	case FieldCustomSource:
		s.form.Answer.CustomSource = value
	default:
		return
	}

	s.touch(field, value)
	s.setError(field, ValidateField(field, value, s.form))

	if field == FieldPassword {
		s.setError(FieldConfirmPassword, ValidateField(FieldConfirmPassword, s.form.ConfirmPassword, s.form))
	}

	s.banner = ""
}

// SetSource records the marketing selection and revalidates the custom detail,
// whose rule switches on and off with the selection.
func (s *RegistrationFormState) SetSource(source MarketingSource) {
	s.form.Answer.Source = source
	s.setError(FieldCustomSource, ValidateField(FieldCustomSource, s.form.Answer.CustomSource, s.form))
	s.banner = ""
}

// ErrorFor returns the message to display for a field, or "" while the field
// is still untouched.
func (s *RegistrationFormState) ErrorFor(field Field) string {
	if !s.touched[field] {
		return ""
	}
	return s.errors[field]
}

// VisibleErrors returns a copy of the messages for touched fields only.
func (s *RegistrationFormState) VisibleErrors() FieldErrors {
	out := FieldErrors{}
	for field, msg := range s.errors {
		if msg != "" && s.touched[field] {
			out[field] = msg
		}
	}
	return out
}

// Touched reports whether the field has held a non-empty value at least once.
func (s *RegistrationFormState) Touched(field Field) bool {
	return s.touched[field]
}

// Valid reports whether the whole form, marketing answer included, would pass
// submission checks.
func (s *RegistrationFormState) Valid() bool {
	return s.form.Validate() == nil
}

// Form returns a copy of the current values.
func (s *RegistrationFormState) Form() RegistrationForm {
	return s.form
}

// Strength scores the current password. Advisory only.
func (s *RegistrationFormState) Strength() int {
	return StrengthScore(s.form.Password)
}

func (s *RegistrationFormState) Banner() string {
	return s.banner
}

func (s *RegistrationFormState) SetBanner(msg string) {
	s.banner = msg
}

func (s *RegistrationFormState) DismissBanner() {
	s.banner = ""
}

// SetRemoteEmailError routes a duplicate-email rejection onto the email field
// and makes it visible regardless of touch history.
func (s *RegistrationFormState) SetRemoteEmailError(msg string) {
	s.touched[FieldEmail] = true
	s.setError(FieldEmail, msg)
}

// Reset returns the state to pristine: empty values, no errors, no touch
// history, no banner. Calling it twice is the same as calling it once.
func (s *RegistrationFormState) Reset() {
	s.form = RegistrationForm{}
	s.errors = FieldErrors{}
	s.touched = map[Field]bool{}
	s.banner = ""
}

func (s *RegistrationFormState) touch(field Field, value string) {
	if value != "" {
		s.touched[field] = true
	}
}

func (s *RegistrationFormState) setError(field Field, msg string) {
	if msg == "" {
		delete(s.errors, field)
		return
	}
	s.errors[field] = msg
}

// LoginFormState is the single-step counterpart: same touch gating and banner
// handling, login rules instead of wizard rules.
type LoginFormState struct {
	form    LoginForm
	errors  FieldErrors
	touched map[Field]bool
	banner  string
}

func NewLoginFormState() *LoginFormState {
	return &LoginFormState{
		errors:  FieldErrors{},
		touched: map[Field]bool{},
	}
}

func (s *LoginFormState) SetField(field Field, value string) {
	switch field {
	case FieldEmail:
		s.form.Email = value
	case FieldPassword:
		s.form.Password = value
	default:
		return
	}

	if value != "" {
		s.touched[field] = true
	}
	if msg := ValidateLoginField(field, value); msg == "" {
		delete(s.errors, field)
	} else {
		s.errors[field] = msg
	}

	s.banner = ""
}

func (s *LoginFormState) ErrorFor(field Field) string {
	if !s.touched[field] {
		return ""
	}
	return s.errors[field]
}

func (s *LoginFormState) VisibleErrors() FieldErrors {
	out := FieldErrors{}
	for field, msg := range s.errors {
		if msg != "" && s.touched[field] {
			out[field] = msg
		}
	}
	return out
}

func (s *LoginFormState) Touched(field Field) bool {
	return s.touched[field]
}

func (s *LoginFormState) Valid() bool {
	return s.form.Validate() == nil
}

func (s *LoginFormState) Form() LoginForm {
	return s.form
}

func (s *LoginFormState) Banner() string {
	return s.banner
}

func (s *LoginFormState) SetBanner(msg string) {
	s.banner = msg
}

func (s *LoginFormState) DismissBanner() {
	s.banner = ""
}

func (s *LoginFormState) SetRemoteEmailError(msg string) {
	s.touched[FieldEmail] = true
	if msg == "" {
		delete(s.errors, FieldEmail)
		return
	}
	s.errors[FieldEmail] = msg
}

func (s *LoginFormState) Reset() {
	s.form = LoginForm{}
	s.errors = FieldErrors{}
	s.touched = map[Field]bool{}
	s.banner = ""
}
