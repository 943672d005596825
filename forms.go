package authflow

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Field identifies a single form input across both flows.
type Field string

const (
	FieldName            Field = "name"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirm_password"
	FieldCustomSource    Field = "custom_source"

	// FieldForm is the catch-all key for errors that are not tied to a
	// single input.
	FieldForm Field = "form"
)

// FieldErrors maps a field to its current validation message.
type FieldErrors map[Field]string

// Has reports whether the field currently carries an error.
func (e FieldErrors) Has(field Field) bool {
	return e[field] != ""
}

// Empty reports whether no field carries an error.
func (e FieldErrors) Empty() bool {
	for _, msg := range e {
		if msg != "" {
			return false
		}
	}
	return true
}

// MarketingSource is the answer to "where did you hear about us?".
type MarketingSource string

const (
	SourceUnset         MarketingSource = ""
	SourceInstagram     MarketingSource = "instagram"
	SourceFacebook      MarketingSource = "facebook"
	SourceFriendsFamily MarketingSource = "friends_family"
	SourceGoogleSearch  MarketingSource = "google_search"
	SourceOther         MarketingSource = "other"
)

// IsValid checks if the source is one of the predefined options
func (s MarketingSource) IsValid() bool {
	switch s {
	case SourceInstagram, SourceFacebook, SourceFriendsFamily, SourceGoogleSearch, SourceOther:
		return true
	default:
		return false
	}
}

// ParseMarketingSource safely parses a string into a MarketingSource type
func ParseMarketingSource(src string) (MarketingSource, bool) {
	source := MarketingSource(src)
	return source, source.IsValid()
}

// MarketingAnswer pairs a selected source with the free-form detail required
// when the selection is SourceOther.
type MarketingAnswer struct {
	Source       MarketingSource `json:"source"`
	CustomSource string          `json:"custom_source,omitempty"`
}

// Complete reports whether the answer satisfies the first registration step:
// a valid source, plus a non-blank detail when the source is "other".
func (a MarketingAnswer) Complete() bool {
	if !a.Source.IsValid() {
		return false
	}
	if a.Source == SourceOther {
		return strings.TrimSpace(a.CustomSource) != ""
	}
	return true
}

// Validate will run validation rules
func (a MarketingAnswer) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Source, validation.By(validSource)),
		validation.Field(&a.CustomSource, customSourceRules(a.Source)...),
	)
}

// RegistrationForm holds the values of the two-step registration wizard.
type RegistrationForm struct {
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Password        string          `json:"password"`
	ConfirmPassword string          `json:"confirm_password"`
	Answer          MarketingAnswer `json:"answer"`
}

// Validate will run validation rules
func (f RegistrationForm) Validate() error {
	if err := validation.ValidateStruct(&f,
		validation.Field(&f.Name, nameRules()...),
		validation.Field(&f.Email, emailRules()...),
		validation.Field(&f.Password, passwordRules()...),
		validation.Field(&f.ConfirmPassword, confirmPasswordRules(f.Password)...),
	); err != nil {
		return err
	}

	return f.Answer.Validate()
}

// Message builds the outbound registration payload, trimming the fields the
// service expects trimmed. Passwords travel untouched. The custom detail is
// only sent when the selected source actually asks for one.
func (f RegistrationForm) Message() RegisterMessage {
	custom := ""
	if f.Answer.Source == SourceOther {
		custom = strings.TrimSpace(f.Answer.CustomSource)
	}

	return RegisterMessage{
		Name:         strings.TrimSpace(f.Name),
		Email:        strings.TrimSpace(f.Email),
		Password:     f.Password,
		Source:       f.Answer.Source,
		CustomSource: custom,
	}
}

// LoginForm holds the values of the single-step login flow.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (f LoginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, emailRules()...),
		validation.Field(&f.Password, loginPasswordRules()...),
	)
}

// Message builds the outbound login payload.
func (f LoginForm) Message() LoginMessage {
	return LoginMessage{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
}
