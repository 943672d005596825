package authflow

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	minNameRunes     = 3
	minPasswordRunes = 6
)

// User facing validation messages. One message per field: the same text shows
// whether the field is blank or merely fails its rule.
const (
	MsgNameTooShort        = "Name must be at least 3 characters"
	MsgEmailInvalid        = "Enter a valid email address"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
	MsgPasswordRequired    = "Password is required"
	MsgConfirmMismatch     = "Passwords do not match"
	MsgCustomSourceMissing = "Tell us where you heard about us"
	MsgSourceMissing       = "Select an option"
)

// Shape check only: something, an @, something, a dot, something. Anything
// stricter belongs to the service, which owns deliverability.
var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func nameRules() []validation.Rule {
	return []validation.Rule{
		validation.By(validDisplayName),
	}
}

func emailRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(MsgEmailInvalid),
		validation.Match(emailShape).Error(MsgEmailInvalid),
	}
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(MsgPasswordTooShort),
		validation.RuneLength(minPasswordRunes, 0).Error(MsgPasswordTooShort),
	}
}

func loginPasswordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(MsgPasswordRequired),
	}
}

func confirmPasswordRules(password string) []validation.Rule {
	return []validation.Rule{
		validation.By(matchesPassword(password)),
	}
}

func customSourceRules(source MarketingSource) []validation.Rule {
	if source != SourceOther {
		return nil
	}
	return []validation.Rule{
		validation.By(requiredCustomSource),
	}
}

func validDisplayName(value any) error {
	s, _ := value.(string)
	if utf8.RuneCountInString(strings.TrimSpace(s)) < minNameRunes {
		return errors.New(MsgNameTooShort)
	}
	return nil
}

// matchesPassword will check that the confirmation equals the live password
func matchesPassword(password string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != password {
			return errors.New(MsgConfirmMismatch)
		}
		return nil
	}
}

func requiredCustomSource(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New(MsgCustomSourceMissing)
	}
	return nil
}

func validSource(value any) error {
	source, _ := value.(MarketingSource)
	if !source.IsValid() {
		return errors.New(MsgSourceMissing)
	}
	return nil
}

// ValidateField runs the registration rules for a single field and returns the
// message to display, or "" when the value passes. Confirmation and custom
// source rules depend on sibling values, so the full form is passed in.
func ValidateField(field Field, value string, form RegistrationForm) string {
	switch field {
	case FieldName:
		return ruleMessage(validation.Validate(value, nameRules()...))
	case FieldEmail:
		return ruleMessage(validation.Validate(value, emailRules()...))
	case FieldPassword:
		return ruleMessage(validation.Validate(value, passwordRules()...))
	case FieldConfirmPassword:
		return ruleMessage(validation.Validate(value, confirmPasswordRules(form.Password)...))
	case FieldCustomSource:
		return ruleMessage(validation.Validate(value, customSourceRules(form.Answer.Source)...))
	default:
		return ""
	}
}

// ValidateLoginField runs the login rules for a single field. Login shares the
// email rule with registration but only requires the password to be present.
func ValidateLoginField(field Field, value string) string {
	switch field {
	case FieldEmail:
		return ruleMessage(validation.Validate(value, emailRules()...))
	case FieldPassword:
		return ruleMessage(validation.Validate(value, loginPasswordRules()...))
	default:
		return ""
	}
}

func ruleMessage(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}

// FormatValidationErrors flattens an ozzo validation error into per-field
// messages keyed the same way the form state keys them.
func FormatValidationErrors(err error) FieldErrors {
	out := FieldErrors{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for key, ferr := range verrs {
			if ferr != nil {
				out[Field(key)] = ferr.Error()
			}
		}
		return out
	}

	out[FieldForm] = err.Error()
	return out
}
