package authflow

import (
	"unicode"
	"unicode/utf8"
)

const (
	StrengthNone       = 0
	StrengthWeak       = 1
	StrengthMedium     = 2
	StrengthStrong     = 3
	StrengthVeryStrong = 4
)

// StrengthScore rates a candidate password from 0 to 4, one point per
// criterion: minimum length, mixed case, a digit, a non-alphanumeric rune.
// The score is advisory and never blocks submission.
func StrengthScore(password string) int {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	score := StrengthNone
	if utf8.RuneCountInString(password) >= minPasswordRunes {
		score++
	}
	if hasLower && hasUpper {
		score++
	}
	if hasDigit {
		score++
	}
	if hasSymbol {
		score++
	}

	return score
}

// StrengthLabel maps a score to its display label. A zero score renders no
// label at all so empty inputs stay quiet.
func StrengthLabel(score int) string {
	switch {
	case score >= StrengthVeryStrong:
		return "Very strong"
	case score == StrengthStrong:
		return "Strong"
	case score == StrengthMedium:
		return "Medium"
	case score == StrengthWeak:
		return "Weak"
	default:
		return ""
	}
}
