package authflow

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

type SessionObject struct {
	UserID         string         `json:"user_id,omitempty"`
	Audience       []string       `json:"audience,omitempty"`
	Issuer         string         `json:"issuer,omitempty"`
	IssuedAt       *time.Time     `json:"issued_at,omitempty"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetAudience() []string {
	return s.Audience
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetData() map[string]any {
	return s.Data
}

// DisplayName returns the name claim carried by the token, or "".
func (s *SessionObject) DisplayName() string {
	if s == nil || s.Data == nil {
		return ""
	}
	if name, ok := s.Data["name"].(string); ok {
		return name
	}
	return ""
}

// TODO: enable only in development!
func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s aud=%v iss=%s iat=%s data=%v",
		s.UserID,
		s.Audience,
		s.Issuer,
		issuedAt,
		s.Data,
	)
}

// sessionClaims is the subset of token claims the flows read.
type sessionClaims struct {
	jwt.RegisteredClaims
	UID  string `json:"uid,omitempty"`
	Name string `json:"name,omitempty"`
}

// DecodeSessionClaims decodes a login token without verifying its signature.
// The flows only surface display attributes from it; signature verification
// belongs to the service that issued the token.
func DecodeSessionClaims(token string) (*SessionObject, error) {
	if token == "" {
		return nil, ErrUnableToParseToken
	}

	claims := &sessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrUnableToParseToken
	}

	return sessionFromClaims(claims), nil
}

func sessionFromClaims(claims *sessionClaims) *SessionObject {
	var data map[string]any
	if claims.Name != "" {
		data = map[string]any{"name": claims.Name}
	}

	var audience []string
	for _, aud := range claims.RegisteredClaims.Audience {
		audience = append(audience, aud)
	}

	session := &SessionObject{
		UserID:   userIDFromClaims(claims),
		Audience: audience,
		Issuer:   claims.Issuer,
		Data:     data,
	}

	if claims.IssuedAt != nil {
		issuedAt := claims.IssuedAt.Time
		session.IssuedAt = &issuedAt
	}
	if claims.ExpiresAt != nil {
		expiresAt := claims.ExpiresAt.Time
		session.ExpirationDate = &expiresAt
	}

	return session
}

func userIDFromClaims(claims *sessionClaims) string {
	if claims.UID != "" {
		return claims.UID
	}
	return claims.Subject
}
