package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultRegisterPath = "/api/register"
	defaultLoginPath    = "/api/login"
)

// Config holds auth service client configuration.
type Config struct {
	BaseURL      string
	RegisterPath string
	LoginPath    string

	HTTPClient *http.Client
}

// Client is the HTTP implementation of AuthService. Every error it returns is
// one of the package sentinels: ErrEmailTaken for duplicate emails,
// ErrRemoteRejected for other service rejections, ErrServiceUnavailable when
// no usable response came back.
type Client struct {
	config     Config
	httpClient *http.Client
}

var _ AuthService = (*Client)(nil)

// NewClient creates a new auth service client.
func NewClient(cfg Config) *Client {
	if cfg.RegisterPath == "" {
		cfg.RegisterPath = defaultRegisterPath
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = defaultLoginPath
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		config:     cfg,
		httpClient: client,
	}
}

// RemoteUser is the service's representation of an account.
type RemoteUser struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// RegisterSuccess is the decoded body of a successful registration.
type RegisterSuccess struct {
	User RemoteUser `json:"user"`
	Name string     `json:"name,omitempty"`
}

// DisplayName prefers the nested user record, falling back to the top-level
// name for services that answer with the flat shape.
func (r *RegisterSuccess) DisplayName() string {
	if r == nil {
		return ""
	}
	if r.User.Name != "" {
		return r.User.Name
	}
	return r.Name
}

// LoginSuccess is the decoded body of a successful login.
type LoginSuccess struct {
	Token string     `json:"token,omitempty"`
	User  RemoteUser `json:"user"`
}

// Register implements AuthService.
func (c *Client) Register(ctx context.Context, msg RegisterMessage) (*RegisterSuccess, error) {
	out := &RegisterSuccess{}
	if err := c.post(ctx, "register", c.config.RegisterPath, msg, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login implements AuthService.
func (c *Client) Login(ctx context.Context, msg LoginMessage) (*LoginSuccess, error) {
	out := &LoginSuccess{}
	if err := c.post(ctx, "login", c.config.LoginPath, msg, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, operation, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return wrapServiceError(ErrServiceUnavailable, operation, err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return wrapServiceError(ErrServiceUnavailable, operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapServiceError(ErrServiceUnavailable, operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapServiceError(ErrServiceUnavailable, operation, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.rejection(operation, resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return wrapServiceError(ErrServiceUnavailable, operation, &ServiceError{
			Operation: operation,
			Status:    resp.StatusCode,
			Message:   "invalid response body",
			Err:       err,
		})
	}

	return nil
}

// rejection normalizes a non-success response. Duplicate emails are reported
// either as a conflict status or as wording inside the message, so both are
// checked before falling back to a generic rejection.
func (c *Client) rejection(operation string, status int, body []byte) error {
	serr := &ServiceError{
		Operation: operation,
		Status:    status,
		Message:   apiErrorMessage(body),
	}

	if status == http.StatusConflict || IsDuplicateEmailMessage(serr.Message) {
		return wrapServiceError(ErrEmailTaken, operation, serr)
	}

	return wrapServiceError(ErrRemoteRejected, operation, serr)
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func apiErrorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "auth service request failed"
	}

	return msg
}
