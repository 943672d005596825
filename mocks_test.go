package authflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-authflow"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService implements authflow.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, msg authflow.RegisterMessage) (*authflow.RegisterSuccess, error) {
	args := m.Called(ctx, msg)
	var res *authflow.RegisterSuccess
	if v := args.Get(0); v != nil {
		res = v.(*authflow.RegisterSuccess)
	}
	return res, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, msg authflow.LoginMessage) (*authflow.LoginSuccess, error) {
	args := m.Called(ctx, msg)
	var res *authflow.LoginSuccess
	if v := args.Get(0); v != nil {
		res = v.(*authflow.LoginSuccess)
	}
	return res, args.Error(1)
}

// capturingSink records flow events for assertions. Submissions and delayed
// resets report from their own goroutines, so it locks.
type capturingSink struct {
	mu     sync.Mutex
	events []authflow.FlowEvent
}

func (c *capturingSink) Record(ctx context.Context, evt authflow.FlowEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *capturingSink) all() []authflow.FlowEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]authflow.FlowEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *capturingSink) has(eventType authflow.FlowEventType) bool {
	for _, evt := range c.all() {
		if evt.EventType == eventType {
			return true
		}
	}
	return false
}

func (c *capturingSink) find(eventType authflow.FlowEventType) (authflow.FlowEvent, bool) {
	for _, evt := range c.all() {
		if evt.EventType == eventType {
			return evt, true
		}
	}
	return authflow.FlowEvent{}, false
}

func waitNotice(t *testing.T, c *authflow.Coordinator) authflow.Notice {
	t.Helper()
	select {
	case n := <-c.Notices():
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notice")
		return authflow.Notice{}
	}
}

func expectNoNotice(t *testing.T, c *authflow.Coordinator) {
	t.Helper()
	select {
	case n := <-c.Notices():
		t.Fatalf("unexpected notice: %+v", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
