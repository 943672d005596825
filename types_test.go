package authflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, RegisterMessage) (*RegisterSuccess, error) {
	return &RegisterSuccess{}, nil
}

func (stubAuthService) Login(context.Context, LoginMessage) (*LoginSuccess, error) {
	return &LoginSuccess{}, nil
}

func TestWithLoggerRoutesSinkErrors(t *testing.T) {
	spy := &captureLogger{}
	sink := EventSinkFunc(func(context.Context, FlowEvent) error {
		return errors.New("sink down")
	})

	c := NewCoordinator(stubAuthService{},
		WithLogger(spy),
		WithEventSink(sink),
	)
	require.True(t, c.OpenRegistration())

	require.Len(t, spy.calls, 1)
	require.Equal(t, "error", spy.calls[0].level)
	require.Equal(t, "flow event sink error: %v", spy.calls[0].message)
	require.Len(t, spy.calls[0].args, 1)
}

func TestPublishDropsNoticeWhenChannelFull(t *testing.T) {
	spy := &captureLogger{}
	c := NewCoordinator(stubAuthService{},
		WithLogger(spy),
		WithNoticeBuffer(1),
	)

	c.publish(Notice{Kind: NoticeRegistered})
	require.Empty(t, spy.calls)

	c.publish(Notice{Kind: NoticeLoggedIn})
	require.Len(t, spy.calls, 1)
	require.Equal(t, "info", spy.calls[0].level)
	require.Equal(t, "dropping %s notice: channel full", spy.calls[0].message)
	require.Equal(t, []any{NoticeLoggedIn}, spy.calls[0].args)

	// The first notice is still waiting for a consumer.
	notice := <-c.Notices()
	require.Equal(t, NoticeRegistered, notice.Kind)
}

func TestNilOptionValuesKeepDefaults(t *testing.T) {
	c := NewCoordinator(stubAuthService{},
		WithLogger(nil),
		WithEventSink(nil),
		nil,
	)

	require.IsType(t, defLogger{}, c.logger)
	require.NoError(t, c.sink.Record(context.Background(), FlowEvent{}))
}

func TestDefaultLoggerWritesWithoutPanic(t *testing.T) {
	logger := defLogger{}

	logger.Debug("debug %s", "value")
	logger.Info("info %s", "value")
	logger.Error("error %s", "value")
}

func TestNewlineAppendsExactlyOnce(t *testing.T) {
	require.Equal(t, "done\n", newline("done"))
	require.Equal(t, "done\n", newline("done\n"))
	require.Equal(t, "", newline(""))
}
