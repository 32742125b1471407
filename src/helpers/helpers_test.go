package helpers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApiErrorMessage(t *testing.T) {
	err := NewApiError("BE005", "userPasswordCheck: Invalid login or password")
	assert.Equal(t, "There was an error connecting to the API. BE005: userPasswordCheck: Invalid login or password", err.Error())
	assert.Equal(t, "BE005", err.Code)
}

func TestDecodeErrorPath(t *testing.T) {
	err := NewDecodeError("MChartResponse", "rateInfos[2].close", "missing required field")
	assert.Equal(t, "cannot decode MChartResponse.rateInfos[2].close: missing required field", err.Error())

	err = NewDecodeError("MTrade", "[0].order", "not an integer")
	assert.Equal(t, "cannot decode MTrade[0].order: not an integer", err.Error())
}

func TestErrorKind(t *testing.T) {
	cause := errors.New("broken pipe")
	sockErr := NewSocketError("write failed", cause)
	assert.ErrorIs(t, sockErr, cause)

	assert.Equal(t, "none", ErrorKind(nil))
	assert.Equal(t, "socket", ErrorKind(fmt.Errorf("ping: %w", sockErr)))
	assert.Equal(t, "api", ErrorKind(NewApiError("EX001", "x")))
	assert.Equal(t, "decode", ErrorKind(NewDecodeError("MSymbol", "ask", "x")))
	assert.Equal(t, "other", ErrorKind(NewConfigurationError("bad", nil)))
}

// -----------------------------------------------------------------------------

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), nil, "login", 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return NewSocketError(MsgNotConnected, nil)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnApiError(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), nil, "login", 5, time.Millisecond, func(context.Context) error {
		calls++
		return NewApiError("BE005", "invalid password")
	})
	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, calls)
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), nil, "connect", 0, time.Millisecond, func(context.Context) error {
		calls++
		return fmt.Errorf("attempt %d", calls)
	})
	assert.EqualError(t, err, "attempt 1")
	assert.Equal(t, 1, calls)
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := RetryWithBackoff(ctx, nil, "connect", 3, time.Hour, func(context.Context) error {
		cancel()
		return errors.New("refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
