package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(2), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessOnSecondAttempt(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(2), func() error {
		attempts++
		if attempts == 1 {
			return &HTTPError{StatusCode: 503, Message: "overloaded"}
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	testErr := &HTTPError{StatusCode: 500, Message: "Server Error"}
	err := WithBackoff(context.Background(), fastConfig(2), func() error {
		attempts++
		return testErr
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if !errors.Is(err, testErr) {
		t.Errorf("expected wrapped error to contain original error")
	}
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	testErr := &HTTPError{StatusCode: 401, Message: "invalid api key"}
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return testErr
	})

	if err != testErr {
		t.Errorf("expected the original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt (non-retryable), got %d", attempts)
	}
}

func TestWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	_ = WithBackoff(context.Background(), Config{}, func() error {
		attempts++
		return nil
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	cfg := fastConfig(5)
	cfg.InitialDelay = time.Second
	err := WithBackoff(ctx, cfg, func() error {
		attempts++
		cancel()
		return &HTTPError{StatusCode: 500, Message: "Server Error"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancel, got %d", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"HTTP 500", &HTTPError{StatusCode: 500}, true},
		{"HTTP 529 overloaded", &HTTPError{StatusCode: 529}, true},
		{"HTTP 429", &HTTPError{StatusCode: 429}, true},
		{"HTTP 408", &HTTPError{StatusCode: 408}, true},
		{"HTTP 400", &HTTPError{StatusCode: 400}, false},
		{"HTTP 401", &HTTPError{StatusCode: 401}, false},
		{"ECONNREFUSED", syscall.ECONNREFUSED, true},
		{"ECONNRESET", syscall.ECONNRESET, true},
		{"wrapped ETIMEDOUT", errors.Join(errors.New("dial"), syscall.ETIMEDOUT), true},
		{"generic error", errors.New("some error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestProviderConfig(t *testing.T) {
	cfg := ProviderConfig()

	if cfg.MaxAttempts != 2 {
		t.Errorf("expected MaxAttempts=2, got %d", cfg.MaxAttempts)
	}
	if cfg.MaxDelay > 2*time.Second {
		t.Errorf("provider retry delay too long for soft timeout: %v", cfg.MaxDelay)
	}
}

func TestHTTPError_Error(t *testing.T) {
	err := &HTTPError{StatusCode: 500, Message: "Internal Server Error"}
	expected := "HTTP 500: Internal Server Error"

	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestAddJitter(t *testing.T) {
	duration := 100 * time.Millisecond
	maxDuration := time.Duration(float64(duration) * 1.2)

	for i := 0; i < 10; i++ {
		result := addJitter(duration, 0.2)
		if result < duration || result > maxDuration {
			t.Errorf("expected result between %v and %v, got %v", duration, maxDuration, result)
		}
	}

	if got := addJitter(duration, 0); got != duration {
		t.Errorf("expected no jitter with fraction=0, got %v", got)
	}
}
