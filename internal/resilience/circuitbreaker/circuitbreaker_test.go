package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          20 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())

	if cb.Name() != "test-circuit" {
		t.Errorf("expected name='test-circuit', got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
}

func TestCircuitBreaker_Execute_Success(t *testing.T) {
	cb := New(testConfig())

	result, err := cb.Execute(func() (interface{}, error) {
		return "draft", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "draft" {
		t.Errorf("expected result='draft', got %v", result)
	}
}

func TestCircuitBreaker_TripsAfterFailures(t *testing.T) {
	cb := New(testConfig())
	testErr := errors.New("backend down")

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, testErr })
		if err != testErr {
			t.Fatalf("call %d: expected %v, got %v", i, testErr, err)
		}
	}

	if !cb.IsOpen() {
		t.Fatalf("expected circuit to be open, got %v", cb.State())
	}

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	if called {
		t.Error("expected open circuit to skip the call")
	}
	if !IsRejection(err) {
		t.Errorf("expected breaker rejection, got %v", err)
	}
}

func TestCircuitBreaker_CanceledIsNotAFailure(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, fmt.Errorf("call: %w", context.Canceled)
		})
	}

	if cb.IsOpen() {
		t.Error("expected canceled calls to leave the circuit closed")
	}
}

func TestProviderConfig(t *testing.T) {
	cfg := ProviderConfig("gemini")

	if cfg.Name != "gemini-api" {
		t.Errorf("expected name gemini-api, got %q", cfg.Name)
	}
	if cfg.MinRequests != 3 {
		t.Errorf("expected MinRequests=3, got %d", cfg.MinRequests)
	}
}

func TestIsRejection(t *testing.T) {
	if !IsRejection(gobreaker.ErrOpenState) {
		t.Error("expected ErrOpenState to be a rejection")
	}
	if !IsRejection(fmt.Errorf("wrapped: %w", gobreaker.ErrTooManyRequests)) {
		t.Error("expected wrapped ErrTooManyRequests to be a rejection")
	}
	if IsRejection(errors.New("other")) {
		t.Error("expected other errors not to be rejections")
	}
}
