package safe

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestPanicError_Error(t *testing.T) {
	tests := []struct {
		name      string
		panicInfo any
		checkFn   func(string) bool
	}{
		{
			name:      "string panic",
			panicInfo: "test panic",
			checkFn: func(msg string) bool {
				return strings.Contains(msg, "test panic") &&
					strings.Contains(msg, "panic:") &&
					strings.Contains(msg, "timestamp:") &&
					strings.Contains(msg, "stack:")
			},
		},
		{
			name:      "error panic",
			panicInfo: errors.New("custom error"),
			checkFn: func(msg string) bool {
				return strings.Contains(msg, "custom error")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPanicError(tt.panicInfo, []byte("fake stack trace"))
			if !tt.checkFn(err.Error()) {
				t.Errorf("Error message validation failed: %q", err.Error())
			}
		})
	}
}

func TestNewPanicError(t *testing.T) {
	before := time.Now()
	err := NewPanicError("test panic", []byte("test stack trace"))
	after := time.Now()

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatal("returned error is not *PanicError")
	}
	if panicErr.info != "test panic" {
		t.Errorf("info = %v, want %q", panicErr.info, "test panic")
	}
	if panicErr.time.Before(before) || panicErr.time.After(after) {
		t.Errorf("timestamp %v not between %v and %v", panicErr.time, before, after)
	}
}

func TestWithRecover(t *testing.T) {
	t.Run("nil function returns nil", func(t *testing.T) {
		if WithRecover(nil) != nil {
			t.Error("WithRecover(nil) should return nil")
		}
	})

	t.Run("normal execution without panic", func(t *testing.T) {
		executed := false
		wrapped := WithRecover(func() { executed = true })
		wrapped()
		if !executed {
			t.Error("function was not executed")
		}
	})

	t.Run("recovers from panic and calls handlers", func(t *testing.T) {
		var mu sync.Mutex
		var captured error
		wrapped := WithRecover(func() { panic("test panic") }, func(err error) {
			mu.Lock()
			defer mu.Unlock()
			captured = err
		})
		wrapped()

		mu.Lock()
		defer mu.Unlock()
		if captured == nil || !strings.Contains(captured.Error(), "test panic") {
			t.Errorf("captured = %v, want panic message", captured)
		}
	})

	t.Run("no handlers still recovers", func(t *testing.T) {
		wrapped := WithRecover(func() { panic("unhandled") })
		wrapped() // must not panic the test
	})
}

func TestGo(t *testing.T) {
	t.Run("executes function in goroutine", func(t *testing.T) {
		done := make(chan bool, 1)
		Go(func() { done <- true })

		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
			t.Error("function was not executed in time")
		}
	})

	t.Run("handles panic in goroutine", func(t *testing.T) {
		errCh := make(chan error, 1)
		Go(func() { panic("goroutine panic") }, func(err error) { errCh <- err })

		select {
		case err := <-errCh:
			if !strings.Contains(err.Error(), "goroutine panic") {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("error handler was not called")
		}
	})

	t.Run("nil function does not panic", func(t *testing.T) {
		Go(nil)
		time.Sleep(10 * time.Millisecond)
	})
}
