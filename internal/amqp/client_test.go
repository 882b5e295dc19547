package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

func TestBackoffDoublesUpToCap(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, maxBackoff, maxBackoff}
	for attempt, w := range want {
		if got := exponentialBackoff(attempt); got != w {
			t.Errorf("attempt %d: backoff %v, want %v", attempt, got, w)
		}
	}
	if got := exponentialBackoff(40); got != maxBackoff {
		t.Errorf("large attempt: backoff %v, want the cap", got)
	}
}

func TestIsConnectionError(t *testing.T) {
	retryable := []error{
		amqp091.ErrClosed,
		fmt.Errorf("publish: %w", amqp091.ErrClosed),
		errors.New("dial tcp 127.0.0.1:5672: connection refused"),
		errors.New("unexpected EOF"),
		errors.New("write: broken pipe"),
	}
	for _, err := range retryable {
		if !isConnectionError(err) {
			t.Errorf("isConnectionError(%q) = false", err)
		}
	}
	for _, err := range []error{nil, errors.New("PRECONDITION_FAILED - inequivalent arg 'durable'"), ErrCircuitOpen} {
		if isConnectionError(err) {
			t.Errorf("isConnectionError(%v) = true", err)
		}
	}
}

func TestCircuitBreakerStates(t *testing.T) {
	c := &Client{exchangeName: "kharcha", queueName: "ledger_changed"}
	state := func() int32 { return atomic.LoadInt32(&c.state) }

	if c.isCircuitOpen() {
		t.Fatal("new client starts open")
	}

	for i := 1; i < maxFailures; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatalf("open after %d failures, threshold is %d", maxFailures-1, maxFailures)
	}
	c.recordFailure()
	if !c.isCircuitOpen() || state() != StateOpen {
		t.Fatal("threshold reached but circuit closed")
	}

	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if c.isCircuitOpen() || state() != StateHalfOpen {
		t.Fatalf("state %d after the open timeout, want half-open", state())
	}

	// One failure while half-open trips it again.
	c.recordFailure()
	if state() != StateOpen {
		t.Fatalf("half-open failure left state %d", state())
	}

	c.recordSuccess()
	if state() != StateClosed || atomic.LoadInt64(&c.failureCount) != 0 {
		t.Errorf("success left state %d with %d failures", state(), atomic.LoadInt64(&c.failureCount))
	}
}

func TestClient_PublishLedgerChanged_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "kharcha", queueName: "ledger_changed"}
	msg := *NewLedgerChangedMessage("expense", "e1", OpSaved, time.Now())

	t.Run("publish fails when circuit is open", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.PublishLedgerChanged(context.Background(), msg)
		if !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("expected ErrCircuitOpen, got %v", err)
		}
		if !strings.Contains(err.Error(), "circuit") {
			t.Errorf("error %q does not mention the circuit", err)
		}
	})

	t.Run("publish respects context cancellation", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateClosed)
		atomic.StoreInt64(&client.failureCount, 0)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := client.PublishLedgerChanged(ctx, msg)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	t.Run("missing channel counts as failure", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateClosed)
		atomic.StoreInt64(&client.failureCount, 0)

		if err := client.PublishLedgerChanged(context.Background(), msg); err == nil {
			t.Fatal("expected error without a channel")
		}
		if atomic.LoadInt64(&client.failureCount) != 1 {
			t.Errorf("failureCount = %d, want 1", atomic.LoadInt64(&client.failureCount))
		}
	})
}

func TestLedgerChangedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := NewLedgerChangedMessage("loan", "l-42", OpDeleted, timestamp)

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerChangedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("LedgerChangedMessageFromJSON() error = %v", err)
	}
	if parsed.Entity != msg.Entity || parsed.ID != msg.ID || parsed.Op != msg.Op || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
}

func TestLedgerChangedMessage_InvalidJSON(t *testing.T) {
	if _, err := LedgerChangedMessageFromJSON([]byte(`{"entity": 5}`)); err == nil {
		t.Error("LedgerChangedMessageFromJSON() should fail with invalid JSON")
	}
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

func TestDispatch(t *testing.T) {
	good, _ := NewLedgerChangedMessage("income", "i1", OpSaved, time.Unix(0, 0).UTC()).ToJSON()

	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		want       fakeAck
		wantCalled bool
	}{
		{"handled", good, nil, fakeAck{acked: true}, true},
		{"handler error requeues", good, errors.New("sheets down"), fakeAck{nacked: true, requeued: true}, true},
		{"bad json dropped", []byte("not json"), nil, fakeAck{nacked: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			called := false
			cons := &consumer{wait: func(context.Context, time.Duration) {}}
			cons.dispatch(context.Background(), tt.body, ack, func(_ context.Context, m *LedgerChangedMessage) error {
				called = true
				if m.Entity != "income" || m.ID != "i1" {
					t.Errorf("unexpected message %+v", m)
				}
				return tt.handlerErr
			})
			if *ack != tt.want {
				t.Errorf("ack = %+v, want %+v", *ack, tt.want)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
		})
	}
}

func TestDispatchBacksOffBeforeRequeue(t *testing.T) {
	good, _ := NewLedgerChangedMessage("income", "i1", OpSaved, time.Unix(0, 0).UTC()).ToJSON()

	var waits []time.Duration
	cons := &consumer{wait: func(_ context.Context, d time.Duration) { waits = append(waits, d) }}

	results := []error{errors.New("sheets down"), errors.New("sheets down"), errors.New("sheets down"), nil, errors.New("sheets down")}
	for i, result := range results {
		ack := &fakeAck{}
		cons.dispatch(context.Background(), good, ack, func(context.Context, *LedgerChangedMessage) error { return result })
		if result != nil && !ack.requeued {
			t.Fatalf("delivery %d: failed message not requeued", i)
		}
		if result == nil && !ack.acked {
			t.Fatalf("delivery %d: handled message not acked", i)
		}
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait %d = %v, want %v", i, waits[i], want[i])
		}
	}
}

func TestSleepContextStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	sleepContext(ctx, time.Minute)
	if time.Since(start) > time.Second {
		t.Error("sleepContext ignored a cancelled context")
	}
}
