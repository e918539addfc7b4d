package order

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "confirmed", "processing", "shipped", "delivered", "cancelled", "on_hold", "failed", "refunded", "partially_refunded", "completed"} {
		if _, err := ParseStatus(raw); err != nil {
			t.Fatalf("ParseStatus(%q): %v", raw, err)
		}
	}
	if _, err := ParseStatus("canceled"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus for misspelling, got %v", err)
	}
	if _, err := ParseStatus(""); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus for empty input, got %v", err)
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []Status{StatusDelivered, StatusCancelled, StatusRefunded, StatusCompleted, StatusFailed}
	for _, st := range terminal {
		if !st.IsTerminal() {
			t.Fatalf("%s should be terminal", st)
		}
	}
	open := []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusOnHold, StatusPartiallyRefunded}
	for _, st := range open {
		if st.IsTerminal() {
			t.Fatalf("%s should not be terminal", st)
		}
	}
}

func TestCanTransition(t *testing.T) {
	// any open status may move to any other known status
	if err := CanTransition(StatusPending, StatusDelivered); err != nil {
		t.Fatalf("pending -> delivered: %v", err)
	}
	if err := CanTransition(StatusShipped, StatusOnHold); err != nil {
		t.Fatalf("shipped -> on_hold: %v", err)
	}
	if err := CanTransition(StatusOnHold, StatusProcessing); err != nil {
		t.Fatalf("on_hold -> processing: %v", err)
	}

	if err := CanTransition(StatusPending, StatusPending); !errors.Is(err, ErrSameStatus) {
		t.Fatalf("expected ErrSameStatus, got %v", err)
	}
	if err := CanTransition(StatusCancelled, StatusPending); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus, got %v", err)
	}
	if err := CanTransition(StatusDelivered, StatusCompleted); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus, got %v", err)
	}
	if err := CanTransition(StatusPending, Status("lost")); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestParseFulfillment(t *testing.T) {
	for _, raw := range []string{"unfulfilled", "partially_fulfilled", "fulfilled"} {
		if _, err := ParseFulfillment(raw); err != nil {
			t.Fatalf("ParseFulfillment(%q): %v", raw, err)
		}
	}
	if _, err := ParseFulfillment("shipped"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}
