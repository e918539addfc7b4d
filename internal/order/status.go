package order

import "errors"

// Status is the order lifecycle state.
type Status string

const (
	StatusPending           Status = "pending"
	StatusConfirmed         Status = "confirmed"
	StatusProcessing        Status = "processing"
	StatusShipped           Status = "shipped"
	StatusDelivered         Status = "delivered"
	StatusCancelled         Status = "cancelled"
	StatusOnHold            Status = "on_hold"
	StatusFailed            Status = "failed"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
	StatusCompleted         Status = "completed"
)

// FulfillmentStatus tracks physical shipment progress, independent of
// the order lifecycle and of payment settlement.
type FulfillmentStatus string

const (
	FulfillmentUnfulfilled        FulfillmentStatus = "unfulfilled"
	FulfillmentPartiallyFulfilled FulfillmentStatus = "partially_fulfilled"
	FulfillmentFulfilled          FulfillmentStatus = "fulfilled"
)

// PaymentStatus is derived from recorded payments against the order total.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefunded      PaymentStatus = "refunded"
)

var (
	// ErrUnknownStatus is returned for a status value outside the known set.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrTerminalStatus rejects transitions out of a terminal state.
	ErrTerminalStatus = errors.New("order is in a terminal status")
	// ErrSameStatus rejects a transition to the current status.
	ErrSameStatus = errors.New("order already has this status")
)

var knownStatuses = map[Status]struct{}{
	StatusPending: {}, StatusConfirmed: {}, StatusProcessing: {},
	StatusShipped: {}, StatusDelivered: {}, StatusCancelled: {},
	StatusOnHold: {}, StatusFailed: {}, StatusRefunded: {},
	StatusPartiallyRefunded: {}, StatusCompleted: {},
}

var terminalStatuses = map[Status]struct{}{
	StatusDelivered: {}, StatusCancelled: {}, StatusRefunded: {},
	StatusCompleted: {}, StatusFailed: {},
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	st := Status(raw)
	if _, ok := knownStatuses[st]; !ok {
		return "", ErrUnknownStatus
	}
	return st, nil
}

// IsTerminal reports whether the status ends the order lifecycle.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// CanTransition checks a requested status change. Transitions are not
// constrained to a strict graph; only terminal states are frozen and
// no-op transitions are rejected.
func CanTransition(from, to Status) error {
	if _, ok := knownStatuses[to]; !ok {
		return ErrUnknownStatus
	}
	if from == to {
		return ErrSameStatus
	}
	if from.IsTerminal() {
		return ErrTerminalStatus
	}
	return nil
}

// ParseFulfillment validates a raw fulfillment status string.
func ParseFulfillment(raw string) (FulfillmentStatus, error) {
	switch fs := FulfillmentStatus(raw); fs {
	case FulfillmentUnfulfilled, FulfillmentPartiallyFulfilled, FulfillmentFulfilled:
		return fs, nil
	}
	return "", ErrUnknownStatus
}
