package order

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
)

// StatusAll is the filter value that matches every status.
const StatusAll = "all"

// Sequence is the only path an order may take.
var Sequence = []Status{StatusPending, StatusPreparing, StatusReady, StatusDelivered}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	for _, v := range Sequence {
		if v == s {
			return true
		}
	}
	return false
}

// Next returns the single legal successor. Delivered has none.
func (s Status) Next() (Status, bool) {
	for i, v := range Sequence {
		if v == s && i+1 < len(Sequence) {
			return Sequence[i+1], true
		}
	}
	return "", false
}

func (s Status) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// CanTransition reports whether to is exactly one step after from.
func CanTransition(from, to Status) bool {
	next, ok := from.Next()
	return ok && next == to
}

// NextAction is the admin button offered for an order, e.g.
// "Mark as Preparing". ok is false for delivered orders.
func NextAction(o Order) (label string, next Status, ok bool) {
	next, ok = o.Status.Next()
	if !ok {
		return "", "", false
	}
	return "Mark as " + next.Title(), next, true
}
