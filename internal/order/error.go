package order

import (
	"errors"
	"strings"
)

var (
	// -- Validation & Input --
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// -- Resource State --
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrStaleStatus       = errors.New("order status changed concurrently")

	// -- Database & Operation Failures --
	ErrFailedCreateOrder  = errors.New("failed to create order")
	ErrFailedListOrders   = errors.New("failed to list orders")
	ErrFailedUpdateStatus = errors.New("failed to update order status")
	ErrFailedGetStats     = errors.New("failed to compute stats")
)

// ValidationError lists the checkout fields that are missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
