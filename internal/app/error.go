package app

import "errors"

var (
	// -- Admin actions --
	ErrNotConfirmed = errors.New("action not confirmed")
	ErrNoNextStatus = errors.New("order is already delivered")

	// -- Dashboard --
	ErrRefreshInFlight = errors.New("refresh already in progress")
	ErrMenuNotLoaded   = errors.New("menu not loaded")
)
