package local

import "errors"

var (
	ErrConflict = errors.New("concurrent update, please retry")
	ErrNoLogin  = errors.New("admin login is not configured")
)
