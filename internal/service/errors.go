package service

import (
	"errors"
	"fmt"
)

var (
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownSwitch    = errors.New("unknown feature switch")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
