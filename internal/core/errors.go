package core

import "errors"

// Error classes. Callers match them with errors.Is; concrete causes are
// wrapped alongside.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrUpstream     = errors.New("upstream error")
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrInvalidTarget = errors.New("invalid target")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyOwner    = errors.New("empty owner id")
)
