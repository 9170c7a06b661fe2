package service

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the command surface.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNotFound
	KindThresholdNotMet
	KindInsufficientInfluence
	KindCooldownActive
	KindGamePaused
	KindEnhancerFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindThresholdNotMet:
		return "threshold_not_met"
	case KindInsufficientInfluence:
		return "insufficient_influence"
	case KindCooldownActive:
		return "cooldown_active"
	case KindGamePaused:
		return "game_paused"
	case KindEnhancerFailure:
		return "enhancer_failure"
	}
	return "unknown"
}

// Error is a typed command-surface error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf builds a typed error.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
