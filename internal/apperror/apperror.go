// Package apperror classifies domain failures so the HTTP layer can map them
// to status codes without leaking internal details.
package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Kind uint8

const (
	Internal Kind = iota
	Validation
	Auth
	Forbidden
	NotFound
	Conflict
	Payload
)

// InternalMessage is the only text an unclassified failure ever shows a client.
const InternalMessage = "Something went wrong"

// Error is a failure with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf reports the kind of err, looking through wrapping. Anything that is
// not an *Error is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the public message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return InternalMessage
}

// Status maps a kind to its HTTP status. Conflict and Payload answer 400 to
// stay wire compatible with existing clients.
func Status(kind Kind) int {
	switch kind {
	case Validation, Conflict, Payload:
		return fiber.StatusBadRequest
	case Auth:
		return fiber.StatusUnauthorized
	case Forbidden:
		return fiber.StatusForbidden
	case NotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
