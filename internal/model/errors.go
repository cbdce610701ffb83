package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBoard is wrapped by every board decoding failure.
	ErrInvalidBoard = errors.New("invalid board")
	ErrMissingKing  = errors.New("each side needs exactly one king")
	ErrInvalidState = errors.New("invalid game state")
)

// FormatError reports a malformed board string. Row and Col are zero-based;
// Col is -1 when the problem concerns the whole row.
type FormatError struct {
	Row    int
	Col    int
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Col < 0 {
		return fmt.Sprintf("board format: row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("board format: row %d, column %d: %s (%q)", e.Row, e.Col, e.Reason, e.Token)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidBoard
}
