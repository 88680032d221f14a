package command

import "errors"

var (
	// ErrCommandNotFound is returned when a confirmation references no
	// queued command for the device.
	ErrCommandNotFound = errors.New("command not found")

	// ErrInvalidCommand is returned when a command is missing required fields.
	ErrInvalidCommand = errors.New("invalid command")
)
