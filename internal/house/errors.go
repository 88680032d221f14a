package house

import "errors"

var (
	// ErrHouseNotFound is returned when a device ID has no registered house.
	ErrHouseNotFound = errors.New("house not found")

	// ErrHouseExists is returned when registering a device ID that is
	// already bound to a house.
	ErrHouseExists = errors.New("house already exists")
)
