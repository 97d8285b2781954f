package store

import "errors"

var (
	// ErrNotFound is returned when no appliance matches the given identity key.
	ErrNotFound = errors.New("appliance not found")
	// ErrDuplicate is returned when an appliance with the same
	// (store name, item number) identity already exists, archived or not.
	ErrDuplicate = errors.New("appliance already exists")
	// ErrValidation is returned when a required field is blank.
	ErrValidation = errors.New("missing required field")
	// ErrAlreadyArchived is returned when archiving an archived appliance.
	ErrAlreadyArchived = errors.New("appliance already archived")
	// ErrNotArchived is returned when unarchiving an active appliance.
	ErrNotArchived = errors.New("appliance not archived")
	// ErrUserExists is returned when a username is already taken.
	ErrUserExists = errors.New("username already taken")
)
