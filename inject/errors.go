package inject

import "errors"

var (
	// ErrNotProvided is returned when acquiring a type nobody provided.
	ErrNotProvided = errors.New("inject: type was not provided")

	// ErrAlreadyProvided is returned when a type is provided twice.
	ErrAlreadyProvided = errors.New("inject: type is already provided")

	// ErrNilFactory is returned when Provide gets a nil factory.
	ErrNilFactory = errors.New("inject: nil factory")

	// ErrInvalidOwner is returned for nil or non-comparable owners.
	ErrInvalidOwner = errors.New("inject: owner must be a non-nil comparable value")

	// ErrTypeMismatch is returned when a factory's result cannot be used as the requested type.
	ErrTypeMismatch = errors.New("inject: instance has unexpected type")
)
