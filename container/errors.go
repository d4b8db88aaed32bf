package container

import "errors"

// Configuration errors. They abort the affected test and are never retried.
var (
	// ErrContainerNotFound indicates a reference to a name absent from the registry.
	ErrContainerNotFound = errors.New("container not found")

	// ErrSourceMismatch indicates a factory declared with a source of another type than it accepts.
	ErrSourceMismatch = errors.New("factory source mismatch")

	// ErrMissingSource indicates a source-consuming factory declared without a source.
	ErrMissingSource = errors.New("factory source missing")

	// ErrIncompatibleType indicates an injection target that cannot hold the container.
	ErrIncompatibleType = errors.New("incompatible container type")

	// ErrDuplicateContainer indicates a second registration under an existing name.
	ErrDuplicateContainer = errors.New("container already registered")

	// ErrRegistryClosed indicates use of a registry after teardown.
	ErrRegistryClosed = errors.New("registry closed")
)

// ErrNotConfigured is returned by factory operations invoked before Accept.
var ErrNotConfigured = errors.New("factory is not yet configured")
