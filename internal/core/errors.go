package core

import "errors"

var (
	// Store errors
	ErrNotInitialized     = errors.New("prompt store not initialized")
	ErrAlreadyInitialized = errors.New("prompt store already initialized")
	ErrInvalidConfig      = errors.New("invalid configuration")

	// Object errors
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidObject  = errors.New("invalid object format")
	ErrInvalidHash    = errors.New("invalid hash")

	// Version errors
	ErrVersionNotFound = errors.New("prompt version not found")
	ErrInvalidVersion  = errors.New("invalid prompt version")
	ErrEmptyPrompt     = errors.New("prompt text is empty")
)
