package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound = errors.New("resource not found")

	// Graph Edit Errors
	ErrLastScene     = errors.New("cannot delete the last remaining scene")
	ErrIsStartScene  = errors.New("cannot delete the start scene")
	ErrUnknownScene  = errors.New("scene not found in story")
	ErrUnknownChoice = errors.New("choice not found in scene")

	// Traversal Errors
	ErrNoStartScene = errors.New("story has no resolvable start scene")

	// Publishing Errors
	ErrStoryInvalid = errors.New("story failed structural validation")

	// Auth Errors
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden    = errors.New("forbidden")    // Authenticated, but lacks permission

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
)
