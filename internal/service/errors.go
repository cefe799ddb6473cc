package service

import "errors"

var (
	// ErrStoryNotReadable is returned when a reader requests a story that is
	// neither published nor their own draft.
	ErrStoryNotReadable = errors.New("story is not available for reading")
)
