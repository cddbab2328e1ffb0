package engine

import "errors"

var (
	// ErrValidation indicates a malformed request.
	ErrValidation = errors.New("validation failed")

	// ErrDirNotEmpty indicates init was pointed at a directory with content.
	ErrDirNotEmpty = errors.New("directory is not empty")

	// ErrTemplateNotFound indicates the downloaded tree has no such template.
	ErrTemplateNotFound = errors.New("template not found")
)
