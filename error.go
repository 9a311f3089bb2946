package twig

import "errors"

var (
	ErrClosed        = errors.New("closed")
	ErrNotFound      = errors.New("not found")
	ErrEmptyKey      = errors.New("empty key")
	ErrFileTruncated = errors.New("file truncated")
	ErrCorrupted     = errors.New("corrupted")
)
