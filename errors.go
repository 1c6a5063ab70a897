package pwmlx

import "errors"

var (
	// ErrEmptyInput is returned when the description text has no words.
	ErrEmptyInput = errors.New("pwmlx: input text is empty")

	// ErrUnsupportedFormat is returned for unrecognized document formats.
	ErrUnsupportedFormat = errors.New("pwmlx: unsupported document format")

	// ErrLLMUnavailable is returned when the LLM provider is unreachable.
	ErrLLMUnavailable = errors.New("pwmlx: LLM provider unavailable")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("pwmlx: invalid configuration")
)
