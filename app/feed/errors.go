package feed

import (
	"errors"
	"fmt"
)

var ErrFeedNotFound = errors.New("feed not found")

type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid feed configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type UnknownFeedTypeError struct {
	Path string
	Type Type
}

func (e *UnknownFeedTypeError) Error() string {
	return fmt.Sprintf("could not create feed %s: unknown feed type %q", e.Path, e.Type)
}

// BuildError is returned to every caller that waited on a failed build.
type BuildError struct {
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build feed %s: %v", e.Path, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
