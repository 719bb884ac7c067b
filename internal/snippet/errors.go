package snippet

import (
	"errors"
	"fmt"
)

// Sentinel errors for snippet definitions and matching.
var (
	ErrEmptyTrigger      = errors.New("empty trigger")
	ErrInvalidOptions    = errors.New("invalid options")
	ErrNoReplacement     = errors.New("missing replacement")
	ErrInvalidVersion    = errors.New("invalid version")
	ErrInvalidRegex      = errors.New("invalid regex trigger")
	ErrInvalidEnv        = errors.New("invalid excluded environment")
	ErrInvalidVariable   = errors.New("invalid snippet variable")
	ErrUnknownFormat     = errors.New("unknown snippet source format")
	ErrInvalidSource     = errors.New("invalid snippet source")
	ErrBadReplacement    = errors.New("replacement function did not return a string")
	ErrReplacementFailed = errors.New("replacement function failed")
)

// DefinitionError reports a snippet that could not be compiled.
type DefinitionError struct {
	Index   int
	Trigger string
	Err     error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("snippet %d (%q): %v", e.Index, e.Trigger, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }
