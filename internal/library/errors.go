package library

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by [Merge] and [Load]. Match them with errors.Is.
var (
	// ErrMissing means the library directory or its config.toml cannot be read.
	ErrMissing = errors.New("configuration unreadable")
	// ErrParse means at least one file is not valid TOML or uses unknown keys.
	ErrParse = errors.New("configuration malformed")
	// ErrInvalid means at least one prompt definition breaks the schema rules.
	ErrInvalid = errors.New("configuration invalid")
)

// Error describes why a library could not be loaded.
type Error struct {
	Kind        error
	Path        string
	Diagnostics []Diagnostic
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	switch len(e.Diagnostics) {
	case 0:
	case 1:
		fmt.Fprintf(&b, ": %s", e.Diagnostics[0])
	default:
		fmt.Fprintf(&b, " (%d problems)", len(e.Diagnostics))
	}
	return b.String()
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostics extracts the diagnostics carried by a load error, if any.
func Diagnostics(err error) []Diagnostic {
	var le *Error
	if errors.As(err, &le) {
		return le.Diagnostics
	}
	return nil
}
