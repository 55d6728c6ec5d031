package assemble

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnknownPrompt       = errors.New("unknown prompt")
	ErrMissingArgument     = errors.New("missing argument")
	ErrWrongPromptKind     = errors.New("wrong prompt kind")
	ErrUnknownDataFormat   = errors.New("unknown data format")
	ErrInvalidData         = errors.New("invalid data")
	ErrTemplateFailure     = errors.New("template failure")
	ErrMissingFragmentFile = errors.New("missing fragment file")
	ErrNoParts             = errors.New("no parts provided")
)

// RenderError reports why a prompt could not be assembled.
type RenderError struct {
	Kind   error
	Prompt string
	// Path is the fragment, template or data file involved, if any.
	Path string
	// Index is the placeholder index for ErrMissingArgument.
	Index int
	Err   error
}

func (e *RenderError) Error() string {
	var b strings.Builder
	if e.Prompt != "" {
		fmt.Fprintf(&b, "prompt %q: ", e.Prompt)
	}
	if e.Kind == ErrMissingArgument {
		fmt.Fprintf(&b, "missing argument for placeholder {%d}", e.Index)
	} else {
		b.WriteString(e.Kind.Error())
	}
	if e.Path != "" {
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is matches the error kind.
func (e *RenderError) Is(target error) bool {
	return target == e.Kind
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// withPrompt stamps the prompt name onto a RenderError.
func withPrompt(err error, name string) error {
	var re *RenderError
	if errors.As(err, &re) && re.Prompt == "" {
		re.Prompt = name
	}
	return err
}
