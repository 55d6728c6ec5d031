package assemble

import (
	"sort"
	"strings"
)

// MaxPlaceholder is the highest placeholder index, {8}.
const MaxPlaceholder = 8

// Fragment is the content of one sequence file.
type Fragment struct {
	Path string
	Text string
}

// RenderSequence concatenates fragments in order. Unless raw is set, each
// fragment's placeholders are replaced by args; a substituted argument is
// never scanned again. A placeholder without a matching argument fails with
// ErrMissingArgument.
func RenderSequence(fragments []Fragment, args []string, raw bool) (string, error) {
	var b strings.Builder
	for _, f := range fragments {
		if raw {
			b.WriteString(f.Text)
			continue
		}
		err := walk(f.Text, func(s string) { b.WriteString(s) }, func(i int) error {
			if i >= len(args) {
				return &RenderError{Kind: ErrMissingArgument, Path: f.Path, Index: i}
			}
			b.WriteString(args[i])
			return nil
		})
		if err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// Substitute replaces the placeholders of a single text.
func Substitute(text string, args []string) (string, error) {
	return RenderSequence([]Fragment{{Text: text}}, args, false)
}

// Scan returns the sorted, distinct placeholder indices text references.
func Scan(text string) []int {
	seen := make(map[int]bool)
	_ = walk(text, func(string) {}, func(i int) error {
		seen[i] = true
		return nil
	})
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

type scanState int

// States of the placeholder scanner: plain text, after '{', after '{' and
// a digit 0-8, and after '}'.
const (
	stateText scanState = iota
	stateOpen
	stateDigit
	stateClose
)

// walk runs the placeholder state machine over text, handing literal runs to
// literal and placeholder indices to placeholder. It stops at the first
// error placeholder returns.
func walk(text string, literal func(string), placeholder func(int) error) error {
	state := stateText
	digit := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch state {
		case stateText:
			switch c {
			case '{':
				state = stateOpen
			case '}':
				state = stateClose
			default:
				end := strings.IndexAny(text[i:], "{}")
				if end < 0 {
					end = len(text) - i
				}
				literal(text[i : i+end])
				i += end - 1
			}

		case stateOpen:
			switch {
			case c == '{':
				literal("{")
				state = stateText
			case c >= '0' && c <= '0'+MaxPlaceholder:
				digit = int(c - '0')
				state = stateDigit
			default:
				literal("{")
				state = stateText
				i--
			}

		case stateDigit:
			state = stateText
			if c == '}' {
				if err := placeholder(digit); err != nil {
					return err
				}
				continue
			}
			literal(text[i-2 : i])
			i--

		case stateClose:
			literal("}")
			state = stateText
			if c != '}' {
				i--
			}
		}
	}

	switch state {
	case stateOpen:
		literal("{")
	case stateDigit:
		literal(text[len(text)-2:])
	case stateClose:
		literal("}")
	}
	return nil
}
