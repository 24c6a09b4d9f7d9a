package skema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType               = "invalid_type"
	CodeInvalidLiteral            = "invalid_literal"
	CodeUnrecognizedKeys          = "unrecognized_keys"
	CodeInvalidUnion              = "invalid_union"
	CodeInvalidUnionDiscriminator = "invalid_union_discriminator"
	CodeInvalidEnumValue          = "invalid_enum_value"
	CodeInvalidArguments          = "invalid_arguments"
	CodeInvalidReturnType         = "invalid_return_type"
	CodeInvalidDate               = "invalid_date"
	CodeInvalidString             = "invalid_string"
	CodeTooSmall                  = "too_small"
	CodeTooBig                    = "too_big"
	CodeInvalidIntersectionTypes  = "invalid_intersection_types"
	CodeNotMultipleOf             = "not_multiple_of"
	CodeNotFinite                 = "not_finite"
	CodeUnresolvedReference       = "unresolved_reference"
	CodeCustom                    = "custom"
	// Raised by ParseJSON/ParseYAML before validation starts.
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
)

// Sentinel errors wrapped by FatalError and builder errors.
var (
	ErrAsyncInSync               = errors.New("skema: asynchronous effect reached from a synchronous parse")
	ErrUnresolvedReference       = errors.New("skema: unresolved reference")
	ErrInvalidDiscriminatedUnion = errors.New("skema: invalid discriminated union")
	ErrEmptyOptions              = errors.New("skema: at least one option is required")
)

// Path locates a value inside the parsed input: string keys and int indices.
type Path []any

// Append returns a new path with segs added; p is not modified.
func (p Path) Append(segs ...any) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// Pointer renders p as an RFC 6901 JSON Pointer ("" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for _, seg := range p {
		b.WriteByte('/')
		s := fmt.Sprint(seg)
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		b.WriteString(s)
	}
	return b.String()
}

// String renders p in dotted form, e.g. items[2].price.
func (p Path) String() string {
	b := &strings.Builder{}
	for _, seg := range p {
		switch s := seg.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(s) + "]")
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(b, s)
		}
	}
	return b.String()
}

// Issue represents a single validation entry. Which of the detail fields are
// set depends on Code.
type Issue struct {
	Code    string
	Path    Path
	Message string

	// invalid_type, invalid_literal, invalid_enum_value
	Expected any
	Received any
	// unrecognized_keys
	Keys []string
	// invalid_union_discriminator, invalid_enum_value
	Options []any
	// invalid_union: one error per option
	UnionErrors []*Error
	// invalid_arguments, invalid_return_type
	ArgumentsError  *Error
	ReturnTypeError *Error
	// invalid_string: the failed check kind and its operand
	Validation CheckKind
	Substring  string
	Position   *int
	// too_small, too_big
	Minimum   any
	Maximum   any
	Inclusive bool
	Exact     bool
	Type      string
	// not_multiple_of
	MultipleOf any
	// custom
	Params map[string]any
	// Fatal marks a custom issue that aborted validation.
	Fatal bool
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path: Required
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// Error is the aggregate returned by a failed parse. It carries every issue
// recorded during the call, in the order they were found.
type Error struct {
	Issues Issues
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Issues.Error()
}

// Unwrap exposes the Issues so errors.As(err, &Issues{}) works.
func (e *Error) Unwrap() error { return e.Issues }

// FlattenedError groups messages by the first path segment.
type FlattenedError struct {
	FormErrors  []string
	FieldErrors map[string][]string
}

// Flatten groups issue messages by their top-level key. Issues at the root go
// to FormErrors.
func (e *Error) Flatten() FlattenedError {
	out := FlattenedError{FieldErrors: map[string][]string{}}
	for _, it := range e.Issues {
		if len(it.Path) == 0 {
			out.FormErrors = append(out.FormErrors, it.Message)
			continue
		}
		k := fmt.Sprint(it.Path[0])
		out.FieldErrors[k] = append(out.FieldErrors[k], it.Message)
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// AsError extracts the aggregate *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// FatalError reports a programmer error found while parsing: an asynchronous
// effect reached from Parse/SafeParse, or a reference node that was never
// dereferenced. It is raised with panic, never returned as an issue.
type FatalError struct {
	Err  error
	Path Path
	// Ref is the reference name for ErrUnresolvedReference.
	Ref string
}

func (e *FatalError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%v %q at %q", e.Err, e.Ref, e.Path.Pointer())
	}
	return fmt.Sprintf("%v at %q", e.Err, e.Path.Pointer())
}

func (e *FatalError) Unwrap() error { return e.Err }
