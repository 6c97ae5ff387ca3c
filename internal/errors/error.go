package errors

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryComponent Category = "component"
	CategorySFC       Category = "sfc"
	CategoryRouter    Category = "router"
	CategoryLoader    Category = "loader"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// Location represents a source location.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// LegoError is a coded error with an optional source location and a hint
// on how to fix it.
type LegoError struct {
	// Code is a unique error identifier (e.g., "L001").
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	Location *Location

	// Context holds the source lines around Location, starting at line
	// ContextStart.
	Context      []string
	ContextStart int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows the correct form.
	Example string

	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LegoError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LegoError) Unwrap() error {
	return e.Wrapped
}

// Is matches another LegoError with the same code, so a registered code can
// be used as a sentinel: errors.Is(err, errors.New("L001")).
func (e *LegoError) Is(target error) bool {
	t, ok := target.(*LegoError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithLocation adds a file location and reads the surrounding lines.
func (e *LegoError) WithLocation(file string, line, column int) *LegoError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context, e.ContextStart = readContextLines(file, line, 5)
	return e
}

// WithSource adds a location inside in-memory source text, such as an SFC
// fetched by a remote loader.
func (e *LegoError) WithSource(name, src string, offset int) *LegoError {
	offset = max(0, min(offset, len(src)))
	line := strings.Count(src[:offset], "\n") + 1
	col := offset - strings.LastIndexByte(src[:offset], '\n')
	e.Location = &Location{File: name, Line: line, Column: col}
	e.Context, e.ContextStart = contextLines(strings.Split(src, "\n"), line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LegoError) WithSuggestion(s string) *LegoError {
	e.Suggestion = s
	return e
}

// WithExample adds an example of the correct form.
func (e *LegoError) WithExample(ex string) *LegoError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *LegoError) WithDetail(d string) *LegoError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *LegoError) Wrap(err error) *LegoError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) ([]string, int) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var all []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		all = append(all, scanner.Text())
		if len(all) > targetLine+contextSize {
			break
		}
	}
	return contextLines(all, targetLine, contextSize)
}

// contextLines returns up to contextSize lines centred on targetLine
// (1-based) and the number of the first returned line.
func contextLines(lines []string, targetLine, contextSize int) ([]string, int) {
	if targetLine < 1 || targetLine > len(lines) {
		return nil, 0
	}
	start := max(1, targetLine-contextSize/2)
	end := min(len(lines), targetLine+contextSize/2)
	return lines[start-1 : end], start
}

// New creates a LegoError from a registered error code.
func New(code string) *LegoError {
	template, ok := registry[code]
	if !ok {
		return &LegoError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &LegoError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an uncoded LegoError with a formatted message.
func Newf(category Category, format string, args ...any) *LegoError {
	return &LegoError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a LegoError.
func FromError(err error, code string) *LegoError {
	if err == nil {
		return nil
	}
	if le, ok := err.(*LegoError); ok {
		return le
	}
	return New(code).Wrap(err)
}
