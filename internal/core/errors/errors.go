package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorCode string

const (
	CodeParseFailure      ErrorCode = "PARSE_FAILURE"
	CodeConfiguration     ErrorCode = "CONFIGURATION_ERROR"
	CodeGraphBuildWarning ErrorCode = "GRAPH_BUILD_WARNING"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeValidationError   ErrorCode = "VALIDATION_ERROR"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported      ErrorCode = "NOT_SUPPORTED"
)

// Context keys.
const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxLanguage  = "language"
	CtxSpan      = "span"
)

// DomainError is an error classified by code, with optional structured
// context rendered after the message.
type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

func (e *DomainError) WithContext(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error renders "[CODE] message: cause key=value ...", context keys sorted.
func (e *DomainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Context[k])
	}
	return b.String()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches key/value to the outermost DomainError in err's chain.
// Errors without one are wrapped as CodeInternal.
func AddContext(err error, key string, value any) error {
	if de, ok := asDomain(err); ok {
		de.WithContext(key, value)
		return err
	}
	return (&DomainError{Code: CodeInternal, Message: "wrapped error", Err: err}).WithContext(key, value)
}

// CodeOf returns the code of the outermost DomainError in err's chain, or ""
// when there is none.
func CodeOf(err error) ErrorCode {
	if de, ok := asDomain(err); ok {
		return de.Code
	}
	return ""
}

func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ContextValue returns the context entry stored under key, if any.
func ContextValue(err error, key string) (any, bool) {
	de, ok := asDomain(err)
	if !ok {
		return nil, false
	}
	v, ok := de.Context[key]
	return v, ok
}

func asDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
