package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeNotFound           ErrorType = "NOT_FOUND"
	ErrorTypeValidation         ErrorType = "VALIDATION"
	ErrorTypeInternal           ErrorType = "INTERNAL"
	ErrorTypeMissingDirectory   ErrorType = "MISSING_DIRECTORY"
	ErrorTypeEmptyConfiguration ErrorType = "EMPTY_CONFIGURATION"
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details any       `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NodeDetails identifies the node and path an evaluation failed for.
type NodeDetails struct {
	NodeID   string `json:"node_id"`
	NodeName string `json:"node_name"`
	Path     string `json:"path"`
}

func NotFound(message string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

func ValidationError(message string, details any) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    http.StatusBadRequest,
		Details: details,
	}
}

func Internal(message string) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Message: message,
		Code:    http.StatusInternalServerError,
	}
}

// MissingDirectory is fatal for the evaluation of one target: the configured
// directory does not exist.
func MissingDirectory(nodeID, nodeName, absPath string) *Error {
	return &Error{
		Type:    ErrorTypeMissingDirectory,
		Message: fmt.Sprintf("%s: Directory not found: %s", nodeName, absPath),
		Code:    http.StatusUnprocessableEntity,
		Details: NodeDetails{NodeID: nodeID, NodeName: nodeName, Path: absPath},
	}
}

// EmptyConfiguration is advisory; the default policy treats an empty load
// path as "scan the whole asset root".
func EmptyConfiguration(nodeID, nodeName string) *Error {
	return &Error{
		Type:    ErrorTypeEmptyConfiguration,
		Message: fmt.Sprintf("%s: Load Path is empty", nodeName),
		Code:    http.StatusBadRequest,
		Details: NodeDetails{NodeID: nodeID, NodeName: nodeName},
	}
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType reports whether err's chain holds an *Error of type t.
func IsType(err error, t ErrorType) bool {
	e, ok := As(err)
	return ok && e.Type == t
}

// StatusCode maps err to an HTTP status, defaulting to 500.
func StatusCode(err error) int {
	if e, ok := As(err); ok && e.Code != 0 {
		return e.Code
	}
	return http.StatusInternalServerError
}
