package models

import (
	"fmt"
	"strings"
)

// MissingParameterError is returned when a required configuration key is absent
type MissingParameterError struct {
	Path string
}

func (e *MissingParameterError) Error() string {
	return "configuration parameter " + e.Path + " required but not provided"
}

func ErrMissingParameter(path string) error {
	return &MissingParameterError{Path: path}
}

// InvalidParameterError is returned when a configuration value has the wrong kind
type InvalidParameterError struct {
	Path     string
	Value    any
	Expected string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("configuration parameter %s: expected %s, got %T (%v)", e.Path, e.Expected, e.Value, e.Value)
}

func ErrInvalidParameter(path string, value any, expected string) error {
	return &InvalidParameterError{Path: path, Value: value, Expected: expected}
}

// UnknownProcessorTypeError is returned when a type reference does not name a registered processor
type UnknownProcessorTypeError struct {
	Name    string
	TypeRef string
}

func (e *UnknownProcessorTypeError) Error() string {
	if e.Name == "" {
		return "unknown processor type: " + e.TypeRef
	}
	return fmt.Sprintf("processor <%s>: unknown processor type %s", e.Name, e.TypeRef)
}

func ErrUnknownProcessorType(name, typeRef string) error {
	return &UnknownProcessorTypeError{Name: name, TypeRef: typeRef}
}

// UnknownProcessorReferenceError is returned when a connection names an undeclared processor
type UnknownProcessorReferenceError struct {
	Name       string
	Connection string
}

func (e *UnknownProcessorReferenceError) Error() string {
	return fmt.Sprintf("processor <%s> not defined but used in connection %s", e.Name, e.Connection)
}

func ErrUnknownProcessorReference(name, connection string) error {
	return &UnknownProcessorReferenceError{Name: name, Connection: connection}
}

// DuplicateProcessorNameError is returned when two processors share a name
type DuplicateProcessorNameError struct {
	Name string
}

func (e *DuplicateProcessorNameError) Error() string {
	return fmt.Sprintf("processor <%s> declared more than once", e.Name)
}

func ErrDuplicateProcessorName(name string) error {
	return &DuplicateProcessorNameError{Name: name}
}

// AttributeDirection tells whether an attribute is read from or written to
type AttributeDirection string

const (
	DirectionOutput AttributeDirection = "output"
	DirectionInput  AttributeDirection = "input"
)

// UnknownAttributeError is returned when a connection names an attribute the processor does not declare
type UnknownAttributeError struct {
	Processor string
	Attribute string
	Direction AttributeDirection
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("processor <%s> has no %s attribute %q", e.Processor, e.Direction, e.Attribute)
}

func ErrUnknownAttribute(processor, attribute string, direction AttributeDirection) error {
	return &UnknownAttributeError{Processor: processor, Attribute: attribute, Direction: direction}
}

// InvalidConnectionError is returned for a malformed "processor:attribute" endpoint
type InvalidConnectionError struct {
	Endpoint string
	Reason   string
}

func (e *InvalidConnectionError) Error() string {
	return fmt.Sprintf("invalid connection endpoint %q: %s", e.Endpoint, e.Reason)
}

func ErrInvalidConnection(endpoint, reason string) error {
	return &InvalidConnectionError{Endpoint: endpoint, Reason: reason}
}

// CyclicConnectionError is returned when connections form a cycle
type CyclicConnectionError struct {
	Processors []string
}

func (e *CyclicConnectionError) Error() string {
	return "cyclic connections between processors: " + strings.Join(e.Processors, ", ")
}

// MissingOutputAttributeError is returned when a producer did not set a connected output
type MissingOutputAttributeError struct {
	Processor string
	Attribute string
}

func (e *MissingOutputAttributeError) Error() string {
	return fmt.Sprintf("processor <%s> did not produce output %q", e.Processor, e.Attribute)
}

func ErrMissingOutputAttribute(processor, attribute string) error {
	return &MissingOutputAttributeError{Processor: processor, Attribute: attribute}
}

// ProcessorConfigError wraps a failure of Configure
type ProcessorConfigError struct {
	Processor string
	Err       error
}

func (e *ProcessorConfigError) Error() string {
	return fmt.Sprintf("configuration of <%s> failed: %v", e.Processor, e.Err)
}

func (e *ProcessorConfigError) Unwrap() error {
	return e.Err
}

// ProcessorRunError wraps a failure of Run or of delivering its results
type ProcessorRunError struct {
	Processor string
	Err       error
}

func (e *ProcessorRunError) Error() string {
	return fmt.Sprintf("error while running <%s>: %v", e.Processor, e.Err)
}

func (e *ProcessorRunError) Unwrap() error {
	return e.Err
}

// InvalidOverrideError is returned for a command-line override that is not key.path=value
type InvalidOverrideError struct {
	Argument string
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid override %q: expected key.path=value", e.Argument)
}

// InvalidDocumentError is returned when the configuration document lacks the toolbox layout
type InvalidDocumentError struct {
	Reason string
	Err    error
}

func (e *InvalidDocumentError) Error() string {
	if e.Err != nil {
		return "invalid configuration document: " + e.Reason + ": " + e.Err.Error()
	}
	return "invalid configuration document: " + e.Reason
}

func (e *InvalidDocumentError) Unwrap() error {
	return e.Err
}
