// Package apierror classifies errors raised while serving a request into the
// numbered error classes rendered to clients.
package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Kind is an error class.
type Kind struct {
	Code    int
	Name    string
	Status  int
	Message string
}

// Error classes.
var (
	Unknown                = Kind{1000, "UnknownError", http.StatusInternalServerError, "An unknown error occurred."}
	ProviderNotSupported   = Kind{1001, "ProviderNotSupported", http.StatusBadRequest, "Provider %s does not supported."}
	Internal               = Kind{1002, "InternalError", http.StatusInternalServerError, "We encountered an internal error."}
	MissingHeaders         = Kind{1003, "MissingHeaders", http.StatusBadRequest, "Your request was missing a required headers: %s."}
	UnknownHeaders         = Kind{1004, "UnknownHeaders", http.StatusBadRequest, "Your request is containing a unknown headers: %s."}
	ProviderFailure        = Kind{1005, "InternalLibcloudError", http.StatusInternalServerError, "We encountered an internal error in libcloud."}
	Validation             = Kind{1006, "ValidationError", http.StatusBadRequest, "Validation error."}
	MalformedJSON          = Kind{1007, "MalformedJSON", http.StatusBadRequest, "The JSON you provided is not well-formed."}
	NoSuchObject           = Kind{1008, "NoSuchObject", http.StatusNotFound, "The specified %s does not exist."}
	NoSuchZone             = Kind{1009, "NoSuchZone", http.StatusNotFound, "The specified zone does not exist."}
	ZoneAlreadyExists      = Kind{1010, "ZoneAlreadyExists", http.StatusConflict, "The specified zone already exists."}
	NoSuchRecord           = Kind{1011, "NoSuchRecord", http.StatusNotFound, "The specified record does not exist."}
	RecordAlreadyExists    = Kind{1012, "RecordAlreadyExists", http.StatusConflict, "The specified record already exists."}
	TooManyArguments       = Kind{1013, "ArgumentsError", http.StatusBadRequest, "The request contain more than one of mutually exclusive arguments."}
	NoSuchContainer        = Kind{1014, "NoSuchContainer", http.StatusNotFound, "The specified container does not exist."}
	ContainerAlreadyExists = Kind{1015, "ContainerAlreadyExists", http.StatusConflict, "The specified container already exists."}
	MissingArguments       = Kind{1016, "MissingArguments", http.StatusBadRequest, "Your request was missing a required arguments: %s."}
	NoSuchOperation        = Kind{1017, "NoSuchOperation", http.StatusNotFound, "The requested operation does not exist."}
	ContainerIsNotEmpty    = Kind{1018, "ContainerIsNotEmpty", http.StatusConflict, "The specified container is not empty."}
	RequestTooLarge        = Kind{1019, "RequestTooLarge", http.StatusRequestEntityTooLarge, "The request body exceeds %d bytes."}
)

// With formats the message template of k with args.
func (k Kind) With(args ...any) Kind {
	k.Message = fmt.Sprintf(k.Message, args...)
	return k
}

// New creates an error of class k.
func (k Kind) New(detail string) *Error {
	return &Error{
		Code:    k.Code,
		Name:    k.Name,
		Message: k.Message,
		Detail:  detail,
		Status:  k.Status,
	}
}

// Wrap creates an error of class k caused by err.
func (k Kind) Wrap(err error) *Error {
	e := k.New(err.Error())
	e.Cause = err
	return e
}

// Error is a classified error.
type Error struct {
	Code    int
	Name    string
	Message string
	Detail  string
	Status  int
	Cause   error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Body is the wire form of an error.
type Body struct {
	Code    int    `json:"code" yaml:"code"`
	Name    string `json:"name" yaml:"name"`
	Message string `json:"message" yaml:"message"`
	Detail  string `json:"detail" yaml:"detail"`
}

// Document is the response document of an error.
type Document struct {
	Error Body `json:"error" yaml:"error"`
}

// Document returns the response document of e.
func (e *Error) Document() Document {
	return Document{Error: Body{
		Code:    e.Code,
		Name:    e.Name,
		Message: e.Message,
		Detail:  e.Detail,
	}}
}

// ToJSON encodes the response document of e.
func (e *Error) ToJSON() []byte {
	data, err := json.Marshal(e.Document())
	if err != nil {
		return []byte(`{"error":{"code":1000,"name":"UnknownError"}}`)
	}
	return data
}
