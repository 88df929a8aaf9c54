// Package domain holds the object models and driver contracts of the cloud
// services exposed over HTTP. Service specific packages live below it.
package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidCredential is returned by driver constructors for a credential
// value they refuse, such as a database name outside the storage directory.
var ErrInvalidCredential = errors.New("invalid credential")

// ProviderError is a driver failure that has no more specific meaning, such
// as a rejected credential or an unexpected upstream response.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
