// Package ports defines interfaces (contracts) between layers.
// Implementations live in adapters/.
package ports

import "time"

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// ContentHasher computes the content hash stored with objects.
type ContentHasher interface {
	// Hash returns the hex encoded digest of data.
	Hash(data []byte) string
}

// InvocationRecorder observes driver method invocations.
type InvocationRecorder interface {
	// ObserveInvocation records one invocation. outcome is "ok" or the
	// error class name.
	ObserveInvocation(service, provider, method, outcome string, seconds float64)
	// ObserveSchemaBuild records one schema build.
	ObserveSchemaBuild(typeName, method string, err error)
}
