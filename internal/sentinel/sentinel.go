// Package sentinel provides standardized error definitions for the storefront client.
// It centralizes the errors shared across the client core (header composition,
// dispatch, token storage, cart transaction log) so that callers and tests can
// match on stable values instead of comparing strings.
//
// All errors are created using the ewrap package to provide enhanced error
// wrapping and context capabilities.
package sentinel

import (
	"github.com/hyp3rd/ewrap"
)

var (
	// ErrMissingBaseURL is returned when a client is built without a backend base URL.
	ErrMissingBaseURL = ewrap.New("backend base url is empty")

	// ErrNilTokenStore is returned when a nil identity-token store is passed to the composer.
	ErrNilTokenStore = ewrap.New("nil token store")

	// ErrNilClient is returned when a nil client is passed to a component that requires one.
	ErrNilClient = ewrap.New("nil client")

	// ErrParamCannotBeEmpty is returned when a parameter cannot be empty.
	ErrParamCannotBeEmpty = ewrap.New("param cannot be empty")

	// ErrSerializerNotFound is returned when a serializer is not found in the registry.
	ErrSerializerNotFound = ewrap.New("serializer not found")

	// ErrOperationNotFound is returned when a pending cart operation id is not present
	// in the transaction log.
	ErrOperationNotFound = ewrap.New("pending operation not found")

	// ErrGatewayShutdownTimeout is returned when the gateway HTTP server fails to
	// shutdown before the context deadline.
	ErrGatewayShutdownTimeout = ewrap.New("gateway http shutdown timeout")
)
